package handler

import (
	"mime"
	"net/http"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// UploadDocument attaches a supporting file to an operation
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	operationID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file field"})
		return
	}
	defer file.Close()

	doc, err := h.svc.AttachDocument(r.Context(), id, operationID, header.Filename,
		header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, doc)
}

// OperationDocuments lists documents attached to an operation
func (h *Handler) OperationDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	operationID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	documents, err := h.svc.OperationDocuments(r.Context(), id, operationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, documents)
}

// DownloadDocument streams a stored document back to the caller
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	doc, path, err := h.svc.DocumentFile(r.Context(), id, documentID)
	if err != nil {
		respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.FileType)
	// The uploaded file name is untrusted; FormatMediaType escapes it.
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	http.ServeFile(w, r, path)
}

// DeleteDocument removes a document and its stored file
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	documentID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.svc.DeleteDocument(r.Context(), id, documentID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
