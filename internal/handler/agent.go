package handler

import "net/http"

// PendingOperations lists operations awaiting review, newest first
func (h *Handler) PendingOperations(w http.ResponseWriter, r *http.Request) {
	operations, err := h.svc.PendingOperations(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, operations)
}

// ApproveOperation approves a pending operation and executes it
func (h *Handler) ApproveOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	operationID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	op, err := h.svc.ApproveOperation(r.Context(), id, operationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, op)
}

// RejectOperation rejects a pending operation
func (h *Handler) RejectOperation(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	operationID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	op, err := h.svc.RejectOperation(r.Context(), id, operationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, op)
}

// AllOperations lists every operation, newest first
func (h *Handler) AllOperations(w http.ResponseWriter, r *http.Request) {
	operations, err := h.svc.AllOperations(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, operations)
}
