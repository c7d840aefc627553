package handler

import "net/http"

// AnalyzeOperation runs the decision source over an operation and stores the
// advisory result
func (h *Handler) AnalyzeOperation(w http.ResponseWriter, r *http.Request) {
	operationID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	result, err := h.svc.AnalyzeOperation(r.Context(), operationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// OperationValidationResult returns the stored advisory result for an operation
func (h *Handler) OperationValidationResult(w http.ResponseWriter, r *http.Request) {
	operationID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	result, err := h.svc.ValidationResult(r.Context(), operationID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ValidationStats returns advisory decision counts
func (h *Handler) ValidationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.ValidationStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
