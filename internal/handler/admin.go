package handler

import "net/http"

// Users lists every user
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.AllUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// ActivateUser re-enables a user
func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, true)
}

// DeactivateUser disables a user
func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setUserActive(w, r, false)
}

func (h *Handler) setUserActive(w http.ResponseWriter, r *http.Request, active bool) {
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	user, err := h.svc.SetUserActive(r.Context(), userID, active)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
