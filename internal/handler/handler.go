package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/barakabank/bank-service/internal/middleware"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/barakabank/bank-service/internal/service"
	"github.com/gorilla/mux"
)

// Handler exposes the service over HTTP
type Handler struct {
	svc *service.Service
}

// NewHandler initializes a new handler
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps the error taxonomy onto HTTP statuses so callers can
// always distinguish the kind of failure.
func respondError(w http.ResponseWriter, err error) {
	var validation *models.ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrSameAccountTransfer):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrMissingDocumentation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrContention):
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func identity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
	}
	return id, ok
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &models.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, &models.ValidationError{Field: "body", Reason: "invalid JSON"})
		return false
	}
	return true
}
