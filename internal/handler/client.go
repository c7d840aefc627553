package handler

import (
	"net/http"

	"github.com/barakabank/bank-service/internal/service"
	"github.com/shopspring/decimal"
)

type operationRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	Amount                   decimal.Decimal `json:"amount"`
	DestinationAccountNumber string          `json:"destination_account_number"`
}

// Profile returns the caller's profile and account summary
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	profile, err := h.svc.UserProfile(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// CreateDeposit requests a deposit on the caller's account
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req operationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	op, err := h.svc.CreateOperation(r.Context(), id, service.Deposit{Amount: req.Amount})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, op)
}

// CreateWithdrawal requests a withdrawal on the caller's account
func (h *Handler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req operationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	op, err := h.svc.CreateOperation(r.Context(), id, service.Withdrawal{Amount: req.Amount})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, op)
}

// CreateTransfer requests a transfer from the caller's account
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	op, err := h.svc.CreateOperation(r.Context(), id, service.Transfer{
		Amount:                   req.Amount,
		DestinationAccountNumber: req.DestinationAccountNumber,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, op)
}

// ClientOperations lists the caller's operations, newest first
func (h *Handler) ClientOperations(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	operations, err := h.svc.AccountOperations(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, operations)
}
