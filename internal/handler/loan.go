package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/hrops/staff-loan-ledger/internal/domain"
	"github.com/hrops/staff-loan-ledger/internal/service"
	"github.com/hrops/staff-loan-ledger/pkg/response"
)

type LoanHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewLoanHandler(service *service.LedgerService, logger *zap.Logger) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

func loanIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["loanId"])
	return id, err == nil
}

// Create handles POST /api/v1/loans
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Missing required fields: staff_id, loan_amount, duration_months")
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Created(w, loan)
}

// Get handles GET /api/v1/loans/{loanId}
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := loanIDFromRequest(r)
	if !ok {
		response.NotFound(w, "Loan not found")
		return
	}

	loan, err := h.service.GetLoan(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Success(w, loan)
}

// List handles GET /api/v1/loans with optional status/staffId filters
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.LoanFilter{
		Status: domain.LoanStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("staffId"); raw != "" {
		staffID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid staffId filter")
			return
		}
		filter.StaffID = staffID
	}

	loans, err := h.service.ListLoans(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Success(w, loans)
}

// Update handles PUT /api/v1/loans/{loanId} (status and/or notes)
func (h *LoanHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := loanIDFromRequest(r)
	if !ok {
		response.NotFound(w, "Loan not found")
		return
	}

	var request domain.UpdateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	loan, err := h.service.UpdateLoan(r.Context(), id, &request)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Success(w, loan)
}

// Delete handles DELETE /api/v1/loans/{loanId}
func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := loanIDFromRequest(r)
	if !ok {
		response.NotFound(w, "Loan not found")
		return
	}

	if err := h.service.DeleteLoan(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Success(w, map[string]string{"message": "Loan deleted successfully"})
}

// RecordPayment handles POST /api/v1/loans/{loanId}/payments
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := loanIDFromRequest(r)
	if !ok {
		response.NotFound(w, "Loan not found")
		return
	}

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.RecordPayment(r.Context(), id, &request)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Created(w, result)
}

// ListPayments handles GET /api/v1/loans/{loanId}/payments
func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := loanIDFromRequest(r)
	if !ok {
		response.NotFound(w, "Loan not found")
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Success(w, payments)
}
