package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hrops/staff-loan-ledger/internal/domain"
	"github.com/hrops/staff-loan-ledger/internal/service"
	"github.com/hrops/staff-loan-ledger/pkg/response"
)

type StaffHandler struct {
	service   *service.StaffService
	validator *validator.Validate
	logger    *zap.Logger
}

func NewStaffHandler(service *service.StaffService, logger *zap.Logger) *StaffHandler {
	return &StaffHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// Create handles POST /api/v1/staff
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Missing required fields: name, email, department, employee_id")
		return
	}

	staff, err := h.service.CreateStaff(r.Context(), &request)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Created(w, staff)
}

// List handles GET /api/v1/staff
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	includeLoans := r.URL.Query().Get("includeLoans") == "true"

	staff, err := h.service.ListStaff(r.Context(), includeLoans)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Success(w, staff)
}
