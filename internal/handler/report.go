package handler

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/hrops/staff-loan-ledger/internal/service"
	"github.com/hrops/staff-loan-ledger/pkg/response"
)

type ReportHandler struct {
	service *service.ReportService
	logger  *zap.Logger
}

func NewReportHandler(service *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger,
	}
}

// DashboardStats handles GET /api/v1/dashboard/stats
func (h *ReportHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.DashboardStats(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Success(w, stats)
}

// MonthlyReport handles GET /api/v1/reports/monthly?month=&year=
// Missing parameters default to the current month and year.
func (h *ReportHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Month must be between 1 and 12")
			return
		}
		month = parsed
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Year must be between 2000 and 2100")
			return
		}
		year = parsed
	}

	report, err := h.service.MonthlyReport(r.Context(), month, year)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	response.Success(w, report)
}
