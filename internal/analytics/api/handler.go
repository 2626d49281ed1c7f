package analytics_api

import (
	"fmt"
	"net/http"

	"ms-booking/internal/analytics"
	"ms-booking/internal/apperr"
	"ms-booking/internal/logger"
	"ms-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler serves the utilization report.
type Handler struct {
	Reporter *analytics.Reporter
	Logger   *logger.Logger
}

func NewHandler(reporter *analytics.Reporter, logger *logger.Logger) *Handler {
	return &Handler{Reporter: reporter, Logger: logger}
}

// RegisterRoutes registers the report routes on an /api router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/resources/utilization-report", h.GetUtilizationReport)
}

func (h *Handler) GetUtilizationReport(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorBody("Invalid report range", err))
		return
	}

	report, err := h.Reporter.ReportUtilization(r.Context(), rng)
	if err != nil {
		if utils.StatusFor(err) == http.StatusInternalServerError {
			h.Logger.Error("ANALYTICS", fmt.Sprintf("Utilization report failed: %v", err))
		}
		utils.WriteJSON(w, utils.StatusFor(err), utils.ErrorBody("Failed to build utilization report", err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Utilization report", report))
}

func parseRange(r *http.Request) (analytics.Range, error) {
	var rng analytics.Range
	if s := r.URL.Query().Get("start_date"); s != "" {
		from, err := utils.ParseRangeStart(s)
		if err != nil {
			return rng, apperr.InvalidInput("start_date", err.Error())
		}
		rng.From = &from
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		to, err := utils.ParseRangeEnd(s)
		if err != nil {
			return rng, apperr.InvalidInput("end_date", err.Error())
		}
		rng.To = &to
	}
	return rng, nil
}

