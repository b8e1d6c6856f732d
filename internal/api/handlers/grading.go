package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/wonny/aegis-scorer/internal/audit"
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// ReportStore reads persisted grading reports (audit.Repository)
type ReportStore interface {
	GetLatestReport(ctx context.Context, strategy string) (*audit.GradingReport, error)
}

// GradingHandler serves S7 grading reports
type GradingHandler struct {
	analyzer        *audit.Analyzer
	reports         ReportStore // optional
	defaultStrategy string
	logger          *logger.Logger
}

// NewGradingHandler creates a new grading handler. reports may be nil.
func NewGradingHandler(analyzer *audit.Analyzer, reports ReportStore, defaultStrategy string, log *logger.Logger) *GradingHandler {
	return &GradingHandler{
		analyzer:        analyzer,
		reports:         reports,
		defaultStrategy: defaultStrategy,
		logger:          log,
	}
}

// GetGrading grades signals and outcomes over a period on demand
// GET /api/grading?strategy=momentum&period=1M|3M|6M|1Y|YTD
func (h *GradingHandler) GetGrading(w http.ResponseWriter, r *http.Request) {
	strategy := h.strategy(r)
	from, to := audit.ParsePeriod(r.URL.Query().Get("period"), today())

	report, err := h.analyzer.Analyze(r.Context(), from, to, strategy)
	if err != nil {
		h.logger.WithError(err).Error("Failed to grade signals")
		respondError(w, statusFor(err), "Failed to grade signals")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// GetLatestReport returns the most recent persisted report
// GET /api/grading/latest?strategy=momentum
func (h *GradingHandler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		respondError(w, http.StatusNotFound, "Report storage not configured")
		return
	}

	report, err := h.reports.GetLatestReport(r.Context(), h.strategy(r))
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, "No grading report")
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to get grading report")
		respondError(w, statusFor(err), "Failed to retrieve grading report")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (h *GradingHandler) strategy(r *http.Request) string {
	if s := r.URL.Query().Get("strategy"); s != "" {
		return s
	}
	return h.defaultStrategy
}
