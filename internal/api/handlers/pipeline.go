package handlers

import (
	"errors"
	"net/http"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/regime"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// PipelineHandler serves stored batch results and the market regime (read-only)
// ⭐ SSOT: 파이프라인 API 핸들러는 여기서만
type PipelineHandler struct {
	signals         contracts.SignalRepository
	gate            *regime.Gate
	defaultStrategy string
	logger          *logger.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(signals contracts.SignalRepository, gate *regime.Gate, defaultStrategy string, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		signals:         signals,
		gate:            gate,
		defaultStrategy: defaultStrategy,
		logger:          log,
	}
}

// SignalsResponse is the signals of one date
type SignalsResponse struct {
	Date     string             `json:"date"`
	Strategy string             `json:"strategy"`
	Count    int                `json:"count"`
	Signals  []contracts.Signal `json:"signals"`
}

// GetSignals returns persisted signals, score descending
// GET /api/signals?date=YYYY-MM-DD&strategy=momentum
func (h *PipelineHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r, "date", today())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date (YYYY-MM-DD)")
		return
	}
	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = h.defaultStrategy
	}

	signals, err := h.signals.GetByDate(r.Context(), date, strategy)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get signals")
		respondError(w, statusFor(err), "Failed to retrieve signals")
		return
	}
	if signals == nil {
		signals = []contracts.Signal{}
	}

	respondJSON(w, http.StatusOK, SignalsResponse{
		Date:     contracts.DateKey(date),
		Strategy: strategy,
		Count:    len(signals),
		Signals:  signals,
	})
}

// GetRegime returns the market health as of a date
// GET /api/regime?date=YYYY-MM-DD
func (h *PipelineHandler) GetRegime(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r, "date", today())
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date (YYYY-MM-DD)")
		return
	}

	health, err := h.gate.GetMarketHealth(r.Context(), date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to evaluate market regime")
		respondError(w, statusFor(err), "Failed to evaluate market regime")
		return
	}

	respondJSON(w, http.StatusOK, health)
}

func statusFor(err error) int {
	if errors.Is(err, contracts.ErrUpstreamUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
