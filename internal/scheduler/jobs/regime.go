package jobs

import (
	"context"
	"time"

	"github.com/wonny/aegis-scorer/internal/metrics"
	"github.com/wonny/aegis-scorer/internal/regime"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// RegimeJob refreshes the cached market health and its gauges
type RegimeJob struct {
	gate    *regime.Gate
	metrics *metrics.Registry
	now     func() time.Time
	logger  *logger.Logger
}

// NewRegimeJob creates a new regime refresh job
func NewRegimeJob(gate *regime.Gate, m *metrics.Registry, log *logger.Logger) *RegimeJob {
	return &RegimeJob{
		gate:    gate,
		metrics: m,
		now:     time.Now,
		logger:  log,
	}
}

// Name returns the job name
func (j *RegimeJob) Name() string {
	return "regime_refresh"
}

// Schedule returns the cron schedule (weekdays 5:15 PM, before scoring)
func (j *RegimeJob) Schedule() string {
	return "0 15 17 * * 1-5"
}

// Run evaluates the regime for the current trading day
func (j *RegimeJob) Run(ctx context.Context) error {
	health, err := j.gate.GetMarketHealth(ctx, TradingDay(j.now()))
	if err != nil {
		return err
	}
	j.metrics.SetRegime(health)

	j.logger.WithFields(map[string]interface{}{
		"status":  health.Status,
		"healthy": health.Healthy,
		"known":   health.Known,
	}).Debug("Regime refreshed")
	return nil
}
