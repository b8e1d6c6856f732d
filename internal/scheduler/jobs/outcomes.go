package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-scorer/internal/brain"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// OutcomeJob re-simulates recent signals so open outcomes converge as bars arrive
type OutcomeJob struct {
	orchestrator *brain.Orchestrator
	strategies   []string
	lookbackDays int
	now          func() time.Time
	logger       *logger.Logger
}

// NewOutcomeJob creates a new outcome job. lookbackDays <= 0 uses
// twice the simulation horizon in calendar days.
func NewOutcomeJob(orch *brain.Orchestrator, strategies []string, lookbackDays int, log *logger.Logger) *OutcomeJob {
	if lookbackDays <= 0 {
		lookbackDays = 2 * orch.Config().Simulation.HorizonBars
	}
	return &OutcomeJob{
		orchestrator: orch,
		strategies:   strategies,
		lookbackDays: lookbackDays,
		now:          time.Now,
		logger:       log,
	}
}

// Name returns the job name
func (j *OutcomeJob) Name() string {
	return "outcome_evaluation"
}

// Schedule returns the cron schedule (weekdays 6 PM, after scoring)
func (j *OutcomeJob) Schedule() string {
	return "0 0 18 * * 1-5"
}

// Run evaluates signals from the lookback window up to yesterday
func (j *OutcomeJob) Run(ctx context.Context) error {
	to := TradingDay(j.now()).AddDate(0, 0, -1)
	from := to.AddDate(0, 0, -j.lookbackDays)

	for _, strategy := range j.strategies {
		res, err := j.orchestrator.EvaluateOutcomes(ctx, brain.OutcomeRequest{From: from, To: to, Strategy: strategy})
		if err != nil {
			return fmt.Errorf("evaluate %s: %w", strategy, err)
		}
		j.logger.WithFields(map[string]interface{}{
			"strategy": strategy,
			"outcomes": len(res.Outcomes),
		}).Info("Scheduled outcome evaluation finished")
	}
	return nil
}
