package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-scorer/internal/audit"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// ReportSaver persists grading reports (audit.Repository)
type ReportSaver interface {
	SaveReport(ctx context.Context, report *audit.GradingReport) error
}

// GradingJob grades each strategy over a rolling period and stores the report
type GradingJob struct {
	analyzer   *audit.Analyzer
	store      ReportSaver
	strategies []string
	period     string
	now        func() time.Time
	logger     *logger.Logger
}

// NewGradingJob creates a new grading job. period as audit.ParsePeriod ("3M" default).
func NewGradingJob(analyzer *audit.Analyzer, store ReportSaver, strategies []string, period string, log *logger.Logger) *GradingJob {
	return &GradingJob{
		analyzer:   analyzer,
		store:      store,
		strategies: strategies,
		period:     period,
		now:        time.Now,
		logger:     log,
	}
}

// Name returns the job name
func (j *GradingJob) Name() string {
	return "weekly_grading"
}

// Schedule returns the cron schedule (Saturday 8 AM)
func (j *GradingJob) Schedule() string {
	return "0 0 8 * * 6"
}

// Run grades and saves one report per strategy
func (j *GradingJob) Run(ctx context.Context) error {
	from, to := audit.ParsePeriod(j.period, TradingDay(j.now()))

	for _, strategy := range j.strategies {
		report, err := j.analyzer.Analyze(ctx, from, to, strategy)
		if err != nil {
			return fmt.Errorf("grade %s: %w", strategy, err)
		}
		if err := j.store.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("save report %s: %w", strategy, err)
		}
	}
	return nil
}
