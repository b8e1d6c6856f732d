package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-scorer/internal/api/progress"
	"github.com/wonny/aegis-scorer/internal/brain"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// ScoringJob runs the daily scoring batch for each configured strategy
// ⭐ SSOT: 일일 스코어링 스케줄은 이 Job에서만
type ScoringJob struct {
	orchestrator *brain.Orchestrator
	strategies   []string
	hub          *progress.Hub
	now          func() time.Time
	logger       *logger.Logger
}

// NewScoringJob creates a new scoring job. hub may be nil.
func NewScoringJob(orch *brain.Orchestrator, strategies []string, hub *progress.Hub, log *logger.Logger) *ScoringJob {
	return &ScoringJob{
		orchestrator: orch,
		strategies:   strategies,
		hub:          hub,
		now:          time.Now,
		logger:       log,
	}
}

// Name returns the job name
func (j *ScoringJob) Name() string {
	return "daily_scoring"
}

// Schedule returns the cron schedule (weekdays 5:30 PM, after the close data load)
func (j *ScoringJob) Schedule() string {
	return "0 30 17 * * 1-5"
}

// Run scores the current trading day. 한 전략이 저장소 장애로 실패하면 즉시 중단.
func (j *ScoringJob) Run(ctx context.Context) error {
	date := TradingDay(j.now())

	for _, strategy := range j.strategies {
		runID := brain.GenerateRunID()
		res, err := j.orchestrator.ScoreBatch(ctx, brain.BatchRequest{
			Date:     date,
			Strategy: strategy,
			RunID:    runID,
			Progress: progress.BatchProgress(j.hub, runID, strategy),
		})
		if err != nil {
			return fmt.Errorf("score %s: %w", strategy, err)
		}
		j.logger.WithFields(map[string]interface{}{
			"strategy": strategy,
			"run_id":   runID,
			"scored":   res.Summary.Scored,
		}).Info("Scheduled scoring finished")
	}
	return nil
}
