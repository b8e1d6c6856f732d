package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/api/progress"
	"github.com/wonny/aegis-scorer/internal/audit"
	"github.com/wonny/aegis-scorer/internal/brain"
	"github.com/wonny/aegis-scorer/internal/scheduler"
	"github.com/wonny/aegis-scorer/internal/scheduler/jobs"
)

// schedulerCmd runs the cron jobs
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "배치 스케줄러 (일일 스코어링/사후 검증/주간 집계)",
	Long: `Jobs:
  daily_scoring        평일 17:30 ET  전 전략 스코어링
  outcome_evaluation   평일 18:00 ET  최근 신호 사후 시뮬레이션
  regime_refresh       평일 17:15 ET  시장 국면 캐시 갱신
  weekly_grading       토 08:00 ET    3M 티어/지표 집계 저장

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler run daily_scoring
  go run ./cmd/quant scheduler list`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 실행 (SIGINT/SIGTERM 까지)",
		RunE:  runSchedulerStart,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run <job>",
		Short: "Job 1회 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerRun,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 Job 목록",
		RunE:  runSchedulerList,
	}

	gradingPeriod = "3M"
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
}

// buildScheduler registers every job against one orchestrator. hub may be nil.
func buildScheduler(rt *runtime, orch *brain.Orchestrator, hub *progress.Hub) (*scheduler.Scheduler, error) {
	strategies := rt.strategy.StrategyNames()
	lookback := 2 * rt.strategy.Simulation.HorizonBars

	s := scheduler.New(rt.log, scheduler.DefaultOptions())
	for _, job := range []scheduler.Job{
		jobs.NewScoringJob(orch, strategies, hub, rt.log),
		jobs.NewOutcomeJob(orch, strategies, lookback, rt.log),
		jobs.NewGradingJob(audit.NewAnalyzer(rt.signals, rt.outcomes, rt.log), rt.reports, strategies, gradingPeriod, rt.log),
		jobs.NewRegimeJob(orch.Regime(), rt.metrics, rt.log),
	} {
		if err := s.AddJob(job); err != nil {
			return nil, fmt.Errorf("add job %s: %w", job.Name(), err)
		}
	}
	return s, nil
}

// signalContext is cancelled on SIGINT/SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runSchedulerStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	orch, err := rt.orchestrator(rt.cfg.Engine.DryRun)
	if err != nil {
		return err
	}
	s, err := buildScheduler(rt, orch, nil)
	if err != nil {
		return err
	}

	s.Start()
	rt.log.WithField("jobs", s.GetAllJobs()).Info("Scheduler started")
	<-ctx.Done()
	s.Stop()

	printSchedulerStats(cmd, s)
	return nil
}

func runSchedulerRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	orch, err := rt.orchestrator(rt.cfg.Engine.DryRun)
	if err != nil {
		return err
	}
	s, err := buildScheduler(rt, orch, nil)
	if err != nil {
		return err
	}

	res, err := s.RunJob(ctx, args[0])
	out := cmd.OutOrStdout()
	printHeader(out, "Job "+args[0],
		field{"Attempts", fmt.Sprintf("%d", res.Attempts)},
		field{"Duration", res.Duration.Round(time.Millisecond).String()},
	)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("job %s failed: %s", args[0], res.Error)
	}
	printSuccess(out, "completed")
	return nil
}

func runSchedulerList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	// Schedule() 은 의존성을 참조하지 않으므로 빈 Job 으로 조회
	list := []scheduler.Job{
		jobs.NewScoringJob(nil, nil, nil, nil),
		jobs.NewOutcomeJob(nil, nil, 1, nil),
		jobs.NewGradingJob(nil, nil, nil, gradingPeriod, nil),
		jobs.NewRegimeJob(nil, nil, nil),
	}
	rows := make([][]string, 0, len(list))
	for _, job := range list {
		rows = append(rows, []string{job.Name(), job.Schedule()})
	}
	printTable(out, []string{"Job", "Schedule (sec min hour dom mon dow, ET)"}, []int{20, 40}, rows)
	return nil
}

func printSchedulerStats(cmd *cobra.Command, s *scheduler.Scheduler) {
	stats := s.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		st := stats[name]
		rows = append(rows, []string{name, fmt.Sprintf("%d", st.TotalRuns), fmt.Sprintf("%d", st.SuccessCount), fmt.Sprintf("%d", st.FailureCount)})
	}
	printTable(cmd.OutOrStdout(), []string{"Job", "Runs", "OK", "Failed"}, []int{20, 6, 6, 6}, rows)
}
