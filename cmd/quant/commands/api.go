package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/api"
	"github.com/wonny/aegis-scorer/internal/api/handlers"
	"github.com/wonny/aegis-scorer/internal/api/progress"
	"github.com/wonny/aegis-scorer/internal/audit"
)

// apiCmd serves the read-only HTTP API
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "조회용 HTTP API 서버",
	Long: `신호/국면/집계 조회 API 와 배치 진행률 WebSocket 을 제공합니다.

Endpoints:
  GET /health
  GET /metrics                (METRICS_ENABLED=true)
  GET /ws/progress            배치 진행률 (WebSocket)
  GET /api/signals?date=&strategy=
  GET /api/regime?date=
  GET /api/grading?period=&strategy=
  GET /api/grading/latest?strategy=

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --with-scheduler`,
	RunE: runAPI,
}

var apiWithScheduler bool

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "스케줄러를 같은 프로세스에서 실행")
}

func runAPI(cmd *cobra.Command, args []string) error {
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

	defaultStrategy := rt.strategy.StrategyNames()[0]
	hub := progress.NewHub(rt.log)
	router := api.NewRouter(api.Handlers{
		Pipeline: handlers.NewPipelineHandler(rt.signals, orch.Regime(), defaultStrategy, rt.log),
		Grading:  handlers.NewGradingHandler(audit.NewAnalyzer(rt.signals, rt.outcomes, rt.log), rt.reports, defaultStrategy, rt.log),
		Metrics:  rt.metrics,
		Progress: hub,
	}, rt.log)

	if apiWithScheduler {
		s, err := buildScheduler(rt, orch, hub)
		if err != nil {
			return err
		}
		s.Start()
		defer s.Stop()
		rt.log.WithField("jobs", s.GetAllJobs()).Info("Scheduler started")
	}

	return api.New(rt.cfg, rt.log, router).Run(ctx)
}
