package commands

import (
	"context"
	"fmt"

	"github.com/wonny/aegis-scorer/internal/audit"
	"github.com/wonny/aegis-scorer/internal/brain"
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/data/repos"
	"github.com/wonny/aegis-scorer/internal/metrics"
	"github.com/wonny/aegis-scorer/internal/overlay"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/config"
	"github.com/wonny/aegis-scorer/pkg/database"
	"github.com/wonny/aegis-scorer/pkg/logger"
	"github.com/wonny/aegis-scorer/pkg/redis"
)

// runtime holds the process-wide dependencies of one command invocation
type runtime struct {
	cfg      *config.Config
	strategy *strategyconfig.Config
	log      *logger.Logger

	db    *database.DB
	redis *redis.Client

	source   contracts.BarSource
	signals  contracts.SignalRepository
	outcomes contracts.OutcomeRepository
	reports  *audit.Repository
	cache    *redis.Cache
	metrics  *metrics.Registry
	model    overlay.ProbabilityModel
}

// newRuntime loads config, connects Postgres (and Redis when enabled)
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: load config: %v", errConfig, err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	strategy, err := loadStrategy(cfg.Engine.StrategyPath)
	if err != nil {
		return nil, err
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w: %v", contracts.ErrUpstreamUnavailable, err)
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		// 캐시 전용이므로 Redis 없이 계속
		log.WithError(err).Warn("Redis unavailable, regime cache disabled")
		rc = redis.Disabled()
	}

	rt := &runtime{
		cfg:      cfg,
		strategy: strategy,
		log:      log,
		db:       db,
		redis:    rc,
		source:   s0_data.NewResilientSource(s0_data.NewPriceRepository(db.Pool), s0_data.ResilienceFromConfig(cfg), log),
		signals:  repos.NewSignalRepository(db.Pool),
		outcomes: repos.NewOutcomeRepository(db.Pool),
		reports:  audit.NewRepository(db.Pool),
		cache:    redis.NewCache(rc, "scorer"),
		model:    overlay.New(cfg.Model, log),
	}
	if cfg.MetricsEnabled {
		rt.metrics = metrics.New()
	}
	return rt, nil
}

// loadStrategy reads the strategy YAML (flag overrides env)
func loadStrategy(fallback string) (*strategyconfig.Config, error) {
	path := strategyFile
	if path == "" {
		path = fallback
	}
	return loadStrategyPath(path)
}

// orchestrator builds the batch orchestrator. dryRun swaps in memory repositories.
func (rt *runtime) orchestrator(dryRun bool) (*brain.Orchestrator, error) {
	deps := brain.Deps{
		Source:   rt.source,
		Signals:  rt.signals,
		Outcomes: rt.outcomes,
		Model:    rt.model,
		Cache:    rt.cache,
		Metrics:  rt.metrics,
	}
	if dryRun {
		deps.Signals = repos.NewMemorySignalRepository()
		deps.Outcomes = repos.NewMemoryOutcomeRepository()
	}
	return brain.NewOrchestrator(rt.strategy, deps, rt.cfg.Engine.Workers, rt.log)
}

// Close releases connections
func (rt *runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if rt.db != nil {
		rt.db.Close()
	}
}

// strategiesFor returns [name] or every configured strategy when name is empty
func strategiesFor(cfg *strategyconfig.Config, name string) ([]string, error) {
	if name == "" {
		return cfg.StrategyNames(), nil
	}
	if _, err := cfg.Strategy(name); err != nil {
		return nil, err
	}
	return []string{name}, nil
}
