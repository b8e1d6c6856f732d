package brain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/metrics"
	"github.com/wonny/aegis-scorer/internal/overlay"
	"github.com/wonny/aegis-scorer/internal/regime"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/s1_universe"
	"github.com/wonny/aegis-scorer/internal/s2_signals"
	"github.com/wonny/aegis-scorer/internal/s6_simulation"
	"github.com/wonny/aegis-scorer/internal/setup"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/logger"
	"github.com/wonny/aegis-scorer/pkg/redis"
	"github.com/wonny/aegis-scorer/pkg/workerpool"
)

// historyWarmup extra bars loaded beyond the longest lookback so that
// Wilder smoothing starts from the same depth on every run
const historyWarmup = 100

// Deps are the orchestrator's collaborators. Model, Cache, Metrics may be nil.
type Deps struct {
	Source   contracts.BarSource
	Signals  contracts.SignalRepository
	Outcomes contracts.OutcomeRepository
	Model    overlay.ProbabilityModel
	Cache    *redis.Cache
	Metrics  *metrics.Registry
}

// Orchestrator coordinates S0 → S1 → S2 → S3 per symbol, and S6 afterwards
// ⭐ SSOT: 파이프라인 조율은 여기서만
//
// 설정은 생성 시점에 검증·복제되어 배치 동안 읽기 전용으로 공유된다.
type Orchestrator struct {
	cfg        *strategyconfig.Config
	configHash string

	source    contracts.BarSource
	signals   contracts.SignalRepository
	outcomes  contracts.OutcomeRepository
	model     overlay.ProbabilityModel
	metrics   *metrics.Registry
	analyzer  *s2_signals.TechnicalAnalyzer
	gate      *regime.Gate
	universe  *s1_universe.Builder
	simulator *s6_simulation.Simulator
	pool      *workerpool.Pool

	logger *logger.Logger
}

// NewOrchestrator validates cfg and wires the pipeline
func NewOrchestrator(cfg *strategyconfig.Config, deps Deps, workers int, log *logger.Logger) (*Orchestrator, error) {
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("strategy config: %w", err)
	}
	snapshot := cfg.Clone()
	hash, err := strategyconfig.Hash(snapshot)
	if err != nil {
		return nil, fmt.Errorf("strategy config hash: %w", err)
	}

	if workers <= 0 {
		workers = snapshot.Batch.Workers
	}
	model := deps.Model
	if model == nil {
		model = overlay.Noop{}
	}

	return &Orchestrator{
		cfg:        snapshot,
		configHash: hash,
		source:     deps.Source,
		signals:    deps.Signals,
		outcomes:   deps.Outcomes,
		model:      model,
		metrics:    deps.Metrics,
		analyzer:   s2_signals.NewTechnicalAnalyzer(snapshot),
		gate:       regime.NewGate(deps.Source, snapshot.Regime, deps.Cache, log),
		universe:   s1_universe.NewBuilder(deps.Source, snapshot.Regime.Indices),
		simulator:  s6_simulation.NewSimulator(log),
		pool:       workerpool.New(workers),
		logger:     log.WithComponent("orchestrator"),
	}, nil
}

// Config returns the validated config snapshot
func (o *Orchestrator) Config() *strategyconfig.Config { return o.cfg }

// ConfigHash returns the hash stamped on every signal
func (o *Orchestrator) ConfigHash() string { return o.configHash }

// Regime exposes the market gate (API, CLI)
func (o *Orchestrator) Regime() *regime.Gate { return o.gate }

// GenerateRunID returns a new batch run identifier
func GenerateRunID() string {
	return "run_" + uuid.NewString()
}

// BatchRequest describes one scoring batch
type BatchRequest struct {
	Date     time.Time
	Strategy string
	Symbols  []string // empty = whole store universe
	RunID    string   // empty = generated
	DryRun   bool     // skip persistence
	Progress workerpool.Progress[SymbolResult]
}

// SymbolResult is one symbol's outcome inside a batch
type SymbolResult struct {
	Symbol string
	Kind   contracts.ResultKind
	Signal *contracts.Signal
	Err    error
}

// BatchResult is the reduced batch
type BatchResult struct {
	Summary  contracts.BatchSummary
	Health   contracts.MarketHealth
	Signals  []contracts.Signal // score desc, symbol asc
	Universe *s1_universe.Universe
}

// SummaryLine is the one-line operator summary
func (r *BatchResult) SummaryLine() string {
	s := r.Summary
	return fmt.Sprintf("%s %s: %d symbols | %d scored | %d no-signal | %d vetoed | %d invalid-setup | %d integrity-errors | %d failed | regime=%s (%.1f) | %s",
		contracts.DateKey(s.Date), s.Strategy, s.Total, s.Scored, s.NoSignal, s.Vetoed,
		s.InvalidSetup, s.IntegrityError, s.Failed, r.Health.Status, r.Health.Multiplier,
		s.Duration.Round(time.Millisecond))
}

// batchPlan is the per-batch read-only state shared by workers
type batchPlan struct {
	runID    string
	date     time.Time
	strategy strategyconfig.Strategy
	builder  *setup.Builder
	health   contracts.MarketHealth
	vetoed   bool
	required int
}

// ScoreBatch scores every symbol in the universe for one date and strategy.
// 저장소 장애(ErrUpstreamUnavailable)는 배치 전체를 중단시키고 저장하지 않는다.
func (o *Orchestrator) ScoreBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	start := time.Now()

	strategy, err := o.cfg.Strategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	runID := req.RunID
	if runID == "" {
		runID = GenerateRunID()
	}

	log := o.logger.WithFields(map[string]interface{}{
		"run_id":   runID,
		"date":     contracts.DateKey(req.Date),
		"strategy": strategy.Name,
		"dry_run":  req.DryRun,
	})
	log.Info("Starting scoring batch")

	// S1: regime (날짜당 1회, 모든 worker 가 공유)
	stageStart := time.Now()
	health, err := o.gate.GetMarketHealth(ctx, req.Date)
	if err != nil {
		return nil, fmt.Errorf("S1 regime: %w", err)
	}
	o.metrics.SetRegime(health)

	universe, err := o.universe.Build(ctx, req.Date, req.Symbols)
	if err != nil {
		return nil, fmt.Errorf("S1 universe: %w", err)
	}
	o.metrics.ObserveStage(contracts.StageRegime, time.Since(stageStart))

	builder := setup.NewBuilder(*strategy, o.cfg.Setup)
	plan := batchPlan{
		runID:    runID,
		date:     req.Date,
		strategy: *strategy,
		builder:  builder,
		health:   health,
		vetoed:   regime.Veto(health, *strategy),
		required: o.RequiredHistory(),
	}
	if plan.vetoed {
		log.WithField("regime", health.Status).Warn("Baseline strategy vetoed by market regime")
	}

	// S0 → S3: 종목별 병렬 처리. 저장소 장애 발생 시 남은 작업 취소.
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var upstreamErr error
	var once sync.Once

	stageStart = time.Now()
	results, mapErr := workerpool.Map(batchCtx, o.pool, universe.Symbols, func(ctx context.Context, symbol string) SymbolResult {
		r := o.scoreSymbol(ctx, plan, symbol)
		if errors.Is(r.Err, contracts.ErrUpstreamUnavailable) {
			once.Do(func() {
				upstreamErr = r.Err
				cancel()
			})
		}
		return r
	}, req.Progress)
	o.metrics.ObserveStage(contracts.StageSignals, time.Since(stageStart))

	result := &BatchResult{
		Summary:  contracts.BatchSummary{RunID: runID, Date: req.Date, Strategy: strategy.Name},
		Health:   health,
		Universe: universe,
	}
	for _, r := range results {
		result.Summary.Add(r.Kind)
		if r.Signal != nil {
			result.Signals = append(result.Signals, *r.Signal)
		}
	}
	sortSignals(result.Signals)
	result.Summary.Duration = time.Since(start)

	if upstreamErr != nil {
		log.WithError(upstreamErr).Error("Scoring batch aborted: store unavailable")
		return result, fmt.Errorf("scoring batch %s: %w", runID, upstreamErr)
	}
	if mapErr != nil {
		return result, fmt.Errorf("scoring batch %s: %w", runID, mapErr)
	}

	if !req.DryRun && o.signals != nil {
		if err := o.signals.Save(ctx, result.Signals); err != nil {
			return result, fmt.Errorf("save signals: %w", err)
		}
	}
	result.Summary.Duration = time.Since(start)
	o.metrics.ObserveBatch(result.Summary)

	log.WithFields(map[string]interface{}{
		"total":           result.Summary.Total,
		"scored":          result.Summary.Scored,
		"no_signal":       result.Summary.NoSignal,
		"vetoed":          result.Summary.Vetoed,
		"invalid_setup":   result.Summary.InvalidSetup,
		"integrity_error": result.Summary.IntegrityError,
		"failed":          result.Summary.Failed,
		"regime":          health.Status,
		"duration_ms":     result.Summary.Duration.Milliseconds(),
	}).Info(result.SummaryLine())

	return result, nil
}

// RequiredHistory is the number of bars a symbol needs to be scored
func (o *Orchestrator) RequiredHistory() int {
	return max(o.analyzer.RequiredHistory(), o.cfg.Setup.ATRPeriod+1)
}

func (o *Orchestrator) scoreSymbol(ctx context.Context, plan batchPlan, symbol string) SymbolResult {
	res := SymbolResult{Symbol: symbol}
	log := o.logger.WithFields(map[string]interface{}{"symbol": symbol, "run_id": plan.runID})

	// S0: 데이터 (asOf 이후 봉은 저장소 계층에서 차단)
	bars, err := o.source.GetBarsAsOf(ctx, symbol, plan.date, plan.required+historyWarmup)
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		res.Kind = contracts.ResultNoSignal
		return res
	case err != nil:
		res.Kind, res.Err = contracts.ResultFailed, err
		log.WithError(err).Warn("bar load failed")
		return res
	}

	series, err := s0_data.NewPriceSeries(symbol, bars)
	if err != nil {
		res.Kind, res.Err = contracts.ResultIntegrityError, err
		log.WithError(err).Warn("data integrity violation")
		return res
	}

	if series.Len() < plan.required {
		res.Kind, res.Err = contracts.ResultNoSignal, contracts.ErrInsufficientHistory
		log.WithFields(map[string]interface{}{"bars": series.Len(), "required": plan.required}).Debug("insufficient history")
		return res
	}
	if contracts.DateKey(series.Last().Date) != contracts.DateKey(plan.date) {
		// 해당 날짜 봉이 없음 (휴장, 거래정지)
		res.Kind = contracts.ResultNoSignal
		return res
	}

	// S2: 점수
	breakdown := o.analyzer.Analyze(series)
	if breakdown.Gated() || breakdown.Total < plan.strategy.MinScore {
		res.Kind = contracts.ResultNoSignal
		return res
	}
	if plan.vetoed {
		res.Kind = contracts.ResultVetoed
		return res
	}

	// S3: setup
	tradeSetup, err := plan.builder.Build(series, breakdown)
	if err != nil {
		if errors.Is(err, contracts.ErrInvalidSetup) {
			res.Kind, res.Err = contracts.ResultInvalidSetup, err
			log.WithError(err).Info("invalid trade setup")
			return res
		}
		res.Kind, res.Err = contracts.ResultNoSignal, err
		return res
	}

	res.Kind = contracts.ResultScored
	res.Signal = &contracts.Signal{
		RunID:         plan.runID,
		Symbol:        symbol,
		Date:          plan.date,
		Strategy:      plan.strategy.Name,
		Score:         breakdown.Total,
		Tier:          tradeSetup.Tier,
		Breakdown:     breakdown,
		Setup:         &tradeSetup,
		Probability:   o.model.PredictProbability(ctx, symbol, breakdown, plan.date),
		Regime:        plan.health.Status,
		PositionScale: plan.health.Multiplier,
		ConfigHash:    o.configHash,
		CreatedAt:     time.Now().UTC(),
	}
	return res
}

func sortSignals(signals []contracts.Signal) {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		return signals[i].Symbol < signals[j].Symbol
	})
}
