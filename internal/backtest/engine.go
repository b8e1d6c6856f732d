package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/aegis-scorer/internal/audit"
	"github.com/wonny/aegis-scorer/internal/brain"
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/data/repos"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// Engine replays the scoring pipeline over historical dates and grades the result
// ⭐ SSOT: 백테스팅 실행은 여기서만
//
// 날짜마다 ScoreBatch 를 as-of 로 돌리고 (미래 봉 차단은 저장소 계층),
// 생성된 setup 을 그 이후 봉으로 시뮬레이션한 뒤 S7 로 집계한다.
// 결과는 메모리 저장소에만 쌓이며 운영 DB 에는 쓰지 않는다.
type Engine struct {
	cfg     *strategyconfig.Config
	source  contracts.BarSource
	workers int
	logger  *logger.Logger
}

// Config holds backtest parameters
type Config struct {
	StartDate time.Time
	EndDate   time.Time
	Strategy  string
	Symbols   []string // empty = whole universe
	Stride    int      // score every Nth trading day (default 1)

	MonteCarlo MonteCarloConfig
}

// Result holds the replay and its grading
type Result struct {
	Config      Config
	Duration    time.Duration
	TradingDays int
	Batches     []contracts.BatchSummary
	Report      *audit.GradingReport

	// 신호일 기준 동일가중 평균 손익을 누적한 곡선
	EquityCurve []EquityPoint
	TotalReturn float64
	MaxDrawdown float64

	// 확정 거래가 MinSamples 미만이면 nil
	MonteCarlo *MonteCarloResult
}

// EquityPoint is the compounded equity after a signal date's decided trades
type EquityPoint struct {
	Date    time.Time `json:"date"`
	Trades  int       `json:"trades"`
	MeanPnL float64   `json:"mean_pnl_pct"`
	Equity  float64   `json:"equity"`
}

// NewEngine creates a new backtest engine
func NewEngine(cfg *strategyconfig.Config, source contracts.BarSource, workers int, log *logger.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		source:  source,
		workers: workers,
		logger:  log.WithComponent("backtest"),
	}
}

// Run executes the replay
func (e *Engine) Run(ctx context.Context, config Config) (*Result, error) {
	if config.EndDate.Before(config.StartDate) {
		return nil, fmt.Errorf("end date %s before start date %s",
			contracts.DateKey(config.EndDate), contracts.DateKey(config.StartDate))
	}
	if config.Stride < 1 {
		config.Stride = 1
	}

	log := e.logger.WithFields(map[string]interface{}{
		"start_date": contracts.DateKey(config.StartDate),
		"end_date":   contracts.DateKey(config.EndDate),
		"strategy":   config.Strategy,
		"stride":     config.Stride,
	})
	log.Info("Starting backtest")
	startTime := time.Now()

	signals := repos.NewMemorySignalRepository()
	outcomes := repos.NewMemoryOutcomeRepository()
	orch, err := brain.NewOrchestrator(e.cfg, brain.Deps{
		Source:   e.source,
		Signals:  signals,
		Outcomes: outcomes,
	}, e.workers, e.logger)
	if err != nil {
		return nil, err
	}

	dates, err := e.tradingDates(ctx, config.StartDate, config.EndDate)
	if err != nil {
		return nil, err
	}

	result := &Result{Config: config, TradingDays: len(dates)}
	for i := 0; i < len(dates); i += config.Stride {
		batch, err := orch.ScoreBatch(ctx, brain.BatchRequest{
			Date:     dates[i],
			Strategy: config.Strategy,
			Symbols:  config.Symbols,
			RunID:    fmt.Sprintf("backtest_%s", contracts.DateKey(dates[i])),
		})
		if err != nil {
			return nil, fmt.Errorf("replay %s: %w", contracts.DateKey(dates[i]), err)
		}
		result.Batches = append(result.Batches, batch.Summary)
	}

	if _, err := orch.EvaluateOutcomes(ctx, brain.OutcomeRequest{
		From:     config.StartDate,
		To:       config.EndDate,
		Strategy: config.Strategy,
	}); err != nil {
		return nil, err
	}

	report, err := audit.NewAnalyzer(signals, outcomes, e.logger).Analyze(ctx, config.StartDate, config.EndDate, config.Strategy)
	if err != nil {
		return nil, err
	}
	result.Report = report

	stored, err := outcomes.GetRange(ctx, config.StartDate, config.EndDate, config.Strategy)
	if err != nil {
		return nil, err
	}
	result.EquityCurve = equityCurve(stored)
	if n := len(result.EquityCurve); n > 0 {
		result.TotalReturn = result.EquityCurve[n-1].Equity - 1
	}
	result.MaxDrawdown = maxDrawdown(result.EquityCurve)

	mc, err := MonteCarlo(stored, config.MonteCarlo)
	switch {
	case errors.Is(err, ErrTooFewTrades):
		log.WithField("min_samples", config.MonteCarlo.MinSamples).Debug("Skipping monte carlo")
	case err != nil:
		return nil, err
	default:
		result.MonteCarlo = mc
	}
	result.Duration = time.Since(startTime)

	log.WithFields(map[string]interface{}{
		"duration":     result.Duration.Seconds(),
		"trading_days": result.TradingDays,
		"batches":      len(result.Batches),
		"trades":       report.Overall.Decided(),
		"win_rate":     fmt.Sprintf("%.2f%%", report.Overall.WinRate*100),
		"total_return": fmt.Sprintf("%.2f%%", result.TotalReturn*100),
		"max_drawdown": fmt.Sprintf("%.2f%%", result.MaxDrawdown*100),
	}).Info("Backtest completed")

	return result, nil
}

// tradingDates uses the first regime index's bar dates as the market calendar
func (e *Engine) tradingDates(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	if len(e.cfg.Regime.Indices) == 0 {
		return nil, errors.New("backtest needs at least one regime index for the trading calendar")
	}
	calendar := e.cfg.Regime.Indices[0]
	days := int(to.Sub(from).Hours()/24) + 1

	bars, err := e.source.GetBarsAfter(ctx, calendar, from.AddDate(0, 0, -1), days)
	if err != nil {
		return nil, fmt.Errorf("trading calendar %s: %w", calendar, err)
	}

	dates := make([]time.Time, 0, len(bars))
	for _, b := range bars {
		if b.Date.After(to) {
			break
		}
		dates = append(dates, b.Date)
	}
	return dates, nil
}

// equityCurve compounds the equal-weight mean PnL of decided trades per setup date
func equityCurve(outcomes []contracts.TradeOutcome) []EquityPoint {
	type daily struct {
		sum float64
		n   int
	}
	byDate := make(map[time.Time]*daily)
	for _, o := range outcomes {
		if !o.Status.IsDecided() {
			continue
		}
		d, ok := byDate[o.SetupDate]
		if !ok {
			d = &daily{}
			byDate[o.SetupDate] = d
		}
		d.sum += o.PnLPercent
		d.n++
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	curve := make([]EquityPoint, 0, len(dates))
	equity := 1.0
	for _, date := range dates {
		d := byDate[date]
		mean := d.sum / float64(d.n)
		equity *= 1 + mean/100
		curve = append(curve, EquityPoint{Date: date, Trades: d.n, MeanPnL: mean, Equity: equity})
	}
	return curve
}

// maxDrawdown calculates maximum drawdown from equity curve
func maxDrawdown(curve []EquityPoint) float64 {
	maxDD := 0.0
	peak := 1.0
	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if dd := (peak - point.Equity) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
