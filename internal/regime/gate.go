package regime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/s2_signals"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/logger"
	"github.com/wonny/aegis-scorer/pkg/redis"
)

// Gate classifies the broad market from reference-index health
// ⭐ SSOT: S1 시장 국면 판단은 여기서만
//
// 지수 데이터 누락/부족 → 해당 지수 unknown (healthy 집계에서 제외)
// 저장소 장애 → 에러 (배치 실패)
type Gate struct {
	source contracts.BarSource
	cfg    strategyconfig.Regime
	cache  *redis.Cache
	logger *logger.Logger
}

// NewGate creates a regime gate. cache may be nil.
func NewGate(source contracts.BarSource, cfg strategyconfig.Regime, cache *redis.Cache, log *logger.Logger) *Gate {
	return &Gate{
		source: source,
		cfg:    cfg,
		cache:  cache,
		logger: log.WithComponent("regime"),
	}
}

// Indices returns the configured reference symbols
func (g *Gate) Indices() []string {
	return append([]string(nil), g.cfg.Indices...)
}

// RequiredHistory is the bar count one index needs to be evaluated
func (g *Gate) RequiredHistory() int {
	return max(g.cfg.MAWindow, g.cfg.TrendWindow+g.cfg.SlopeLookback)
}

// GetMarketHealth evaluates every reference index as of asOf
func (g *Gate) GetMarketHealth(ctx context.Context, asOf time.Time) (contracts.MarketHealth, error) {
	key := redis.RegimeKey(contracts.DateKey(asOf), strings.Join(g.cfg.Indices, ","))

	if g.cache != nil {
		var cached contracts.MarketHealth
		found, err := g.cache.Get(ctx, key, &cached)
		if err != nil {
			g.logger.WithError(err).Warn("regime cache read failed")
		}
		if found {
			return cached, nil
		}
	}

	indices := make([]contracts.IndexHealth, len(g.cfg.Indices))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, symbol := range g.cfg.Indices {
		i, symbol := i, symbol
		eg.Go(func() error {
			h, err := g.evaluate(egCtx, symbol, asOf)
			if err != nil {
				return err
			}
			indices[i] = h
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return contracts.MarketHealth{}, err
	}

	health := Aggregate(asOf, indices)

	zl := g.logger.Zerolog()
	zl.Info().
		Str("as_of", contracts.DateKey(asOf)).
		Str("status", string(health.Status)).
		Int("healthy", health.Healthy).
		Int("known", health.Known).
		Float64("multiplier", health.Multiplier).
		Msg("market health")

	// unknown 지수가 있으면 데이터가 늦게 들어올 수 있으므로 캐시하지 않는다
	if g.cache != nil && health.Known == len(indices) {
		if err := g.cache.Set(ctx, key, health, g.cfg.CacheTTL); err != nil {
			g.logger.WithError(err).Warn("regime cache write failed")
		}
	}

	return health, nil
}

func (g *Gate) evaluate(ctx context.Context, symbol string, asOf time.Time) (contracts.IndexHealth, error) {
	bars, err := g.source.GetBarsAsOf(ctx, symbol, asOf, g.RequiredHistory())
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		return contracts.IndexHealth{Symbol: symbol, Reason: "no data"}, nil
	case err != nil:
		return contracts.IndexHealth{}, fmt.Errorf("regime index %s: %w", symbol, err)
	}
	return EvaluateIndex(symbol, bars, g.cfg), nil
}

// EvaluateIndex applies the health rule to one index's bars (oldest first, ≤ asOf)
func EvaluateIndex(symbol string, bars []contracts.Bar, cfg strategyconfig.Regime) contracts.IndexHealth {
	h := contracts.IndexHealth{Symbol: symbol}

	series, err := s0_data.NewPriceSeries(symbol, bars)
	if err != nil {
		h.Reason = err.Error()
		return h
	}
	need := max(cfg.MAWindow, cfg.TrendWindow+cfg.SlopeLookback)
	if series.Len() < need {
		h.Reason = fmt.Sprintf("insufficient history: %d < %d", series.Len(), need)
		return h
	}

	closes := series.Closes()
	ma, _ := s2_signals.SMA(closes, cfg.MAWindow)

	h.Known = true
	h.Close = series.Last().Close
	h.MA = ma
	h.Trend = TrendOf(closes, cfg)
	h.Healthy = h.Close > h.MA && h.Trend != contracts.TrendDown
	return h
}

// TrendOf labels the slope of SMA(trend_window) over slope_lookback bars
func TrendOf(closes []float64, cfg strategyconfig.Regime) contracts.TrendLabel {
	now, ok := s2_signals.SMA(closes, cfg.TrendWindow)
	if !ok || len(closes) <= cfg.SlopeLookback {
		return contracts.TrendSideways
	}
	prev, ok := s2_signals.SMA(closes[:len(closes)-cfg.SlopeLookback], cfg.TrendWindow)
	if !ok || prev <= 0 {
		return contracts.TrendSideways
	}

	slope := now/prev - 1
	switch {
	case slope > cfg.SlopeThresholdPct:
		return contracts.TrendUp
	case slope < -cfg.SlopeThresholdPct:
		return contracts.TrendDown
	default:
		return contracts.TrendSideways
	}
}

// Aggregate combines index health into a market status.
// 설정된 지수 전부 healthy → BULLISH, 하나 이상 → NEUTRAL, 없음 → BEARISH
func Aggregate(asOf time.Time, indices []contracts.IndexHealth) contracts.MarketHealth {
	health := contracts.MarketHealth{AsOf: asOf, Indices: indices}
	for _, h := range indices {
		if h.Known {
			health.Known++
		}
		if h.Healthy {
			health.Healthy++
		}
	}

	switch {
	case len(indices) > 0 && health.Healthy == len(indices):
		health.Status = contracts.MarketBullish
	case health.Healthy > 0:
		health.Status = contracts.MarketNeutral
	default:
		health.Status = contracts.MarketBearish
	}
	health.Multiplier = health.Status.Multiplier()
	return health
}

// Veto reports whether a strategy must be suppressed under the given health.
// BEARISH 는 baseline 전략의 신규 진입을 막는 서킷 브레이커.
func Veto(health contracts.MarketHealth, strategy strategyconfig.Strategy) bool {
	return strategy.Baseline && health.Status == contracts.MarketBearish
}
