package brain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/data/repos"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/s1_universe"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

const nBars = 60

func asOf() time.Time { return day0.AddDate(0, 0, nBars-1) }

// linearBars: open=close, 고저 ±0.2
func linearBars(n int, start, step float64) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := start + step*float64(i)
		bars[i] = contracts.Bar{Date: day0.AddDate(0, 0, i), Open: c, High: c + 0.2, Low: c - 0.2, Close: c, Volume: 1e6}
	}
	return bars
}

// marketSource: SPY/QQQ 상승(또는 하락) + 과매도 하락 종목 AAA
func marketSource(healthy bool) *s0_data.MemorySource {
	src := s0_data.NewMemorySource()
	idx := linearBars(nBars, 100, 1)
	if !healthy {
		idx = linearBars(nBars, 300, -1)
	}
	src.Put("SPY", idx)
	src.Put("QQQ", idx)
	src.Put("AAA", linearBars(nBars, 200, -1))
	return src
}

type fixture struct {
	orch     *Orchestrator
	signals  *repos.MemorySignalRepository
	outcomes *repos.MemoryOutcomeRepository
}

func newFixture(t *testing.T, src contracts.BarSource) fixture {
	t.Helper()
	f := fixture{
		signals:  repos.NewMemorySignalRepository(),
		outcomes: repos.NewMemoryOutcomeRepository(),
	}
	orch, err := NewOrchestrator(strategyconfig.Default(), Deps{
		Source:   src,
		Signals:  f.signals,
		Outcomes: f.outcomes,
	}, 4, logger.NewNop())
	require.NoError(t, err)
	f.orch = orch
	return f
}

func TestNewOrchestratorRejectsInvalidConfig(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Batch.Workers = 0

	_, err := NewOrchestrator(cfg, Deps{Source: s0_data.NewMemorySource()}, 1, logger.NewNop())
	assert.Error(t, err)
}

func TestScoreBatchScoresAndPersists(t *testing.T) {
	f := newFixture(t, marketSource(true))

	res, err := f.orch.ScoreBatch(context.Background(), BatchRequest{Date: asOf(), Strategy: "momentum", RunID: "run_test"})
	require.NoError(t, err)

	assert.Equal(t, contracts.MarketBullish, res.Health.Status)
	assert.Equal(t, []string{"AAA"}, res.Universe.Symbols)
	assert.Equal(t, 1, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Scored)

	require.Len(t, res.Signals, 1)
	sig := res.Signals[0]
	assert.Equal(t, "run_test", sig.RunID)
	assert.Equal(t, "AAA", sig.Symbol)
	assert.Equal(t, sig.Breakdown.Total, sig.Score)
	assert.Equal(t, 1.0, sig.PositionScale)
	assert.Equal(t, f.orch.ConfigHash(), sig.ConfigHash)
	require.NotNil(t, sig.Setup)
	assert.Less(t, sig.Setup.StopLoss, sig.Setup.EntryPrice)
	assert.Greater(t, sig.Setup.TakeProfit, sig.Setup.EntryPrice)

	stored, err := f.signals.GetByDate(context.Background(), asOf(), "momentum")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestScoreBatchDryRunSkipsPersistence(t *testing.T) {
	f := newFixture(t, marketSource(true))

	res, err := f.orch.ScoreBatch(context.Background(), BatchRequest{Date: asOf(), Strategy: "momentum", DryRun: true})
	require.NoError(t, err)

	assert.Len(t, res.Signals, 1)
	assert.Zero(t, f.signals.Len())
	assert.Contains(t, res.Summary.RunID, "run_")
}

func TestScoreBatchRegimeVeto(t *testing.T) {
	f := newFixture(t, marketSource(false))

	// baseline 전략은 BEARISH 에서 veto
	res, err := f.orch.ScoreBatch(context.Background(), BatchRequest{Date: asOf(), Strategy: "momentum"})
	require.NoError(t, err)
	assert.Equal(t, contracts.MarketBearish, res.Health.Status)
	assert.Equal(t, 1, res.Summary.Vetoed)
	assert.Empty(t, res.Signals)

	// 비 baseline 전략은 점수는 내되 position scale 0
	res, err = f.orch.ScoreBatch(context.Background(), BatchRequest{Date: asOf(), Strategy: "mean_reversion"})
	require.NoError(t, err)
	require.Len(t, res.Signals, 1)
	assert.Equal(t, 0.0, res.Signals[0].PositionScale)
	assert.Equal(t, contracts.MarketBearish, res.Signals[0].Regime)
}

func TestScoreBatchClassifiesSymbols(t *testing.T) {
	src := marketSource(true)
	src.Put("SHORT", linearBars(10, 50, -1))       // history 부족
	src.Put("STALE", linearBars(nBars-5, 200, -1)) // 해당 날짜 봉 없음
	src.Put("THIN", func() []contracts.Bar {       // 유동성 게이트
		bars := linearBars(nBars, 200, -1)
		for i := range bars {
			bars[i].Volume = 10
		}
		return bars
	}())
	broken := linearBars(nBars, 200, -1)
	broken[30].Date = broken[29].Date
	src.Put("DUP", broken)

	f := newFixture(t, src)
	res, err := f.orch.ScoreBatch(context.Background(), BatchRequest{Date: asOf(), Strategy: "momentum"})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Scored)
	assert.Equal(t, 3, res.Summary.NoSignal)
	assert.Equal(t, 1, res.Summary.IntegrityError)
	assert.Equal(t, 0, res.Summary.Failed)
}

func TestScoreBatchExplicitSymbols(t *testing.T) {
	f := newFixture(t, marketSource(true))

	res, err := f.orch.ScoreBatch(context.Background(), BatchRequest{
		Date: asOf(), Strategy: "momentum", Symbols: []string{"aaa", "ZZZ"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Scored)
	assert.Equal(t, s1_universe.ReasonNotListed, res.Universe.Excluded["ZZZ"])
}

type outageSource struct {
	*s0_data.MemorySource
	symbol string
}

func (s outageSource) GetBarsAsOf(ctx context.Context, symbol string, asOf time.Time, limit int) ([]contracts.Bar, error) {
	if symbol == s.symbol {
		return nil, contracts.ErrUpstreamUnavailable
	}
	return s.MemorySource.GetBarsAsOf(ctx, symbol, asOf, limit)
}

func TestScoreBatchAbortsOnUpstreamOutage(t *testing.T) {
	src := marketSource(true)
	src.Put("BBB", linearBars(nBars, 200, -1))
	f := newFixture(t, outageSource{MemorySource: src, symbol: "BBB"})

	_, err := f.orch.ScoreBatch(context.Background(), BatchRequest{Date: asOf(), Strategy: "momentum"})
	require.ErrorIs(t, err, contracts.ErrUpstreamUnavailable)
	assert.Zero(t, f.signals.Len())
}

func TestScoreBatchUnknownStrategy(t *testing.T) {
	f := newFixture(t, marketSource(true))

	_, err := f.orch.ScoreBatch(context.Background(), BatchRequest{Date: asOf(), Strategy: "nope"})
	assert.Error(t, err)
}

func TestScoreBatchProgress(t *testing.T) {
	src := marketSource(true)
	src.Put("BBB", linearBars(nBars, 180, -1))
	f := newFixture(t, src)

	var done []int
	_, err := f.orch.ScoreBatch(context.Background(), BatchRequest{
		Date: asOf(), Strategy: "momentum", DryRun: true,
		Progress: func(d, total int, _ SymbolResult) {
			assert.Equal(t, 2, total)
			done = append(done, d)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, done)
}

func TestSortSignals(t *testing.T) {
	signals := []contracts.Signal{
		{Symbol: "B", Score: 10},
		{Symbol: "C", Score: 30},
		{Symbol: "A", Score: 10},
	}
	sortSignals(signals)

	assert.Equal(t, "C", signals[0].Symbol)
	assert.Equal(t, "A", signals[1].Symbol)
	assert.Equal(t, "B", signals[2].Symbol)
}
