package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func linearBars(n int, start, step float64) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := start + step*float64(i)
		bars[i] = contracts.Bar{Date: day0.AddDate(0, 0, i), Open: c, High: c + 0.2, Low: c - 0.2, Close: c, Volume: 1e6}
	}
	return bars
}

func replaySource() *s0_data.MemorySource {
	src := s0_data.NewMemorySource()
	src.Put("SPY", linearBars(80, 100, 1))
	src.Put("QQQ", linearBars(80, 100, 1))
	src.Put("AAA", linearBars(80, 200, -1))
	return src
}

func TestRunReplaysEveryTradingDay(t *testing.T) {
	e := NewEngine(strategyconfig.Default(), replaySource(), 2, logger.NewNop())

	res, err := e.Run(context.Background(), Config{
		StartDate: day0.AddDate(0, 0, 59),
		EndDate:   day0.AddDate(0, 0, 69),
		Strategy:  "momentum",
	})
	require.NoError(t, err)

	assert.Equal(t, 11, res.TradingDays)
	require.Len(t, res.Batches, 11)
	for _, b := range res.Batches {
		assert.Equal(t, 1, b.Total)
	}

	require.NotNil(t, res.Report)
	overall := res.Report.Overall
	assert.Equal(t, 11, overall.Samples)
	// 하락이 계속되어 할인된 진입가에 닿지 않음
	assert.Zero(t, overall.Decided())
	assert.Equal(t, 11, overall.Open+overall.NoFill)
	assert.Empty(t, res.EquityCurve)
	assert.Zero(t, res.MaxDrawdown)
}

func TestRunStride(t *testing.T) {
	e := NewEngine(strategyconfig.Default(), replaySource(), 2, logger.NewNop())

	res, err := e.Run(context.Background(), Config{
		StartDate: day0.AddDate(0, 0, 59),
		EndDate:   day0.AddDate(0, 0, 69),
		Strategy:  "momentum",
		Stride:    5,
	})
	require.NoError(t, err)

	assert.Equal(t, 11, res.TradingDays)
	assert.Len(t, res.Batches, 3) // 59, 64, 69
}

func TestRunRejectsInvertedRange(t *testing.T) {
	e := NewEngine(strategyconfig.Default(), replaySource(), 1, logger.NewNop())

	_, err := e.Run(context.Background(), Config{StartDate: day0.AddDate(0, 0, 5), EndDate: day0, Strategy: "momentum"})
	assert.Error(t, err)
}

func TestEquityCurve(t *testing.T) {
	d1, d2 := day0, day0.AddDate(0, 0, 1)
	outcomes := []contracts.TradeOutcome{
		{SetupDate: d2, Status: contracts.StatusFailure, PnLPercent: -20},
		{SetupDate: d1, Status: contracts.StatusSuccess, PnLPercent: 10},
		{SetupDate: d1, Status: contracts.StatusClosedLoss, PnLPercent: -2},
		{SetupDate: d1, Status: contracts.StatusOpen},
		{SetupDate: d2, Status: contracts.StatusNoFill},
	}

	curve := equityCurve(outcomes)
	require.Len(t, curve, 2)

	assert.Equal(t, d1, curve[0].Date)
	assert.Equal(t, 2, curve[0].Trades)
	assert.InDelta(t, 4.0, curve[0].MeanPnL, 1e-9)
	assert.InDelta(t, 1.04, curve[0].Equity, 1e-9)

	assert.Equal(t, 1, curve[1].Trades)
	assert.InDelta(t, 0.832, curve[1].Equity, 1e-9)

	assert.InDelta(t, 0.2, maxDrawdown(curve), 1e-9)
}

func TestMaxDrawdownEmpty(t *testing.T) {
	assert.Zero(t, maxDrawdown(nil))
}
