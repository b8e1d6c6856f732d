package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

var day = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

func pair(symbol string, tier contracts.Tier, comps map[string]float64, status contracts.OutcomeStatus, pnl float64) Pair {
	return Pair{
		Signal: contracts.Signal{
			Symbol: symbol, Date: day, Strategy: "momentum", Tier: tier, Score: 42,
			Breakdown: contracts.ScoreBreakdown{Total: 42, Components: comps},
		},
		Outcome: contracts.TradeOutcome{Symbol: symbol, SetupDate: day, Strategy: "momentum", Status: status, PnLPercent: pnl},
	}
}

func gradingFixture() []Pair {
	rsi := map[string]float64{"rsi": 20, "trend": 0}
	trend := map[string]float64{"rsi": 0, "trend": 10}
	return []Pair{
		pair("A", contracts.TierExtreme, rsi, contracts.StatusSuccess, 10),
		pair("B", contracts.TierExtreme, rsi, contracts.StatusFailure, -5),
		pair("C", contracts.TierHigh, trend, contracts.StatusClosedProfit, 2),
		pair("D", contracts.TierHigh, trend, contracts.StatusClosedLoss, -1),
		pair("E", contracts.TierLow, trend, contracts.StatusOpen, 0),
		pair("F", contracts.TierLow, rsi, contracts.StatusNoFill, 0),
	}
}

func TestGradeOverall(t *testing.T) {
	r := Grade(gradingFixture())

	o := r.Overall
	assert.Equal(t, 6, o.Samples)
	assert.Equal(t, 2, o.Wins)
	assert.Equal(t, 2, o.Losses)
	assert.Equal(t, 1, o.Open)
	assert.Equal(t, 1, o.NoFill)
	assert.InDelta(t, 0.5, o.WinRate, 1e-9)
	assert.InDelta(t, 1.5, o.MeanPnL, 1e-9)
	assert.InDelta(t, 6.0, o.AvgWin, 1e-9)
	assert.InDelta(t, -3.0, o.AvgLoss, 1e-9)
	assert.InDelta(t, 2.0, o.ProfitFactor, 1e-9)
	assert.InDelta(t, 42.0, o.MeanScore, 1e-9)
}

func TestGradeByTierSortedStrongestFirst(t *testing.T) {
	r := Grade(gradingFixture())

	require.Len(t, r.ByTier, 3)
	assert.Equal(t, "EXTREME", r.ByTier[0].Group)
	assert.Equal(t, "HIGH", r.ByTier[1].Group)
	assert.Equal(t, "LOW", r.ByTier[2].Group)

	low := r.ByTier[2]
	assert.Equal(t, 0, low.Decided())
	assert.Zero(t, low.WinRate, "open and no_fill never enter the denominator")
}

func TestGradeByComponent(t *testing.T) {
	r := Grade(gradingFixture())

	require.Len(t, r.ByComponent, 2)
	assert.Equal(t, "rsi", r.ByComponent[0].Group)
	assert.Equal(t, 3, r.ByComponent[0].Samples)
	assert.InDelta(t, 0.5, r.ByComponent[0].WinRate, 1e-9)

	assert.Equal(t, "trend", r.ByComponent[1].Group)
	assert.Equal(t, 3, r.ByComponent[1].Samples)
	assert.Equal(t, 1, r.ByComponent[1].Open)
}

func TestGradeOrderIndependent(t *testing.T) {
	pairs := gradingFixture()
	reversed := make([]Pair, len(pairs))
	for i := range pairs {
		reversed[len(pairs)-1-i] = pairs[i]
	}

	assert.Equal(t, Grade(pairs), Grade(reversed))
}

func TestGradeEmpty(t *testing.T) {
	r := Grade(nil)
	assert.Zero(t, r.Overall.Samples)
	assert.Empty(t, r.ByTier)
	assert.Empty(t, r.ByComponent)
}

func TestMatch(t *testing.T) {
	signals := []contracts.Signal{
		{Symbol: "A", Date: day, Strategy: "momentum"},
		{Symbol: "B", Date: day, Strategy: "momentum"},
	}
	outcomes := []contracts.TradeOutcome{
		{Symbol: "A", SetupDate: day, Strategy: "momentum", Status: contracts.StatusSuccess},
		{Symbol: "A", SetupDate: day, Strategy: "mean_reversion", Status: contracts.StatusFailure},
	}

	pairs, unmatched := Match(signals, outcomes)
	require.Len(t, pairs, 1)
	assert.Equal(t, contracts.StatusSuccess, pairs[0].Outcome.Status)
	assert.Equal(t, 1, unmatched)
}

func TestParsePeriod(t *testing.T) {
	now := time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC)

	from, to := ParsePeriod("1m", now)
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, now, to)

	from, _ = ParsePeriod("YTD", now)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), from)

	from, _ = ParsePeriod("", now)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), from)
}
