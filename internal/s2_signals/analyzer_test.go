package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

func TestRequiredHistory(t *testing.T) {
	a := NewTechnicalAnalyzer(strategyconfig.Default())
	assert.Equal(t, 52, a.RequiredHistory())

	cfg := strategyconfig.Default()
	cfg.Indicators.Support.Enabled = false
	cfg.Indicators.Trend.Enabled = false
	assert.Equal(t, 21, NewTechnicalAnalyzer(cfg).RequiredHistory())
}

func TestAnalyzeLiquidityGate(t *testing.T) {
	a := NewTechnicalAnalyzer(strategyconfig.Default())

	got := a.Analyze(closesSeries(t, linear(60, 100, -1), 50_000))

	assert.Equal(t, contracts.ScoreBreakdown{Total: 0}, got)
	assert.True(t, got.Gated())
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewTechnicalAnalyzer(strategyconfig.Default())
	w := closesSeries(t, linear(80, 150, -0.7), 1e6)

	first := a.Analyze(w)
	second := a.Analyze(w)
	assert.Equal(t, first, second)
}

func TestAnalyzeShortWindowIsNeutral(t *testing.T) {
	a := NewTechnicalAnalyzer(strategyconfig.Default())

	got := a.Analyze(closesSeries(t, flat(3, 100), 1e6))

	assert.False(t, got.Gated())
	assert.Zero(t, got.Total)
	assert.Empty(t, got.FiredComponents())
	assert.Len(t, got.Components, len(a.ScorerNames()))
}

func TestAnalyzeBonusGroupIsExclusive(t *testing.T) {
	a := NewTechnicalAnalyzer(strategyconfig.Default())

	got := a.Analyze(closesSeries(t, linear(60, 200, -1), 1e6))

	require.Equal(t, RuleExtremeOversold, got.Rules[NameRSI])
	assert.Equal(t, 10.0, got.Components[BonusPrefix+BonusRSIExtremeOversold])
	assert.NotContains(t, got.Components, BonusPrefix+BonusRSIOversold)
	assert.NotContains(t, got.Components, BonusPrefix+BonusRSIExtremeOverbought)
}

func TestAnalyzeOverboughtBonusSubtracts(t *testing.T) {
	a := NewTechnicalAnalyzer(strategyconfig.Default())

	got := a.Analyze(closesSeries(t, linear(60, 100, 1), 1e6))

	assert.Equal(t, -10.0, got.Components[BonusPrefix+BonusRSIExtremeOverbought])
	assert.NotContains(t, got.Components, BonusPrefix+BonusRSIOverbought)
}

func TestAnalyzeConfluence(t *testing.T) {
	a := NewTechnicalAnalyzer(strategyconfig.Default())

	closes := linear(59, 200, -0.5)
	closes = append(closes, closes[len(closes)-1]-10)
	got := a.Analyze(closesSeries(t, closes, 1e6))

	require.Equal(t, RuleBelowLower, got.Rules[NameBollinger])
	assert.Equal(t, 10.0, got.Components[ConfluencePrefix+ConfluenceOversoldAtBand])
	assert.Equal(t, ConfluenceOversoldAtBand, got.Rules[ConfluencePrefix+ConfluenceOversoldAtBand])
}

func TestAnalyzeTotalIsSumOfComponents(t *testing.T) {
	a := NewTechnicalAnalyzer(strategyconfig.Default())

	closes := linear(59, 200, -0.5)
	closes = append(closes, closes[len(closes)-1]-10)
	got := a.Analyze(closesSeries(t, closes, 1e6))

	var sum float64
	for _, v := range got.Components {
		sum += v
	}
	assert.InDelta(t, sum, got.Total, 1e-9)
}

func TestAnalyzeZeroBonusNotRecorded(t *testing.T) {
	cfg := strategyconfig.Default()
	cfg.Bonuses.RSIExtremeOversold = 0
	a := NewTechnicalAnalyzer(cfg)

	got := a.Analyze(closesSeries(t, linear(60, 200, -1), 1e6))

	// 첫 규칙이 매칭되면 점수가 0이어도 그룹은 종료
	assert.NotContains(t, got.Components, BonusPrefix+BonusRSIExtremeOversold)
	assert.NotContains(t, got.Components, BonusPrefix+BonusRSIOversold)
}
