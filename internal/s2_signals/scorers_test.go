package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

func defaults() strategyconfig.Indicators { return strategyconfig.Default().Indicators }

func TestRSIScorer(t *testing.T) {
	s := NewRSIScorer(defaults().RSI)

	c := s.Score(closesSeries(t, linear(30, 100, -1), 1e6))
	assert.Equal(t, RuleExtremeOversold, c.Rule)
	assert.Equal(t, 20.0, c.Value)

	c = s.Score(closesSeries(t, linear(30, 100, 1), 1e6))
	assert.Equal(t, RuleExtremeOverbought, c.Rule)
	assert.Equal(t, -10.0, c.Value)

	c = s.Score(closesSeries(t, flat(30, 100), 1e6))
	assert.False(t, c.Fired())
}

func TestScorersShortWindowAreNeutral(t *testing.T) {
	w := closesSeries(t, linear(1, 100, -1), 1e6)

	for _, s := range BuildScorers(defaults()) {
		t.Run(s.Name(), func(t *testing.T) {
			c := s.Score(w)
			assert.Equal(t, s.Name(), c.Name)
			assert.Zero(t, c.Value)
			assert.Empty(t, c.Rule)
		})
	}
}

func TestBollingerScorer(t *testing.T) {
	s := NewBollingerScorer(defaults().Bollinger)

	closes := append(flat(19, 100), 90)
	c := s.Score(closesSeries(t, closes, 1e6))
	assert.Equal(t, RuleBelowLower, c.Rule)
	assert.Equal(t, 10.0, c.Value)

	closes = append(flat(19, 100), 110)
	c = s.Score(closesSeries(t, closes, 1e6))
	assert.Equal(t, RuleAboveUpper, c.Rule)
	assert.Equal(t, -5.0, c.Value)

	// zero variance → neutral
	c = s.Score(closesSeries(t, flat(20, 100), 1e6))
	assert.False(t, c.Fired())
}

func TestTrendScorer(t *testing.T) {
	s := NewTrendScorer(defaults().Trend)

	c := s.Score(closesSeries(t, linear(60, 1, 1), 1e6))
	assert.Equal(t, RuleUptrend, c.Rule)
	assert.Equal(t, 10.0, c.Value)

	c = s.Score(closesSeries(t, linear(60, 100, -1), 1e6))
	assert.Equal(t, RuleDowntrend, c.Rule)
	assert.Equal(t, -10.0, c.Value)
}

func volumeBars(lastOpen, lastClose, lastVolume float64) []contracts.Bar {
	bars := make([]contracts.Bar, 0, 21)
	for i := 0; i < 20; i++ {
		bars = append(bars, bar(i, 100, 100.5, 99.5, 100, 1000))
	}
	return append(bars, bar(20, lastOpen, lastClose+0.5, lastOpen-0.5, lastClose, lastVolume))
}

func TestVolumeScorer(t *testing.T) {
	s := NewVolumeScorer(defaults().Volume)

	tests := []struct {
		name      string
		open      float64
		close     float64
		volume    float64
		wantRule  string
		wantValue float64
	}{
		{"breakout confirmed", 100, 104, 2000, RuleBreakoutConfirmed, 10},
		{"breakout unconfirmed", 100, 104, 1000, RuleBreakoutUnconfirmed, 5},
		{"gap confirmed", 103, 103, 1500, RuleGapConfirmed, 10},
		{"gap unconfirmed", 103, 103, 100, RuleGapUnconfirmed, 5},
		{"no event", 100, 100.5, 5000, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := s.Score(series(t, volumeBars(tt.open, tt.close, tt.volume)))
			assert.Equal(t, tt.wantRule, c.Rule)
			assert.Equal(t, tt.wantValue, c.Value)
		})
	}
}

func TestVolumeUnconfirmedNeverInverts(t *testing.T) {
	s := NewVolumeScorer(defaults().Volume)

	confirmed := s.Score(series(t, volumeBars(100, 104, 5000)))
	unconfirmed := s.Score(series(t, volumeBars(100, 104, 10)))

	assert.Greater(t, confirmed.Value, 0.0)
	assert.Greater(t, unconfirmed.Value, 0.0)
	assert.LessOrEqual(t, unconfirmed.Value, confirmed.Value)
}

func TestVolatilityScorer(t *testing.T) {
	s := NewVolatilityScorer(defaults().Volatility)

	calm := make([]contracts.Bar, 16)
	wild := make([]contracts.Bar, 16)
	for i := range calm {
		calm[i] = bar(i, 100, 101, 99, 100, 1e6)
		wild[i] = bar(i, 100, 105, 95, 100, 1e6)
	}

	c := s.Score(series(t, calm))
	assert.Equal(t, RuleVolInRange, c.Rule)
	assert.InDelta(t, 2.5, c.Weighted(), 1e-9)

	c = s.Score(series(t, wild))
	assert.Equal(t, RuleTooVolatile, c.Rule)
	assert.Equal(t, -10.0, c.Value)
}

func TestCandleScorer(t *testing.T) {
	s := NewCandleScorer(defaults().Candle)

	tests := []struct {
		name      string
		prev      contracts.Bar
		last      contracts.Bar
		wantRule  string
		wantValue float64
	}{
		{"bullish engulfing", bar(0, 102, 103, 99, 100, 1), bar(1, 99.5, 103.5, 99, 103, 1), RuleBullishEngulfing, 10},
		{"hammer", bar(0, 99, 100.5, 98.5, 100, 1), bar(1, 100, 101.2, 97, 101, 1), RuleHammer, 8},
		{"shooting star", bar(0, 99, 100.5, 98.5, 100, 1), bar(1, 101, 104, 99.8, 100, 1), RuleShootingStar, -8},
		{"plain bar", bar(0, 99, 100.5, 98.5, 100, 1), bar(1, 100, 101.5, 99.5, 101, 1), "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := s.Score(series(t, []contracts.Bar{tt.prev, tt.last}))
			assert.Equal(t, tt.wantRule, c.Rule)
			assert.Equal(t, tt.wantValue, c.Value)
		})
	}
}

func TestSupportScorer(t *testing.T) {
	s := NewSupportScorer(defaults().Support)

	rangeBound := make([]contracts.Bar, 52)
	for i := range rangeBound {
		rangeBound[i] = bar(i, 100, 101, 99, 100, 1e6)
	}
	c := s.Score(series(t, rangeBound))
	assert.Equal(t, RuleNearSupport, c.Rule, "support wins when both levels are near")
	assert.Equal(t, 8.0, c.Value)

	nearHigh := make([]contracts.Bar, 52)
	copy(nearHigh, rangeBound)
	nearHigh[0] = bar(0, 81, 82, 80, 81, 1e6)
	c = s.Score(series(t, nearHigh))
	assert.Equal(t, RuleNearResistance, c.Rule)
	assert.Equal(t, -5.0, c.Value)
}
