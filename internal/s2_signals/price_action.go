package s2_signals

import (
	"math"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

// CandleScorer detects reversal candles on the last two bars.
// 우선순위: bullish engulfing > hammer > shooting star
type CandleScorer struct {
	cfg strategyconfig.Candle
}

func NewCandleScorer(cfg strategyconfig.Candle) CandleScorer { return CandleScorer{cfg: cfg} }

func (s CandleScorer) Name() string  { return NameCandle }
func (s CandleScorer) Lookback() int { return 2 }

func (s CandleScorer) Score(w *s0_data.PriceSeries) contracts.Contribution {
	c := neutral(NameCandle, s.cfg.Weight)
	if w.Len() < s.Lookback() {
		return c
	}
	last := w.Last()
	prev := w.At(w.Len() - 2)

	switch {
	case isBullishEngulfing(prev, last):
		c.Value, c.Rule = s.cfg.EngulfingPoints, RuleBullishEngulfing
	case s.isHammer(last):
		c.Value, c.Rule = s.cfg.HammerPoints, RuleHammer
	case s.isShootingStar(last):
		c.Value, c.Rule = -s.cfg.ShootingStarPoints, RuleShootingStar
	}
	return c
}

func isBullishEngulfing(prev, last contracts.Bar) bool {
	return prev.Close < prev.Open &&
		last.Close > last.Open &&
		last.Open <= prev.Close &&
		last.Close >= prev.Open
}

type candleShape struct {
	body, upper, lower, rng float64
}

func shape(b contracts.Bar) candleShape {
	return candleShape{
		body:  math.Abs(b.Close - b.Open),
		upper: b.High - math.Max(b.Open, b.Close),
		lower: math.Min(b.Open, b.Close) - b.Low,
		rng:   b.High - b.Low,
	}
}

func (s CandleScorer) isHammer(b contracts.Bar) bool {
	sh := shape(b)
	if sh.rng <= 0 || sh.lower <= 0 {
		return false
	}
	return sh.lower >= s.cfg.WickBodyRatio*sh.body && sh.upper <= s.cfg.MaxOppositeWick*sh.rng
}

func (s CandleScorer) isShootingStar(b contracts.Bar) bool {
	sh := shape(b)
	if sh.rng <= 0 || sh.upper <= 0 {
		return false
	}
	return sh.upper >= s.cfg.WickBodyRatio*sh.body && sh.lower <= s.cfg.MaxOppositeWick*sh.rng
}

// SupportScorer measures proximity of the close to the lookback low (support)
// and high (resistance). Support wins when both are near.
type SupportScorer struct {
	cfg strategyconfig.Support
}

func NewSupportScorer(cfg strategyconfig.Support) SupportScorer { return SupportScorer{cfg: cfg} }

func (s SupportScorer) Name() string  { return NameSupport }
func (s SupportScorer) Lookback() int { return s.cfg.Lookback }

func (s SupportScorer) Score(w *s0_data.PriceSeries) contracts.Contribution {
	c := neutral(NameSupport, s.cfg.Weight)
	support, _, ok := MinMax(w.Lows(), s.cfg.Lookback)
	if !ok {
		return c
	}
	_, resistance, _ := MinMax(w.Highs(), s.cfg.Lookback)
	px := w.Last().Close
	if support <= 0 || resistance <= 0 {
		return c
	}

	switch {
	case (px-support)/support <= s.cfg.ProximityPct:
		c.Value, c.Rule = s.cfg.SupportPoints, RuleNearSupport
	case (resistance-px)/resistance <= s.cfg.ProximityPct:
		c.Value, c.Rule = -s.cfg.ResistancePoints, RuleNearResistance
	}
	return c
}
