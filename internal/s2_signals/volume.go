package s2_signals

import (
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

// VolumeScorer confirms an up-gap or breakout bar with relative volume.
// Without confirmation the points shrink by UnconfirmedFactor but keep their sign.
type VolumeScorer struct {
	cfg strategyconfig.Volume
}

func NewVolumeScorer(cfg strategyconfig.Volume) VolumeScorer { return VolumeScorer{cfg: cfg} }

func (s VolumeScorer) Name() string  { return NameVolume }
func (s VolumeScorer) Lookback() int { return s.cfg.Window + 1 }

func (s VolumeScorer) Score(w *s0_data.PriceSeries) contracts.Contribution {
	c := neutral(NameVolume, s.cfg.Weight)
	if w.Len() < s.Lookback() {
		return c
	}

	vols := w.Volumes()
	// 기준 평균은 마지막 봉을 제외한 직전 Window 봉
	avg, _ := SMA(vols[:len(vols)-1], s.cfg.Window)
	last := w.Last()
	prev := w.At(w.Len() - 2)
	if prev.Close <= 0 {
		return c
	}

	relative := 0.0
	if avg > 0 {
		relative = last.Volume / avg
	}
	confirmed := relative >= s.cfg.MinRelative

	gap := last.Open/prev.Close - 1
	move := last.Close/prev.Close - 1

	switch {
	case gap >= s.cfg.GapPct:
		c.Value, c.Rule = s.points(confirmed), pick(confirmed, RuleGapConfirmed, RuleGapUnconfirmed)
	case move >= s.cfg.MovePct:
		c.Value, c.Rule = s.points(confirmed), pick(confirmed, RuleBreakoutConfirmed, RuleBreakoutUnconfirmed)
	}
	return c
}

func (s VolumeScorer) points(confirmed bool) float64 {
	if confirmed {
		return s.cfg.Points
	}
	return s.cfg.Points * s.cfg.UnconfirmedFactor
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

// VolatilityScorer scores ATR% against a tradable band
type VolatilityScorer struct {
	cfg strategyconfig.Volatility
}

func NewVolatilityScorer(cfg strategyconfig.Volatility) VolatilityScorer {
	return VolatilityScorer{cfg: cfg}
}

func (s VolatilityScorer) Name() string  { return NameVolatility }
func (s VolatilityScorer) Lookback() int { return s.cfg.ATRPeriod + 1 }

func (s VolatilityScorer) Score(w *s0_data.PriceSeries) contracts.Contribution {
	c := neutral(NameVolatility, s.cfg.Weight)
	atr, ok := ATR(w.Bars(), s.cfg.ATRPeriod)
	if !ok {
		return c
	}
	px := w.Last().Close
	if px <= 0 {
		return c
	}

	pct := atr / px
	switch {
	case pct > s.cfg.MaxATRPct:
		c.Value, c.Rule = -s.cfg.HighPenalty, RuleTooVolatile
	case pct >= s.cfg.MinATRPct:
		c.Value, c.Rule = s.cfg.InRangePoints, RuleVolInRange
	}
	return c
}
