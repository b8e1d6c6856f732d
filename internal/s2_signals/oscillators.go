package s2_signals

import (
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

// RSIScorer grades RSI into bands, strongest band first
type RSIScorer struct {
	cfg strategyconfig.RSI
}

func NewRSIScorer(cfg strategyconfig.RSI) RSIScorer { return RSIScorer{cfg: cfg} }

func (s RSIScorer) Name() string  { return NameRSI }
func (s RSIScorer) Lookback() int { return s.cfg.Period + 1 }

func (s RSIScorer) Score(w *s0_data.PriceSeries) contracts.Contribution {
	c := neutral(NameRSI, s.cfg.Weight)
	rsi, ok := RSI(w.Closes(), s.cfg.Period)
	if !ok {
		return c
	}

	switch {
	case rsi <= s.cfg.ExtremeOversold:
		c.Value, c.Rule = s.cfg.ExtremeOversoldPoints, RuleExtremeOversold
	case rsi <= s.cfg.Oversold:
		c.Value, c.Rule = s.cfg.OversoldPoints, RuleOversold
	case rsi >= s.cfg.ExtremeOverbought:
		c.Value, c.Rule = -s.cfg.ExtremeOverboughtPoints, RuleExtremeOverbought
	case rsi >= s.cfg.Overbought:
		c.Value, c.Rule = -s.cfg.OverboughtPoints, RuleOverbought
	}
	return c
}

// BollingerScorer rewards closes below the lower band (reversion up) and
// penalises closes above the upper band
type BollingerScorer struct {
	cfg strategyconfig.Bollinger
}

func NewBollingerScorer(cfg strategyconfig.Bollinger) BollingerScorer {
	return BollingerScorer{cfg: cfg}
}

func (s BollingerScorer) Name() string  { return NameBollinger }
func (s BollingerScorer) Lookback() int { return s.cfg.Period }

func (s BollingerScorer) Score(w *s0_data.PriceSeries) contracts.Contribution {
	c := neutral(NameBollinger, s.cfg.Weight)
	closes := w.Closes()
	mid, ok := SMA(closes, s.cfg.Period)
	if !ok {
		return c
	}
	sd, _ := StdDev(closes, s.cfg.Period)
	if sd == 0 {
		return c
	}

	last := closes[len(closes)-1]
	switch {
	case last < mid-s.cfg.StdMult*sd:
		c.Value, c.Rule = s.cfg.LowerPoints, RuleBelowLower
	case last > mid+s.cfg.StdMult*sd:
		c.Value, c.Rule = -s.cfg.UpperPoints, RuleAboveUpper
	}
	return c
}

// TrendScorer compares close against stacked short/long moving averages
type TrendScorer struct {
	cfg strategyconfig.Trend
}

func NewTrendScorer(cfg strategyconfig.Trend) TrendScorer { return TrendScorer{cfg: cfg} }

func (s TrendScorer) Name() string  { return NameTrend }
func (s TrendScorer) Lookback() int { return s.cfg.LongWindow }

func (s TrendScorer) Score(w *s0_data.PriceSeries) contracts.Contribution {
	c := neutral(NameTrend, s.cfg.Weight)
	closes := w.Closes()
	long, ok := SMA(closes, s.cfg.LongWindow)
	if !ok {
		return c
	}
	short, _ := SMA(closes, s.cfg.ShortWindow)
	last := closes[len(closes)-1]

	switch {
	case last > short && short > long:
		c.Value, c.Rule = s.cfg.UpPoints, RuleUptrend
	case last < short && short < long:
		c.Value, c.Rule = -s.cfg.DownPoints, RuleDowntrend
	}
	return c
}
