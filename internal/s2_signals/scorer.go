package s2_signals

import (
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

// Scorer turns a price window into one weighted contribution.
// 창이 Lookback 보다 짧으면 에러 대신 Value=0 을 돌려준다.
type Scorer interface {
	Name() string
	Lookback() int
	Score(window *s0_data.PriceSeries) contracts.Contribution
}

// Scorer names
const (
	NameRSI        = "rsi"
	NameBollinger  = "bollinger"
	NameTrend      = "trend"
	NameVolume     = "volume"
	NameVolatility = "volatility"
	NameCandle     = "candle"
	NameSupport    = "support"
)

// Sub-rule names
const (
	RuleExtremeOversold   = "extreme_oversold"
	RuleOversold          = "oversold"
	RuleOverbought        = "overbought"
	RuleExtremeOverbought = "extreme_overbought"

	RuleBelowLower = "below_lower"
	RuleAboveUpper = "above_upper"

	RuleUptrend   = "uptrend"
	RuleDowntrend = "downtrend"

	RuleGapConfirmed        = "gap_up_confirmed"
	RuleGapUnconfirmed      = "gap_up_unconfirmed"
	RuleBreakoutConfirmed   = "breakout_confirmed"
	RuleBreakoutUnconfirmed = "breakout_unconfirmed"

	RuleVolInRange  = "in_range"
	RuleTooVolatile = "too_volatile"

	RuleBullishEngulfing = "bullish_engulfing"
	RuleHammer           = "hammer"
	RuleShootingStar     = "shooting_star"

	RuleNearSupport    = "near_support"
	RuleNearResistance = "near_resistance"
)

func neutral(name string, weight float64) contracts.Contribution {
	return contracts.Contribution{Name: name, Weight: weight}
}

// BuildScorers creates the enabled scorers in a fixed order
func BuildScorers(ind strategyconfig.Indicators) []Scorer {
	var out []Scorer
	if ind.RSI.Enabled {
		out = append(out, RSIScorer{cfg: ind.RSI})
	}
	if ind.Bollinger.Enabled {
		out = append(out, BollingerScorer{cfg: ind.Bollinger})
	}
	if ind.Trend.Enabled {
		out = append(out, TrendScorer{cfg: ind.Trend})
	}
	if ind.Volume.Enabled {
		out = append(out, VolumeScorer{cfg: ind.Volume})
	}
	if ind.Volatility.Enabled {
		out = append(out, VolatilityScorer{cfg: ind.Volatility})
	}
	if ind.Candle.Enabled {
		out = append(out, CandleScorer{cfg: ind.Candle})
	}
	if ind.Support.Enabled {
		out = append(out, SupportScorer{cfg: ind.Support})
	}
	return out
}
