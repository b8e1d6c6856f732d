package strategyconfig

import (
	"fmt"
)

// ValidationError 검증 실패 (배치 시작 전 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints and returns the first violation
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Liquidity ===
	if cfg.Liquidity.VolumeWindow <= 0 {
		return ValidationError{"liquidity.volume_window", "must be > 0"}
	}
	if cfg.Liquidity.MinAvgVolume < 0 {
		return ValidationError{"liquidity.min_avg_volume", "must be >= 0"}
	}

	// === Indicators ===
	if err := validateIndicators(&cfg.Indicators); err != nil {
		return err
	}

	// === Bonuses / Confluence ===
	for field, v := range map[string]float64{
		"bonuses.rsi_extreme_oversold":   cfg.Bonuses.RSIExtremeOversold,
		"bonuses.rsi_oversold":           cfg.Bonuses.RSIOversold,
		"bonuses.rsi_extreme_overbought": cfg.Bonuses.RSIExtremeOverbought,
		"bonuses.rsi_overbought":         cfg.Bonuses.RSIOverbought,
		"confluence.oversold_at_band":    cfg.Confluence.OversoldAtBand,
		"confluence.reversal_at_support": cfg.Confluence.ReversalAtSupport,
	} {
		if v < 0 {
			return ValidationError{field, "must be >= 0 (sign is fixed by the rule)"}
		}
	}

	// === Setup ===
	if cfg.Setup.ATRPeriod <= 0 {
		return ValidationError{"setup.atr_period", "must be > 0"}
	}

	// === Strategies ===
	if len(cfg.Strategies) == 0 {
		return ValidationError{"strategies", "at least one strategy required"}
	}
	seen := make(map[string]bool, len(cfg.Strategies))
	for i := range cfg.Strategies {
		s := &cfg.Strategies[i]
		if s.Name == "" {
			return ValidationError{fmt.Sprintf("strategies[%d].name", i), "required"}
		}
		if seen[s.Name] {
			return ValidationError{fmt.Sprintf("strategies[%d].name", i), fmt.Sprintf("duplicate %q", s.Name)}
		}
		seen[s.Name] = true
		if err := validateStrategy(fmt.Sprintf("strategies[%d]", i), s); err != nil {
			return err
		}
	}

	// === Regime ===
	r := cfg.Regime
	if len(r.Indices) < 2 {
		return ValidationError{"regime.indices", "at least two reference indices required"}
	}
	idx := make(map[string]bool, len(r.Indices))
	for _, sym := range r.Indices {
		if sym == "" || idx[sym] {
			return ValidationError{"regime.indices", fmt.Sprintf("empty or duplicate index %q", sym)}
		}
		idx[sym] = true
	}
	if r.MAWindow <= 0 || r.TrendWindow <= 0 || r.SlopeLookback <= 0 {
		return ValidationError{"regime", "ma_window, trend_window and slope_lookback must be > 0"}
	}
	if r.SlopeThresholdPct < 0 {
		return ValidationError{"regime.slope_threshold_pct", "must be >= 0"}
	}

	// === Simulation ===
	if cfg.Simulation.HorizonBars < 1 {
		return ValidationError{"simulation.horizon_bars", "must be >= 1"}
	}
	if cfg.Simulation.Policy != PolicyClose && cfg.Simulation.Policy != PolicyOpen {
		return ValidationError{"simulation.policy", "must be close or open"}
	}

	// === Batch ===
	if cfg.Batch.Workers < 1 {
		return ValidationError{"batch.workers", "must be >= 1"}
	}

	return nil
}

func validateIndicators(ind *Indicators) error {
	enabled := 0

	if r := ind.RSI; r.Enabled {
		enabled++
		if r.Period <= 1 {
			return ValidationError{"indicators.rsi.period", "must be > 1"}
		}
		if !(0 < r.ExtremeOversold && r.ExtremeOversold < r.Oversold && r.Oversold < r.Overbought &&
			r.Overbought < r.ExtremeOverbought && r.ExtremeOverbought < 100) {
			return ValidationError{"indicators.rsi", "bands must satisfy 0 < extreme_oversold < oversold < overbought < extreme_overbought < 100"}
		}
		if err := nonNegative("indicators.rsi", r.Weight, r.ExtremeOversoldPoints, r.OversoldPoints, r.OverboughtPoints, r.ExtremeOverboughtPoints); err != nil {
			return err
		}
		if r.ExtremeOversoldPoints < r.OversoldPoints || r.ExtremeOverboughtPoints < r.OverboughtPoints {
			return ValidationError{"indicators.rsi", "extreme band points must be >= moderate band points"}
		}
	}

	if b := ind.Bollinger; b.Enabled {
		enabled++
		if b.Period <= 1 || b.StdMult <= 0 {
			return ValidationError{"indicators.bollinger", "period must be > 1 and std_mult > 0"}
		}
		if err := nonNegative("indicators.bollinger", b.Weight, b.LowerPoints, b.UpperPoints); err != nil {
			return err
		}
	}

	if t := ind.Trend; t.Enabled {
		enabled++
		if t.ShortWindow <= 0 || t.ShortWindow >= t.LongWindow {
			return ValidationError{"indicators.trend", "must satisfy 0 < short_window < long_window"}
		}
		if err := nonNegative("indicators.trend", t.Weight, t.UpPoints, t.DownPoints); err != nil {
			return err
		}
	}

	if v := ind.Volume; v.Enabled {
		enabled++
		if v.Window <= 0 || v.MinRelative <= 0 {
			return ValidationError{"indicators.volume", "window and min_relative must be > 0"}
		}
		if v.GapPct <= 0 || v.MovePct <= 0 {
			return ValidationError{"indicators.volume", "gap_pct and move_pct must be > 0"}
		}
		if v.UnconfirmedFactor < 0 || v.UnconfirmedFactor > 1 {
			return ValidationError{"indicators.volume.unconfirmed_factor", "must be in [0, 1]"}
		}
		if err := nonNegative("indicators.volume", v.Weight, v.Points); err != nil {
			return err
		}
	}

	if v := ind.Volatility; v.Enabled {
		enabled++
		if v.ATRPeriod <= 0 {
			return ValidationError{"indicators.volatility.atr_period", "must be > 0"}
		}
		if v.MinATRPct < 0 || v.MinATRPct >= v.MaxATRPct {
			return ValidationError{"indicators.volatility", "must satisfy 0 <= min_atr_pct < max_atr_pct"}
		}
		if err := nonNegative("indicators.volatility", v.Weight, v.InRangePoints, v.HighPenalty); err != nil {
			return err
		}
	}

	if c := ind.Candle; c.Enabled {
		enabled++
		if c.WickBodyRatio <= 0 {
			return ValidationError{"indicators.candle.wick_body_ratio", "must be > 0"}
		}
		if c.MaxOppositeWick <= 0 || c.MaxOppositeWick >= 1 {
			return ValidationError{"indicators.candle.max_opposite_wick", "must be in (0, 1)"}
		}
		if err := nonNegative("indicators.candle", c.Weight, c.EngulfingPoints, c.HammerPoints, c.ShootingStarPoints); err != nil {
			return err
		}
	}

	if s := ind.Support; s.Enabled {
		enabled++
		if s.Lookback <= 1 {
			return ValidationError{"indicators.support.lookback", "must be > 1"}
		}
		if s.ProximityPct <= 0 || s.ProximityPct >= 1 {
			return ValidationError{"indicators.support.proximity_pct", "must be in (0, 1)"}
		}
		if err := nonNegative("indicators.support", s.Weight, s.SupportPoints, s.ResistancePoints); err != nil {
			return err
		}
	}

	if enabled == 0 {
		return ValidationError{"indicators", "at least one indicator must be enabled"}
	}
	return nil
}

func validateStrategy(field string, s *Strategy) error {
	t := s.Tiers
	if !(t.Extreme > t.High && t.High > t.Medium && t.Medium > t.Low) {
		return ValidationError{field + ".tiers", "thresholds must be strictly descending extreme > high > medium > low"}
	}

	// 강한 tier 일수록 할인(ATR 배수)이 작거나 같아야 한다
	prev := -1.0
	for i, d := range s.Discounts.ordered() {
		if d < 0 {
			return ValidationError{field + ".discounts", "must be >= 0"}
		}
		if i > 0 && d < prev {
			return ValidationError{field + ".discounts", "must be non-decreasing from extreme to weak"}
		}
		prev = d
	}

	if s.EntryAnchor != AnchorClose && s.EntryAnchor != AnchorLow {
		return ValidationError{field + ".entry_anchor", "must be close or low"}
	}
	if err := validateExit(field+".stop", s.Stop); err != nil {
		return err
	}
	if err := validateExit(field+".target", s.Target); err != nil {
		return err
	}
	if s.Stop.Mode == ExitModePct && s.Stop.Pct >= 1 {
		return ValidationError{field + ".stop.pct", "must be < 1"}
	}
	if s.MinRewardRisk <= 0 {
		return ValidationError{field + ".min_reward_risk", "must be > 0"}
	}
	return nil
}

func validateExit(field string, e Exit) error {
	switch e.Mode {
	case ExitModeATR:
		if e.ATRMult <= 0 {
			return ValidationError{field + ".atr_mult", "must be > 0"}
		}
	case ExitModePct:
		if e.Pct <= 0 {
			return ValidationError{field + ".pct", "must be > 0"}
		}
	default:
		return ValidationError{field + ".mode", "must be atr or pct"}
	}
	return nil
}

func nonNegative(field string, values ...float64) error {
	for _, v := range values {
		if v < 0 {
			return ValidationError{field, "weights and points must be >= 0"}
		}
	}
	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Liquidity.MinAvgVolume == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_LIQUIDITY_GATE",
			Message: "liquidity.min_avg_volume = 0: 유동성 게이트 비활성",
		})
	}

	for _, s := range cfg.Strategies {
		if s.MinScore < s.Tiers.Low {
			warnings = append(warnings, Warning{
				Code:    "WEAK_TIER_SIGNALS",
				Message: fmt.Sprintf("%s: min_score < tiers.low, WEAK tier 신호가 발행됨", s.Name),
			})
		}
		if s.MinRewardRisk < 1 {
			warnings = append(warnings, Warning{
				Code:    "LOW_REWARD_RISK",
				Message: fmt.Sprintf("%s: min_reward_risk < 1", s.Name),
			})
		}
	}

	if cfg.Simulation.HorizonBars > 60 {
		warnings = append(warnings, Warning{
			Code:    "LONG_HORIZON",
			Message: "simulation.horizon_bars > 60: 결과 확정까지 오래 걸림",
		})
	}

	return warnings
}
