package strategyconfig

import (
	"fmt"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// Config is the complete scoring/setup/simulation configuration.
// 배치 시작 시 1회 로드 + 검증 후 읽기 전용 스냅샷으로 모든 워커에 공유된다.
type Config struct {
	Meta       Meta        `yaml:"meta" json:"meta"`
	Liquidity  Liquidity   `yaml:"liquidity" json:"liquidity"`
	Indicators Indicators  `yaml:"indicators" json:"indicators"`
	Bonuses    Bonuses     `yaml:"bonuses" json:"bonuses"`
	Confluence Confluence  `yaml:"confluence" json:"confluence"`
	Setup      SetupParams `yaml:"setup" json:"setup"`
	Strategies []Strategy  `yaml:"strategies" json:"strategies"`
	Regime     Regime      `yaml:"regime" json:"regime"`
	Simulation Simulation  `yaml:"simulation" json:"simulation"`
	Batch      Batch       `yaml:"batch" json:"batch"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Liquidity gate: 평균 거래량 미달 종목은 점수 계산 없이 {total: 0}
type Liquidity struct {
	VolumeWindow int     `yaml:"volume_window" json:"volume_window"`
	MinAvgVolume float64 `yaml:"min_avg_volume" json:"min_avg_volume"`
}

// Indicators groups one config struct per scorer family
type Indicators struct {
	RSI        RSI        `yaml:"rsi" json:"rsi"`
	Bollinger  Bollinger  `yaml:"bollinger" json:"bollinger"`
	Trend      Trend      `yaml:"trend" json:"trend"`
	Volume     Volume     `yaml:"volume" json:"volume"`
	Volatility Volatility `yaml:"volatility" json:"volatility"`
	Candle     Candle     `yaml:"candle" json:"candle"`
	Support    Support    `yaml:"support" json:"support"`
}

// RSI graded bands. Points are magnitudes; overbought bands subtract.
type RSI struct {
	Enabled                 bool    `yaml:"enabled" json:"enabled"`
	Weight                  float64 `yaml:"weight" json:"weight"`
	Period                  int     `yaml:"period" json:"period"`
	ExtremeOversold         float64 `yaml:"extreme_oversold" json:"extreme_oversold"`
	Oversold                float64 `yaml:"oversold" json:"oversold"`
	Overbought              float64 `yaml:"overbought" json:"overbought"`
	ExtremeOverbought       float64 `yaml:"extreme_overbought" json:"extreme_overbought"`
	ExtremeOversoldPoints   float64 `yaml:"extreme_oversold_points" json:"extreme_oversold_points"`
	OversoldPoints          float64 `yaml:"oversold_points" json:"oversold_points"`
	OverboughtPoints        float64 `yaml:"overbought_points" json:"overbought_points"`
	ExtremeOverboughtPoints float64 `yaml:"extreme_overbought_points" json:"extreme_overbought_points"`
}

// Bollinger band-position reversion
type Bollinger struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	Weight      float64 `yaml:"weight" json:"weight"`
	Period      int     `yaml:"period" json:"period"`
	StdMult     float64 `yaml:"std_mult" json:"std_mult"`
	LowerPoints float64 `yaml:"lower_points" json:"lower_points"`
	UpperPoints float64 `yaml:"upper_points" json:"upper_points"`
}

// Trend: close vs short/long moving averages
type Trend struct {
	Enabled     bool    `yaml:"enabled" json:"enabled"`
	Weight      float64 `yaml:"weight" json:"weight"`
	ShortWindow int     `yaml:"short_window" json:"short_window"`
	LongWindow  int     `yaml:"long_window" json:"long_window"`
	UpPoints    float64 `yaml:"up_points" json:"up_points"`
	DownPoints  float64 `yaml:"down_points" json:"down_points"`
}

// Volume confirmation of a gap or large move.
// 거래량 확인이 없으면 Points * UnconfirmedFactor 로 약해질 뿐 부호는 바뀌지 않는다.
type Volume struct {
	Enabled           bool    `yaml:"enabled" json:"enabled"`
	Weight            float64 `yaml:"weight" json:"weight"`
	Window            int     `yaml:"window" json:"window"`
	MinRelative       float64 `yaml:"min_relative" json:"min_relative"`
	GapPct            float64 `yaml:"gap_pct" json:"gap_pct"`
	MovePct           float64 `yaml:"move_pct" json:"move_pct"`
	Points            float64 `yaml:"points" json:"points"`
	UnconfirmedFactor float64 `yaml:"unconfirmed_factor" json:"unconfirmed_factor"`
}

// Volatility: ATR as a percentage of close
type Volatility struct {
	Enabled       bool    `yaml:"enabled" json:"enabled"`
	Weight        float64 `yaml:"weight" json:"weight"`
	ATRPeriod     int     `yaml:"atr_period" json:"atr_period"`
	MinATRPct     float64 `yaml:"min_atr_pct" json:"min_atr_pct"`
	MaxATRPct     float64 `yaml:"max_atr_pct" json:"max_atr_pct"`
	InRangePoints float64 `yaml:"in_range_points" json:"in_range_points"`
	HighPenalty   float64 `yaml:"high_penalty" json:"high_penalty"`
}

// Candle price-action patterns on the last bars
type Candle struct {
	Enabled            bool    `yaml:"enabled" json:"enabled"`
	Weight             float64 `yaml:"weight" json:"weight"`
	EngulfingPoints    float64 `yaml:"engulfing_points" json:"engulfing_points"`
	HammerPoints       float64 `yaml:"hammer_points" json:"hammer_points"`
	ShootingStarPoints float64 `yaml:"shooting_star_points" json:"shooting_star_points"`
	WickBodyRatio      float64 `yaml:"wick_body_ratio" json:"wick_body_ratio"`
	MaxOppositeWick    float64 `yaml:"max_opposite_wick" json:"max_opposite_wick"` // fraction of range
}

// Support/resistance proximity to the N-bar low/high
type Support struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	Weight           float64 `yaml:"weight" json:"weight"`
	Lookback         int     `yaml:"lookback" json:"lookback"`
	ProximityPct     float64 `yaml:"proximity_pct" json:"proximity_pct"`
	SupportPoints    float64 `yaml:"support_points" json:"support_points"`
	ResistancePoints float64 `yaml:"resistance_points" json:"resistance_points"`
}

// Bonuses are composite-level, mutually exclusive within each group.
type Bonuses struct {
	RSIExtremeOversold   float64 `yaml:"rsi_extreme_oversold" json:"rsi_extreme_oversold"`
	RSIOversold          float64 `yaml:"rsi_oversold" json:"rsi_oversold"`
	RSIExtremeOverbought float64 `yaml:"rsi_extreme_overbought" json:"rsi_extreme_overbought"`
	RSIOverbought        float64 `yaml:"rsi_overbought" json:"rsi_overbought"`
}

// Confluence bonuses apply after individual bonuses
type Confluence struct {
	OversoldAtBand    float64 `yaml:"oversold_at_band" json:"oversold_at_band"`
	ReversalAtSupport float64 `yaml:"reversal_at_support" json:"reversal_at_support"`
}

// SetupParams shared by every strategy's setup builder
type SetupParams struct {
	ATRPeriod int `yaml:"atr_period" json:"atr_period"`
}

// Strategy owns its tier table, discount table and exit factors
type Strategy struct {
	Name          string         `yaml:"name" json:"name"`
	Baseline      bool           `yaml:"baseline" json:"baseline"` // bearish regime vetoes baseline strategies
	MinScore      float64        `yaml:"min_score" json:"min_score"`
	Tiers         TierThresholds `yaml:"tiers" json:"tiers"`
	Discounts     TierDiscounts  `yaml:"discounts" json:"discounts"`
	EntryAnchor   string         `yaml:"entry_anchor" json:"entry_anchor"` // close | low
	Stop          Exit           `yaml:"stop" json:"stop"`
	Target        Exit           `yaml:"target" json:"target"`
	MinRewardRisk float64        `yaml:"min_reward_risk" json:"min_reward_risk"`
}

// TierThresholds are inclusive lower bounds. WEAK is everything below Low.
type TierThresholds struct {
	Extreme float64 `yaml:"extreme" json:"extreme"`
	High    float64 `yaml:"high" json:"high"`
	Medium  float64 `yaml:"medium" json:"medium"`
	Low     float64 `yaml:"low" json:"low"`
}

// TierDiscounts are ATR multiples subtracted from the anchor price
type TierDiscounts struct {
	Extreme float64 `yaml:"extreme" json:"extreme"`
	High    float64 `yaml:"high" json:"high"`
	Medium  float64 `yaml:"medium" json:"medium"`
	Low     float64 `yaml:"low" json:"low"`
	Weak    float64 `yaml:"weak" json:"weak"`
}

// Exit modes
const (
	ExitModeATR = "atr"
	ExitModePct = "pct"
)

// Entry anchors
const (
	AnchorClose = "close"
	AnchorLow   = "low"
)

// Exit is a stop or target factor
type Exit struct {
	Mode    string  `yaml:"mode" json:"mode"`         // atr | pct
	ATRMult float64 `yaml:"atr_mult" json:"atr_mult"` // mode=atr
	Pct     float64 `yaml:"pct" json:"pct"`           // mode=pct, fraction (0.05 = 5%)
}

// Regime reference indices and their health rule
type Regime struct {
	Indices           []string      `yaml:"indices" json:"indices"`
	MAWindow          int           `yaml:"ma_window" json:"ma_window"`
	TrendWindow       int           `yaml:"trend_window" json:"trend_window"`
	SlopeLookback     int           `yaml:"slope_lookback" json:"slope_lookback"`
	SlopeThresholdPct float64       `yaml:"slope_threshold_pct" json:"slope_threshold_pct"`
	CacheTTL          time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// Simulation policies at horizon end
const (
	PolicyClose = "close" // close at last bar → closed_profit / closed_loss
	PolicyOpen  = "open"  // leave open → open (STILL_OPEN)
)

// Simulation controls the forward replay
type Simulation struct {
	HorizonBars int    `yaml:"horizon_bars" json:"horizon_bars"`
	Policy      string `yaml:"policy" json:"policy"`
}

// Batch execution settings
type Batch struct {
	Workers int `yaml:"workers" json:"workers"`
}

// Strategy returns the named strategy
func (c *Config) Strategy(name string) (*Strategy, error) {
	for i := range c.Strategies {
		if c.Strategies[i].Name == name {
			return &c.Strategies[i], nil
		}
	}
	return nil, fmt.Errorf("strategy %q: %w", name, contracts.ErrNotFound)
}

// StrategyNames returns configured strategy names in file order
func (c *Config) StrategyNames() []string {
	names := make([]string, len(c.Strategies))
	for i, s := range c.Strategies {
		names[i] = s.Name
	}
	return names
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	out := *c
	out.Strategies = append([]Strategy(nil), c.Strategies...)
	out.Regime.Indices = append([]string(nil), c.Regime.Indices...)
	return &out
}

// TierFor maps a score onto a tier. The table covers the whole real line.
func (t TierThresholds) TierFor(score float64) contracts.Tier {
	switch {
	case score >= t.Extreme:
		return contracts.TierExtreme
	case score >= t.High:
		return contracts.TierHigh
	case score >= t.Medium:
		return contracts.TierMedium
	case score >= t.Low:
		return contracts.TierLow
	default:
		return contracts.TierWeak
	}
}

// For returns the discount of a tier
func (d TierDiscounts) For(tier contracts.Tier) (float64, bool) {
	switch tier {
	case contracts.TierExtreme:
		return d.Extreme, true
	case contracts.TierHigh:
		return d.High, true
	case contracts.TierMedium:
		return d.Medium, true
	case contracts.TierLow:
		return d.Low, true
	case contracts.TierWeak:
		return d.Weak, true
	default:
		return 0, false
	}
}

// ordered returns the discounts strongest tier first
func (d TierDiscounts) ordered() []float64 {
	return []float64{d.Extreme, d.High, d.Medium, d.Low, d.Weak}
}
