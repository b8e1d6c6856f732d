package contracts

import (
	"sort"
	"time"
)

// Contribution is one scorer's output
type Contribution struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`          // raw signed points
	Weight float64 `json:"weight"`         // from configuration
	Rule   string  `json:"rule,omitempty"` // sub-rule that fired, empty when neutral
}

// Weighted returns value * weight
func (c Contribution) Weighted() float64 {
	return c.Value * c.Weight
}

// Fired reports whether the contribution moved the score
func (c Contribution) Fired() bool {
	return c.Rule != "" && c.Value != 0
}

// ScoreBreakdown is the composite score and its per-component detail
// ⭐ SSOT: 점수 분해 구조
//
// 유동성 게이트에 걸린 경우 Total=0 이고 나머지 필드는 비어있다 ({total: 0.0}).
type ScoreBreakdown struct {
	Total      float64            `json:"total"`
	Components map[string]float64 `json:"components,omitempty"` // weighted, incl. bonus_* / confluence_*
	Rules      map[string]string  `json:"rules,omitempty"`      // component -> fired rule
}

// Gated reports whether the breakdown is the liquidity-gate sentinel
func (b ScoreBreakdown) Gated() bool {
	return b.Total == 0 && len(b.Components) == 0
}

// FiredComponents returns the sorted names of components that contributed non-zero points
func (b ScoreBreakdown) FiredComponents() []string {
	names := make([]string, 0, len(b.Components))
	for name, v := range b.Components {
		if v != 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Signal is a scored symbol on an as-of date
// ⭐ SSOT: 배치 결과 1건 (종목 x 날짜 x 전략)
type Signal struct {
	RunID         string         `json:"run_id"`
	Symbol        string         `json:"symbol"`
	Date          time.Time      `json:"date"`
	Strategy      string         `json:"strategy"`
	Score         float64        `json:"score"`
	Tier          Tier           `json:"tier"`
	Breakdown     ScoreBreakdown `json:"breakdown"`
	Setup         *TradeSetup    `json:"setup,omitempty"`
	Probability   float64        `json:"probability"`
	Regime        MarketStatus   `json:"regime"`
	PositionScale float64        `json:"position_scale"`
	ConfigHash    string         `json:"config_hash"`
	CreatedAt     time.Time      `json:"created_at"`
}
