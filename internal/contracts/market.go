package contracts

import "time"

// MarketStatus is the broad-market regime classification
type MarketStatus string

const (
	MarketBullish MarketStatus = "BULLISH"
	MarketNeutral MarketStatus = "NEUTRAL"
	MarketBearish MarketStatus = "BEARISH"
)

// Multiplier returns the position-scale multiplier for the status
func (s MarketStatus) Multiplier() float64 {
	switch s {
	case MarketBullish:
		return 1.0
	case MarketNeutral:
		return 0.5
	default:
		return 0.0
	}
}

// TrendLabel describes a reference index's medium-term direction
type TrendLabel string

const (
	TrendUp       TrendLabel = "uptrend"
	TrendSideways TrendLabel = "sideways"
	TrendDown     TrendLabel = "downtrend"
)

// IndexHealth is the evaluation of one reference index
type IndexHealth struct {
	Symbol  string     `json:"symbol"`
	Known   bool       `json:"known"`
	Healthy bool       `json:"healthy"`
	Close   float64    `json:"close,omitempty"`
	MA      float64    `json:"ma,omitempty"`
	Trend   TrendLabel `json:"trend,omitempty"`
	Reason  string     `json:"reason,omitempty"`
}

// MarketHealth is computed once per as-of date and shared across a batch
// ⭐ SSOT: 시장 국면 판단 결과
type MarketHealth struct {
	AsOf       time.Time     `json:"as_of"`
	Status     MarketStatus  `json:"status"`
	Multiplier float64       `json:"multiplier"`
	Healthy    int           `json:"healthy"`
	Known      int           `json:"known"`
	Indices    []IndexHealth `json:"indices"`
}
