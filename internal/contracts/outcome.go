package contracts

import "time"

// OutcomeStatus is the terminal (or pending) state of a simulated trade
type OutcomeStatus string

const (
	StatusOpen         OutcomeStatus = "open"          // horizon not decided by a touch
	StatusSuccess      OutcomeStatus = "success"       // target touched
	StatusFailure      OutcomeStatus = "failure"       // stop touched
	StatusClosedProfit OutcomeStatus = "closed_profit" // horizon closed the trade above entry
	StatusClosedLoss   OutcomeStatus = "closed_loss"   // horizon closed the trade at/below entry
	StatusNoFill       OutcomeStatus = "no_fill"       // entry never traded within the horizon
)

// IsDecided reports whether the outcome counts toward win rate
func (s OutcomeStatus) IsDecided() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusClosedProfit, StatusClosedLoss:
		return true
	default:
		return false
	}
}

// IsWin reports whether a decided outcome is a win
func (s OutcomeStatus) IsWin() bool {
	return s == StatusSuccess || s == StatusClosedProfit
}

// TradeOutcome is the result of replaying a TradeSetup over forward bars
// ⭐ SSOT: 시뮬레이션 결과 구조
type TradeOutcome struct {
	Symbol     string        `json:"symbol"`
	SetupDate  time.Time     `json:"setup_date"`
	Strategy   string        `json:"strategy"`
	Status     OutcomeStatus `json:"status"`
	Filled     bool          `json:"filled"`
	FillDate   *time.Time    `json:"fill_date,omitempty"`
	ExitDate   *time.Time    `json:"exit_date,omitempty"`
	ExitPrice  float64       `json:"exit_price,omitempty"`
	PnLPercent float64       `json:"pnl_percent"`
	BarsHeld   int           `json:"bars_held"`
	BarsSeen   int           `json:"bars_seen"`
}
