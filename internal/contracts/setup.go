package contracts

import (
	"fmt"
	"time"
)

// TradeSetup is a proposed long entry with protective levels
// ⭐ SSOT: 진입/손절/목표가 구조
//
// 생성 이후 값은 바뀌지 않는다. DiscountUsed 는 생성 시점 Tier 로 조회한 값이며
// 같은 설정에서 Tier 로 다시 조회하면 동일해야 한다.
type TradeSetup struct {
	Symbol       string    `json:"symbol"`
	AsOf         time.Time `json:"as_of"`
	Strategy     string    `json:"strategy"`
	Tier         Tier      `json:"tier"`
	EntryPrice   float64   `json:"entry_price"`
	StopLoss     float64   `json:"stop_loss"`
	TakeProfit   float64   `json:"take_profit"`
	DiscountUsed float64   `json:"discount_used"`
	ATR          float64   `json:"atr"`
}

// NewTradeSetup validates stop < entry < target
func NewTradeSetup(symbol string, asOf time.Time, strategy string, tier Tier,
	entry, stop, target, discount, atr float64) (TradeSetup, error) {
	if entry <= 0 {
		return TradeSetup{}, &SetupError{Symbol: symbol, Reason: fmt.Sprintf("entry %.4f must be positive", entry)}
	}
	if stop >= entry {
		return TradeSetup{}, &SetupError{Symbol: symbol, Reason: fmt.Sprintf("stop %.4f >= entry %.4f", stop, entry)}
	}
	if target <= entry {
		return TradeSetup{}, &SetupError{Symbol: symbol, Reason: fmt.Sprintf("target %.4f <= entry %.4f", target, entry)}
	}

	return TradeSetup{
		Symbol:       symbol,
		AsOf:         asOf,
		Strategy:     strategy,
		Tier:         tier,
		EntryPrice:   entry,
		StopLoss:     stop,
		TakeProfit:   target,
		DiscountUsed: discount,
		ATR:          atr,
	}, nil
}

// RewardRisk returns (target-entry)/(entry-stop)
func (s TradeSetup) RewardRisk() float64 {
	risk := s.EntryPrice - s.StopLoss
	if risk <= 0 {
		return 0
	}
	return (s.TakeProfit - s.EntryPrice) / risk
}
