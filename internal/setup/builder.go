package setup

import (
	"fmt"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/s2_signals"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

// rrEpsilon absorbs float error when reward:risk sits exactly on the minimum
const rrEpsilon = 1e-9

// Builder converts a score into a discounted limit-entry trade setup
// ⭐ SSOT: S3 진입가/손절/목표가 계산은 여기서만
//
// entry = anchor - discount(tier) × ATR
type Builder struct {
	strategy  strategyconfig.Strategy
	atrPeriod int
}

// NewBuilder creates a builder for one strategy
func NewBuilder(strategy strategyconfig.Strategy, params strategyconfig.SetupParams) *Builder {
	return &Builder{strategy: strategy, atrPeriod: params.ATRPeriod}
}

// RequiredHistory is the number of bars the ATR needs
func (b *Builder) RequiredHistory() int {
	return b.atrPeriod + 1
}

// TierFor maps a score onto the strategy's tier table
func (b *Builder) TierFor(score float64) contracts.Tier {
	return b.strategy.Tiers.TierFor(score)
}

// DiscountFor returns the ATR multiple for a tier
func (b *Builder) DiscountFor(tier contracts.Tier) float64 {
	d, _ := b.strategy.Discounts.For(tier)
	return d
}

// Build produces the setup for the last bar of window from the breakdown total.
// stop >= entry, target <= entry, 손익비 미달은 SetupError (ErrInvalidSetup)
func (b *Builder) Build(window *s0_data.PriceSeries, breakdown contracts.ScoreBreakdown) (contracts.TradeSetup, error) {
	if window == nil || window.Len() == 0 {
		return contracts.TradeSetup{}, fmt.Errorf("empty window: %w", contracts.ErrInsufficientHistory)
	}
	symbol := window.Symbol()

	atr, ok := s2_signals.ATR(window.Bars(), b.atrPeriod)
	if !ok {
		return contracts.TradeSetup{}, fmt.Errorf("%s: atr(%d) needs %d bars, have %d: %w",
			symbol, b.atrPeriod, b.RequiredHistory(), window.Len(), contracts.ErrInsufficientHistory)
	}

	last := window.Last()
	tier := b.TierFor(breakdown.Total)
	discount := b.DiscountFor(tier)

	entry := b.anchor(last) - discount*atr
	stop := b.stop(entry, atr)
	target := b.target(entry, atr)

	setup, err := contracts.NewTradeSetup(symbol, last.Date, b.strategy.Name, tier, entry, stop, target, discount, atr)
	if err != nil {
		return contracts.TradeSetup{}, err
	}

	if rr := setup.RewardRisk(); rr+rrEpsilon < b.strategy.MinRewardRisk {
		return contracts.TradeSetup{}, &contracts.SetupError{
			Symbol: symbol,
			Reason: fmt.Sprintf("reward:risk %.2f below %.2f", rr, b.strategy.MinRewardRisk),
		}
	}

	return setup, nil
}

func (b *Builder) anchor(last contracts.Bar) float64 {
	if b.strategy.EntryAnchor == strategyconfig.AnchorLow {
		return last.Low
	}
	return last.Close
}

func (b *Builder) stop(entry, atr float64) float64 {
	if b.strategy.Stop.Mode == strategyconfig.ExitModePct {
		return entry * (1 - b.strategy.Stop.Pct)
	}
	return entry - b.strategy.Stop.ATRMult*atr
}

func (b *Builder) target(entry, atr float64) float64 {
	if b.strategy.Target.Mode == strategyconfig.ExitModePct {
		return entry * (1 + b.strategy.Target.Pct)
	}
	return entry + b.strategy.Target.ATRMult*atr
}
