package contracts

import (
	"context"
	"time"
)

// BarSource reads daily bars. Implementations never return bars dated after asOf
// from GetBarsAsOf.
// ⭐ SSOT: 가격 데이터 접근 인터페이스
type BarSource interface {
	// GetBarsAsOf returns up to limit most recent bars with date <= asOf, oldest first
	GetBarsAsOf(ctx context.Context, symbol string, asOf time.Time, limit int) ([]Bar, error)
	// GetBarsAfter returns up to limit bars with date > after, oldest first
	GetBarsAfter(ctx context.Context, symbol string, after time.Time, limit int) ([]Bar, error)
	// ListSymbols returns the scorable universe
	ListSymbols(ctx context.Context) ([]string, error)
}

// SignalRepository persists batch results
type SignalRepository interface {
	Save(ctx context.Context, signals []Signal) error
	GetByDate(ctx context.Context, date time.Time, strategy string) ([]Signal, error)
	GetRange(ctx context.Context, from, to time.Time, strategy string) ([]Signal, error)
}

// OutcomeRepository persists simulated trade outcomes
type OutcomeRepository interface {
	Save(ctx context.Context, outcomes []TradeOutcome) error
	GetRange(ctx context.Context, from, to time.Time, strategy string) ([]TradeOutcome, error)
}
