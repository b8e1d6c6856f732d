package s0_data

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// PriceRepository implements contracts.BarSource over PostgreSQL
// ⭐ SSOT: 가격 데이터 저장소는 여기서만
//
// 모든 조회는 as-of 경계를 SQL 에서 강제한다 (trade_date <= $2).
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetBarsAsOf returns up to limit most recent bars with trade_date <= asOf, oldest first
func (r *PriceRepository) GetBarsAsOf(ctx context.Context, symbol string, asOf time.Time, limit int) ([]contracts.Bar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM (
			SELECT trade_date, open_price, high_price, low_price, close_price, volume
			FROM data.daily_prices
			WHERE symbol = $1 AND trade_date <= $2
			ORDER BY trade_date DESC
			LIMIT $3
		) recent
		ORDER BY trade_date ASC
	`

	return r.queryBars(ctx, query, symbol, asOf, limit)
}

// GetBarsAfter returns up to limit bars with trade_date > after, oldest first
func (r *PriceRepository) GetBarsAfter(ctx context.Context, symbol string, after time.Time, limit int) ([]contracts.Bar, error) {
	query := `
		SELECT trade_date, open_price, high_price, low_price, close_price, volume
		FROM data.daily_prices
		WHERE symbol = $1 AND trade_date > $2
		ORDER BY trade_date ASC
		LIMIT $3
	`

	return r.queryBars(ctx, query, symbol, after, limit)
}

// ListSymbols returns active symbols
func (r *PriceRepository) ListSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT symbol
		FROM data.symbols
		WHERE is_active = true
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

func (r *PriceRepository) queryBars(ctx context.Context, query string, symbol string, date time.Time, limit int) ([]contracts.Bar, error) {
	rows, err := r.pool.Query(ctx, query, symbol, date, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bars := make([]contracts.Bar, 0, limit)
	for rows.Next() {
		var b contracts.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}
