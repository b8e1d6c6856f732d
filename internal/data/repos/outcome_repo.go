package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// OutcomeRepository implements contracts.OutcomeRepository
// ⭐ SSOT: TradeOutcome 저장/조회는 여기서만
type OutcomeRepository struct {
	pool *pgxpool.Pool
}

// NewOutcomeRepository creates a new outcome repository
func NewOutcomeRepository(pool *pgxpool.Pool) *OutcomeRepository {
	return &OutcomeRepository{pool: pool}
}

// Save upserts outcomes with a single batch round trip
func (r *OutcomeRepository) Save(ctx context.Context, outcomes []contracts.TradeOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	query := `
		INSERT INTO signals.trade_outcomes (
			symbol, setup_date, strategy, status, filled, fill_date, exit_date,
			exit_price, pnl_pct, bars_held, bars_seen
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol, setup_date, strategy) DO UPDATE SET
			status = EXCLUDED.status,
			filled = EXCLUDED.filled,
			fill_date = EXCLUDED.fill_date,
			exit_date = EXCLUDED.exit_date,
			exit_price = EXCLUDED.exit_price,
			pnl_pct = EXCLUDED.pnl_pct,
			bars_held = EXCLUDED.bars_held,
			bars_seen = EXCLUDED.bars_seen,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, o := range outcomes {
		batch.Queue(query,
			o.Symbol, o.SetupDate, o.Strategy, string(o.Status), o.Filled, o.FillDate, o.ExitDate,
			o.ExitPrice, o.PnLPercent, o.BarsHeld, o.BarsSeen,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for _, o := range outcomes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to save outcome %s %s: %w", o.Symbol, contracts.DateKey(o.SetupDate), err)
		}
	}

	return nil
}

// GetRange retrieves outcomes whose setup date is within [from, to]
func (r *OutcomeRepository) GetRange(ctx context.Context, from, to time.Time, strategy string) ([]contracts.TradeOutcome, error) {
	query := `
		SELECT symbol, setup_date, strategy, status, filled, fill_date, exit_date,
			exit_price, pnl_pct, bars_held, bars_seen
		FROM signals.trade_outcomes
		WHERE setup_date BETWEEN $1 AND $2 AND ($3 = '' OR strategy = $3)
		ORDER BY setup_date, symbol, strategy
	`

	rows, err := r.pool.Query(ctx, query, from, to, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var out []contracts.TradeOutcome
	for rows.Next() {
		var (
			o      contracts.TradeOutcome
			status string
		)
		if err := rows.Scan(
			&o.Symbol, &o.SetupDate, &o.Strategy, &status, &o.Filled, &o.FillDate, &o.ExitDate,
			&o.ExitPrice, &o.PnLPercent, &o.BarsHeld, &o.BarsSeen,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		o.Status = contracts.OutcomeStatus(status)
		out = append(out, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return out, nil
}
