package repos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// SignalRepository implements contracts.SignalRepository
// ⭐ SSOT: Signal 데이터 저장/조회는 여기서만
//
// (symbol, signal_date, strategy) 당 1행. 재채점은 덮어쓴다.
type SignalRepository struct {
	pool *pgxpool.Pool
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(pool *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{pool: pool}
}

const signalColumns = `
	run_id, symbol, signal_date, strategy, score, tier,
	breakdown, setup, probability, regime, position_scale, config_hash, created_at`

// Save upserts signals in one transaction
func (r *SignalRepository) Save(ctx context.Context, signals []contracts.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range signals {
		if err := r.saveSignal(ctx, tx, &signals[i]); err != nil {
			return fmt.Errorf("failed to save signal %s: %w", signals[i].Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *SignalRepository) saveSignal(ctx context.Context, tx pgx.Tx, s *contracts.Signal) error {
	breakdown, err := json.Marshal(s.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	var setup []byte
	if s.Setup != nil {
		if setup, err = json.Marshal(s.Setup); err != nil {
			return fmt.Errorf("marshal setup: %w", err)
		}
	}

	query := `
		INSERT INTO signals.daily_signals (` + signalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (symbol, signal_date, strategy) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			score = EXCLUDED.score,
			tier = EXCLUDED.tier,
			breakdown = EXCLUDED.breakdown,
			setup = EXCLUDED.setup,
			probability = EXCLUDED.probability,
			regime = EXCLUDED.regime,
			position_scale = EXCLUDED.position_scale,
			config_hash = EXCLUDED.config_hash,
			updated_at = NOW()
	`

	_, err = tx.Exec(ctx, query,
		s.RunID, s.Symbol, s.Date, s.Strategy, s.Score, string(s.Tier),
		breakdown, setup, s.Probability, string(s.Regime), s.PositionScale, s.ConfigHash, s.CreatedAt,
	)
	return err
}

// GetByDate retrieves signals for a date, highest score first
func (r *SignalRepository) GetByDate(ctx context.Context, date time.Time, strategy string) ([]contracts.Signal, error) {
	return r.query(ctx, `
		SELECT `+signalColumns+`
		FROM signals.daily_signals
		WHERE signal_date = $1 AND ($2 = '' OR strategy = $2)
		ORDER BY score DESC, symbol
	`, date, strategy)
}

// GetRange retrieves signals with from <= date <= to
func (r *SignalRepository) GetRange(ctx context.Context, from, to time.Time, strategy string) ([]contracts.Signal, error) {
	return r.query(ctx, `
		SELECT `+signalColumns+`
		FROM signals.daily_signals
		WHERE signal_date BETWEEN $1 AND $2 AND ($3 = '' OR strategy = $3)
		ORDER BY signal_date, symbol, strategy
	`, from, to, strategy)
}

func (r *SignalRepository) query(ctx context.Context, query string, args ...interface{}) ([]contracts.Signal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	var out []contracts.Signal
	for rows.Next() {
		var (
			s                contracts.Signal
			tier, regime     string
			breakdown, setup []byte
		)
		if err := rows.Scan(
			&s.RunID, &s.Symbol, &s.Date, &s.Strategy, &s.Score, &tier,
			&breakdown, &setup, &s.Probability, &regime, &s.PositionScale, &s.ConfigHash, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		s.Tier = contracts.Tier(tier)
		s.Regime = contracts.MarketStatus(regime)

		if err := json.Unmarshal(breakdown, &s.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal breakdown for %s: %w", s.Symbol, err)
		}
		if len(setup) > 0 {
			s.Setup = &contracts.TradeSetup{}
			if err := json.Unmarshal(setup, s.Setup); err != nil {
				return nil, fmt.Errorf("failed to unmarshal setup for %s: %w", s.Symbol, err)
			}
		}
		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return out, nil
}
