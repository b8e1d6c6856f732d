package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// Repository handles grading report persistence
// ⭐ SSOT: Audit 데이터 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveReport stores a grading report. 같은 (strategy, 기간) 은 덮어쓴다.
func (r *Repository) SaveReport(ctx context.Context, report *GradingReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO audit.grading_reports (
			strategy, period_start, period_end, win_rate, mean_pnl_pct, samples, report_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (strategy, period_start, period_end) DO UPDATE SET
			win_rate = EXCLUDED.win_rate,
			mean_pnl_pct = EXCLUDED.mean_pnl_pct,
			samples = EXCLUDED.samples,
			report_data = EXCLUDED.report_data,
			created_at = NOW()
	`

	_, err = r.pool.Exec(ctx, query,
		report.Strategy, report.From, report.To,
		report.Overall.WinRate, report.Overall.MeanPnL, report.Overall.Samples, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save grading report: %w", err)
	}

	return nil
}

// GetLatestReport retrieves the most recent report for a strategy
func (r *Repository) GetLatestReport(ctx context.Context, strategy string) (*GradingReport, error) {
	query := `
		SELECT report_data
		FROM audit.grading_reports
		WHERE strategy = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var data []byte
	err := r.pool.QueryRow(ctx, query, strategy).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("grading report for %q: %w", strategy, contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get grading report: %w", err)
	}

	var report GradingReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	return &report, nil
}
