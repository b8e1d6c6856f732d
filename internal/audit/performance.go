package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// Analyzer implements S7: signal/outcome grading over a period
// ⭐ SSOT: S7 성과 분석 로직은 여기서만
type Analyzer struct {
	signals  contracts.SignalRepository
	outcomes contracts.OutcomeRepository
	logger   *logger.Logger
}

// NewAnalyzer creates a new grading analyzer
func NewAnalyzer(signals contracts.SignalRepository, outcomes contracts.OutcomeRepository, log *logger.Logger) *Analyzer {
	return &Analyzer{
		signals:  signals,
		outcomes: outcomes,
		logger:   log.WithComponent("grading"),
	}
}

// Analyze pairs signals in [from, to] with their outcomes and grades them.
// 아직 outcome 이 없는 signal 은 Unmatched 로만 센다.
func (a *Analyzer) Analyze(ctx context.Context, from, to time.Time, strategy string) (*GradingReport, error) {
	signals, err := a.signals.GetRange(ctx, from, to, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to get signals: %w", err)
	}
	outcomes, err := a.outcomes.GetRange(ctx, from, to, strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}

	pairs, unmatched := Match(signals, outcomes)
	report := Grade(pairs)
	report.Strategy = strategy
	report.From = from
	report.To = to
	report.Unmatched = unmatched

	zl := a.logger.Zerolog()
	zl.Info().
		Str("strategy", strategy).
		Str("from", contracts.DateKey(from)).
		Str("to", contracts.DateKey(to)).
		Int("pairs", len(pairs)).
		Int("unmatched", unmatched).
		Float64("win_rate", report.Overall.WinRate).
		Float64("mean_pnl_pct", report.Overall.MeanPnL).
		Msg("Grading completed")

	return &report, nil
}

// Match joins signals and outcomes on (symbol, date, strategy)
func Match(signals []contracts.Signal, outcomes []contracts.TradeOutcome) ([]Pair, int) {
	index := make(map[string]contracts.TradeOutcome, len(outcomes))
	for _, o := range outcomes {
		index[pairKey(o.Symbol, o.SetupDate, o.Strategy)] = o
	}

	pairs := make([]Pair, 0, len(signals))
	unmatched := 0
	for _, s := range signals {
		o, ok := index[pairKey(s.Symbol, s.Date, s.Strategy)]
		if !ok {
			unmatched++
			continue
		}
		pairs = append(pairs, Pair{Signal: s, Outcome: o})
	}
	return pairs, unmatched
}

func pairKey(symbol string, date time.Time, strategy string) string {
	return symbol + "|" + contracts.DateKey(date) + "|" + strategy
}

// ParsePeriod parses a period string into a date range ending at now
func ParsePeriod(period string, now time.Time) (time.Time, time.Time) {
	end := now

	switch strings.ToUpper(period) {
	case "1M":
		return end.AddDate(0, -1, 0), end
	case "3M":
		return end.AddDate(0, -3, 0), end
	case "6M":
		return end.AddDate(0, -6, 0), end
	case "1Y":
		return end.AddDate(-1, 0, 0), end
	case "YTD":
		return time.Date(end.Year(), 1, 1, 0, 0, 0, 0, end.Location()), end
	default:
		// Default to 3 months
		return end.AddDate(0, -3, 0), end
	}
}
