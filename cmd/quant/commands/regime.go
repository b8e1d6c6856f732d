package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/regime"
)

// regimeCmd prints the market regime for a date
var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "시장 국면 확인 (S1)",
	Long: `기준 지수별 건강도와 종합 국면(BULLISH/NEUTRAL/BEARISH)을 출력합니다.

Example:
  go run ./cmd/quant regime
  go run ./cmd/quant regime --date 2024-05-15`,
	RunE: runRegime,
}

var regimeDate string

func init() {
	rootCmd.AddCommand(regimeCmd)
	regimeCmd.Flags().StringVar(&regimeDate, "date", "", "as-of 날짜 (YYYY-MM-DD, 기본: 오늘 UTC)")
}

func runRegime(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	date, err := parseDateFlag("date", regimeDate, time.Now().UTC().Truncate(24*time.Hour))
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	gate := regime.NewGate(rt.source, rt.strategy.Regime, rt.cache, rt.log)
	health, err := gate.GetMarketHealth(ctx, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Market Regime",
		field{"Date", contracts.DateKey(date)},
		field{"Status", fmt.Sprintf("%s (x%.1f)", health.Status, health.Multiplier)},
		field{"Healthy", fmt.Sprintf("%d / %d known", health.Healthy, health.Known)},
	)

	rows := make([][]string, 0, len(health.Indices))
	for _, idx := range health.Indices {
		row := []string{idx.Symbol, "unknown", "-", "-", "-", idx.Reason}
		if idx.Known {
			row[1] = fmt.Sprintf("%v", idx.Healthy)
			row[2] = fmt.Sprintf("%.2f", idx.Close)
			row[3] = fmt.Sprintf("%.2f", idx.MA)
			row[4] = string(idx.Trend)
		}
		rows = append(rows, row)
	}
	printTable(out, []string{"Index", "Healthy", "Close", "MA", "Trend", "Note"}, []int{8, 8, 10, 10, 10, 20}, rows)

	for _, s := range rt.strategy.Strategies {
		if regime.Veto(health, s) {
			printWarning(out, s.Name+": vetoed (baseline strategy in BEARISH regime)")
		}
	}
	return nil
}
