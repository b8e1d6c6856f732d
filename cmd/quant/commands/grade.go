package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/audit"
	"github.com/wonny/aegis-scorer/internal/contracts"
)

// gradeCmd aggregates signal/outcome pairs by tier and component (S7)
var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "티어/지표별 성과 집계 (S7)",
	Long: `기간 내 신호와 outcome 을 짝지어 전체, 티어별, 지표별로 집계합니다.
win rate 는 확정된 거래(성공/실패/청산)만으로 계산합니다.

Example:
  go run ./cmd/quant grade --period 3M
  go run ./cmd/quant grade --strategy momentum --period YTD --save`,
	RunE: runGrade,
}

var (
	gradePeriod   string
	gradeStrategy string
	gradeSave     bool
)

func init() {
	rootCmd.AddCommand(gradeCmd)

	gradeCmd.Flags().StringVar(&gradePeriod, "period", "3M", "기간 (1M|3M|6M|1Y|YTD)")
	gradeCmd.Flags().StringVar(&gradeStrategy, "strategy", "", "전략 이름 (기본: 전체)")
	gradeCmd.Flags().BoolVar(&gradeSave, "save", false, "리포트를 audit.grading_reports 에 저장")
}

func runGrade(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	strategies, err := strategiesFor(rt.strategy, gradeStrategy)
	if err != nil {
		return err
	}

	from, to := audit.ParsePeriod(gradePeriod, time.Now().UTC().Truncate(24*time.Hour))
	analyzer := audit.NewAnalyzer(rt.signals, rt.outcomes, rt.log)
	out := cmd.OutOrStdout()

	for _, strategy := range strategies {
		report, err := analyzer.Analyze(ctx, from, to, strategy)
		if err != nil {
			return err
		}
		printHeader(out, "Grading Report",
			field{"Strategy", strategy},
			field{"Period", contracts.DateKey(from) + " ~ " + contracts.DateKey(to)},
		)
		printReport(out, report)

		if gradeSave {
			if err := rt.reports.SaveReport(ctx, report); err != nil {
				return err
			}
			printSuccess(out, "report saved")
		}
	}
	return nil
}

func printReport(w io.Writer, report *audit.GradingReport) {
	if report == nil {
		return
	}
	if report.Unmatched > 0 {
		printWarning(w, fmt.Sprintf("%d signals without outcome (run simulate)", report.Unmatched))
	}

	columns := []string{"Group", "N", "Win", "Loss", "Open", "NoFill", "WinRate", "MeanPnL", "PF"}
	widths := []int{28, 5, 5, 5, 5, 6, 8, 8, 5}
	row := func(g audit.GroupStats) []string {
		return []string{
			g.Group,
			fmt.Sprintf("%d", g.Samples),
			fmt.Sprintf("%d", g.Wins),
			fmt.Sprintf("%d", g.Losses),
			fmt.Sprintf("%d", g.Open),
			fmt.Sprintf("%d", g.NoFill),
			pct(g.WinRate),
			fmt.Sprintf("%.2f%%", g.MeanPnL),
			fmt.Sprintf("%.2f", g.ProfitFactor),
		}
	}

	rows := [][]string{row(report.Overall)}
	for _, g := range report.ByTier {
		rows = append(rows, row(g))
	}
	fmt.Fprintln(w)
	printTable(w, columns, widths, rows)

	if len(report.ByComponent) > 0 {
		rows = rows[:0]
		for _, g := range report.ByComponent {
			rows = append(rows, row(g))
		}
		fmt.Fprintln(w)
		printTable(w, columns, widths, rows)
	}
	printSeparator(w)
}
