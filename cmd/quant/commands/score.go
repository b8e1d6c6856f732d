package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/brain"
	"github.com/wonny/aegis-scorer/internal/contracts"
)

// scoreCmd runs the daily scoring batch
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "일일 스코어링 배치 실행 (S0 → S3)",
	Long: `지정한 날짜(as-of)의 종목별 점수와 trade setup 을 산출해 저장합니다.
--from/--to 를 주면 기간 내 평일마다 배치를 순서대로 실행합니다.

해당 날짜 이후의 봉은 절대 사용하지 않습니다.
저장소 장애 시 배치 전체가 중단되고 아무것도 저장되지 않습니다 (exit code 3).

Example:
  go run ./cmd/quant score
  go run ./cmd/quant score --date 2024-05-15 --strategy momentum
  go run ./cmd/quant score --from 2024-05-01 --to 2024-05-31
  go run ./cmd/quant score --symbols AAPL,MSFT --dry-run`,
	RunE: runScore,
}

var (
	scoreDate     string
	scoreFrom     string
	scoreTo       string
	scoreStrategy string
	scoreSymbols  []string
	scoreDryRun   bool
	scoreTop      int
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreDate, "date", "", "as-of 날짜 (YYYY-MM-DD, 기본: 오늘 UTC)")
	scoreCmd.Flags().StringVar(&scoreFrom, "from", "", "기간 시작일 (YYYY-MM-DD, --to 와 함께)")
	scoreCmd.Flags().StringVar(&scoreTo, "to", "", "기간 종료일 (YYYY-MM-DD, 기본: --from)")
	scoreCmd.MarkFlagsMutuallyExclusive("date", "from")
	scoreCmd.MarkFlagsMutuallyExclusive("date", "to")
	scoreCmd.Flags().StringVar(&scoreStrategy, "strategy", "", "전략 이름 (기본: 전체)")
	scoreCmd.Flags().StringSliceVar(&scoreSymbols, "symbols", nil, "종목 제한 (쉼표 구분)")
	scoreCmd.Flags().BoolVar(&scoreDryRun, "dry-run", false, "저장하지 않고 점수만 계산")
	scoreCmd.Flags().IntVar(&scoreTop, "top", 20, "출력할 상위 신호 수")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dates, err := scoreDatesFromFlags(time.Now().UTC().Truncate(24 * time.Hour))
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	strategies, err := strategiesFor(rt.strategy, scoreStrategy)
	if err != nil {
		return err
	}
	dryRun := scoreDryRun || rt.cfg.Engine.DryRun
	orch, err := rt.orchestrator(dryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	period := contracts.DateKey(dates[0])
	if len(dates) > 1 {
		period += " ~ " + contracts.DateKey(dates[len(dates)-1])
	}
	printHeader(out, "Scoring Batch",
		field{"Date", period},
		field{"Batches", fmt.Sprintf("%d", len(dates)*len(strategies))},
		field{"Strategies", strings.Join(strategies, ", ")},
		field{"Dry Run", fmt.Sprintf("%v", dryRun)},
		field{"Config", orch.ConfigHash()[:12]},
	)

	// 날짜 오름차순, 날짜마다 전략 순서대로. 첫 실패에서 중단 (이미 끝난 배치는 저장됨).
	for _, date := range dates {
		for _, strategy := range strategies {
			res, err := orch.ScoreBatch(ctx, brain.BatchRequest{
				Date:     date,
				Strategy: strategy,
				Symbols:  scoreSymbols,
				DryRun:   dryRun,
			})
			if err != nil {
				return fmt.Errorf("score %s %s: %w", contracts.DateKey(date), strategy, err)
			}
			printBatch(out, res, scoreTop)
		}
	}
	return nil
}

// scoreDatesFromFlags resolves --date or --from/--to into the as-of dates to score
func scoreDatesFromFlags(today time.Time) ([]time.Time, error) {
	if scoreFrom == "" && scoreTo == "" {
		date, err := parseDateFlag("date", scoreDate, today)
		if err != nil {
			return nil, err
		}
		return []time.Time{date}, nil
	}
	if scoreFrom == "" {
		return nil, fmt.Errorf("%w: --to requires --from", errConfig)
	}
	from, err := parseDateFlag("from", scoreFrom, today)
	if err != nil {
		return nil, err
	}
	to, err := parseDateFlag("to", scoreTo, from)
	if err != nil {
		return nil, err
	}
	dates := scoreDates(from, to)
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: no weekdays in %s ~ %s", errConfig, contracts.DateKey(from), contracts.DateKey(to))
	}
	return dates, nil
}

// scoreDates lists weekdays in [from, to]. from > to 이면 빈 슬라이스.
func scoreDates(from, to time.Time) []time.Time {
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

func printBatch(w io.Writer, res *brain.BatchResult, top int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, res.SummaryLine())
	if len(res.Signals) == 0 {
		return
	}
	fmt.Fprintln(w)

	n := min(top, len(res.Signals))
	rows := make([][]string, 0, n)
	for _, s := range res.Signals[:n] {
		row := []string{s.Symbol, fmt.Sprintf("%.1f", s.Score), string(s.Tier), "-", "-", "-", "-"}
		if s.Setup != nil {
			row[3] = fmt.Sprintf("%.2f", s.Setup.EntryPrice)
			row[4] = fmt.Sprintf("%.2f", s.Setup.StopLoss)
			row[5] = fmt.Sprintf("%.2f", s.Setup.TakeProfit)
			row[6] = fmt.Sprintf("%.2f", s.Setup.RewardRisk())
		}
		rows = append(rows, row)
	}
	printTable(w,
		[]string{"Symbol", "Score", "Tier", "Entry", "Stop", "Target", "R:R"},
		[]int{8, 7, 8, 10, 10, 10, 5},
		rows,
	)
}
