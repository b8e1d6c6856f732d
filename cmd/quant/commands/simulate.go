package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/brain"
	"github.com/wonny/aegis-scorer/internal/contracts"
)

// simulateCmd replays stored setups over the bars that followed them
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "저장된 setup 사후 시뮬레이션 (S6)",
	Long: `기간 내 저장된 신호의 setup 을 신호일 이후 봉으로 재생하여
trade outcome 을 저장합니다. 다시 실행하면 덮어씁니다 (open → 확정).

Example:
  go run ./cmd/quant simulate --from 2024-04-01 --to 2024-04-30
  go run ./cmd/quant simulate --date 2024-04-15 --strategy momentum --dry-run`,
	RunE: runSimulate,
}

var (
	simDate     string
	simFrom     string
	simTo       string
	simStrategy string
	simDryRun   bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simDate, "date", "", "단일 신호일 (YYYY-MM-DD)")
	simulateCmd.Flags().StringVar(&simFrom, "from", "", "시작일 (YYYY-MM-DD)")
	simulateCmd.Flags().StringVar(&simTo, "to", "", "종료일 (YYYY-MM-DD, 기본: 오늘)")
	simulateCmd.Flags().StringVar(&simStrategy, "strategy", "", "전략 이름 (기본: 전체)")
	simulateCmd.Flags().BoolVar(&simDryRun, "dry-run", false, "outcome 을 저장하지 않음")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	today := time.Now().UTC().Truncate(24 * time.Hour)

	to, err := parseDateFlag("to", simTo, today)
	if err != nil {
		return err
	}
	from, err := parseDateFlag("from", simFrom, to.AddDate(0, -1, 0))
	if err != nil {
		return err
	}
	if simDate != "" {
		if from, err = parseDateFlag("date", simDate, today); err != nil {
			return err
		}
		to = from
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	strategies, err := strategiesFor(rt.strategy, simStrategy)
	if err != nil {
		return err
	}
	// 신호는 운영 저장소에서 읽고, dry-run 은 저장만 건너뛴다
	orch, err := rt.orchestrator(false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Outcome Simulation",
		field{"Period", contracts.DateKey(from) + " ~ " + contracts.DateKey(to)},
		field{"Strategies", strings.Join(strategies, ", ")},
		field{"Horizon", fmt.Sprintf("%d bars (%s)", rt.strategy.Simulation.HorizonBars, rt.strategy.Simulation.Policy)},
	)

	for _, strategy := range strategies {
		res, err := orch.EvaluateOutcomes(ctx, brain.OutcomeRequest{From: from, To: to, Strategy: strategy, DryRun: simDryRun})
		if err != nil {
			return err
		}
		printOutcomeCounts(out, strategy, res)
	}
	return nil
}

func printOutcomeCounts(w io.Writer, strategy string, res *brain.OutcomeResult) {
	fmt.Fprintf(w, "\n[%s] %d outcomes, %d skipped\n", strategy, len(res.Outcomes), res.Skipped)

	statuses := make([]string, 0, len(res.Counts))
	for s := range res.Counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		printKeyValue(w, s, fmt.Sprintf("%d", res.Counts[contracts.OutcomeStatus(s)]), 14)
	}
}
