package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/backtest"
	"github.com/wonny/aegis-scorer/internal/contracts"
)

// backtestCmd replays scoring over a historical range
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "과거 구간 재생 백테스트 (S0 → S7)",
	Long: `기간 내 각 거래일마다 as-of 스코어링을 재생하고, 생성된 setup 을
이후 봉으로 시뮬레이션하여 티어/지표별 성과를 집계합니다.
결과는 메모리에만 남으며 운영 테이블에 쓰지 않습니다.

Example:
  go run ./cmd/quant backtest --from 2023-01-01 --to 2023-12-31 --strategy momentum
  go run ./cmd/quant backtest --from 2023-01-01 --to 2023-12-31 --stride 5`,
	RunE: runBacktest,
}

var (
	btFrom     string
	btTo       string
	btStrategy string
	btSymbols  []string
	btStride   int
	btPaths    int
	btSeed     int64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&btFrom, "from", "", "시작일 (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "종료일 (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&btStrategy, "strategy", "", "전략 이름")
	backtestCmd.Flags().StringSliceVar(&btSymbols, "symbols", nil, "종목 제한 (쉼표 구분)")
	backtestCmd.Flags().IntVar(&btStride, "stride", 1, "N 거래일마다 스코어링")
	backtestCmd.Flags().IntVar(&btPaths, "mc-paths", 5000, "Monte Carlo 리샘플링 경로 수")
	backtestCmd.Flags().Int64Var(&btSeed, "mc-seed", 0, "Monte Carlo 시드 (0=랜덤)")
	_ = backtestCmd.MarkFlagRequired("from")
	_ = backtestCmd.MarkFlagRequired("to")
	_ = backtestCmd.MarkFlagRequired("strategy")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	from, err := parseDateFlag("from", btFrom, time.Time{})
	if err != nil {
		return err
	}
	to, err := parseDateFlag("to", btTo, from)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	engine := backtest.NewEngine(rt.strategy, rt.source, rt.cfg.Engine.Workers, rt.log)
	res, err := engine.Run(ctx, backtest.Config{
		StartDate: from,
		EndDate:   to,
		Strategy:  btStrategy,
		Symbols:   btSymbols,
		Stride:    btStride,
		MonteCarlo: backtest.MonteCarloConfig{
			Paths:      btPaths,
			MinSamples: backtest.DefaultMonteCarloConfig().MinSamples,
			Seed:       btSeed,
		},
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Backtest",
		field{"Period", contracts.DateKey(from) + " ~ " + contracts.DateKey(to)},
		field{"Strategy", btStrategy},
		field{"Days", fmt.Sprintf("%d trading, %d scored", res.TradingDays, len(res.Batches))},
		field{"Symbols", strings.Join(btSymbols, ",")},
	)
	printKeyValue(out, "Total Return", pct(res.TotalReturn), 14)
	printKeyValue(out, "Max Drawdown", pct(res.MaxDrawdown), 14)
	printKeyValue(out, "Duration", res.Duration.String(), 14)
	printReport(out, res.Report)

	if mc := res.MonteCarlo; mc != nil {
		fmt.Fprintf(out, "\nMonte Carlo (%d trades x %d paths)\n", mc.Trades, mc.Paths)
		printKeyValue(out, "Mean Return", pct(mc.MeanReturn), 14)
		printKeyValue(out, "P5 / P50 / P95", pct(mc.Percentiles[5])+" / "+pct(mc.Percentiles[50])+" / "+pct(mc.Percentiles[95]), 14)
		printKeyValue(out, "VaR95 / CVaR95", pct(mc.VaR95)+" / "+pct(mc.CVaR95), 14)
		printKeyValue(out, "P(loss)", pct(mc.LossProb), 14)
	} else {
		printWarning(out, "Monte Carlo skipped (too few decided trades)")
	}
	return nil
}
