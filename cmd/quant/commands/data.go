package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/pkg/workerpool"
)

// dataCmd groups price store diagnostics
var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "가격 데이터 점검 (S0)",
}

var dataCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "일봉 무결성 점검",
	Long: `저장소의 모든 종목에 대해 일봉 시퀀스 무결성(날짜 단조/중복, OHLC 범위)과
이력 길이를 점검합니다.

Example:
  go run ./cmd/quant data check
  go run ./cmd/quant data check --date 2024-05-15 --all`,
	RunE: runDataCheck,
}

var (
	dataCheckDate string
	dataCheckAll  bool
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataCheckCmd)
	dataCheckCmd.Flags().StringVar(&dataCheckDate, "date", "", "as-of 날짜 (YYYY-MM-DD, 기본: 오늘 UTC)")
	dataCheckCmd.Flags().BoolVar(&dataCheckAll, "all", false, "정상 종목도 출력")
}

// symbolCheck is the integrity verdict for one symbol
type symbolCheck struct {
	Symbol string
	Bars   int
	Last   time.Time
	Status string
	Detail string
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	date, err := parseDateFlag("date", dataCheckDate, time.Now().UTC().Truncate(24*time.Hour))
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	orch, err := rt.orchestrator(true)
	if err != nil {
		return err
	}
	required := orch.RequiredHistory()

	symbols, err := rt.source.ListSymbols(ctx)
	if err != nil {
		return err
	}

	pool := workerpool.New(rt.cfg.Engine.Workers)
	checks, err := workerpool.Map(ctx, pool, symbols, func(ctx context.Context, symbol string) symbolCheck {
		return checkSymbol(ctx, rt.source, symbol, date, required)
	}, nil)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	rows := make([][]string, 0)
	for _, c := range checks {
		counts[c.Status]++
		if c.Status == "ok" && !dataCheckAll {
			continue
		}
		last := "-"
		if !c.Last.IsZero() {
			last = contracts.DateKey(c.Last)
		}
		rows = append(rows, []string{c.Symbol, fmt.Sprintf("%d", c.Bars), last, c.Status, c.Detail})
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Data Check",
		field{"As-of", contracts.DateKey(date)},
		field{"Symbols", fmt.Sprintf("%d", len(symbols))},
		field{"Required", fmt.Sprintf("%d bars", required)},
	)
	if len(rows) > 0 {
		printTable(out, []string{"Symbol", "Bars", "Last", "Status", "Detail"}, []int{8, 6, 12, 10, 40}, rows)
	}
	for _, status := range []string{"ok", "short", "stale", "integrity", "missing", "error"} {
		printKeyValue(out, status, fmt.Sprintf("%d", counts[status]), 10)
	}

	if counts["error"] > 0 {
		return fmt.Errorf("%d symbols could not be read", counts["error"])
	}
	if counts["integrity"] > 0 {
		printWarning(out, fmt.Sprintf("%d symbols have integrity violations", counts["integrity"]))
	} else {
		printSuccess(out, "no integrity violations")
	}
	return nil
}

// checkSymbol loads required+1 bars as of date and classifies the series
func checkSymbol(ctx context.Context, source contracts.BarSource, symbol string, date time.Time, required int) symbolCheck {
	c := symbolCheck{Symbol: symbol}

	bars, err := source.GetBarsAsOf(ctx, symbol, date, required+1)
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		c.Status = "missing"
		return c
	case err != nil:
		c.Status, c.Detail = "error", err.Error()
		return c
	}

	c.Bars = len(bars)
	series, err := s0_data.NewPriceSeries(symbol, bars)
	if err != nil {
		c.Status, c.Detail = "integrity", err.Error()
		return c
	}
	if series.Len() == 0 {
		c.Status = "missing"
		return c
	}
	c.Last = series.Last().Date

	switch {
	case series.Len() < required:
		c.Status, c.Detail = "short", fmt.Sprintf("need %d", required)
	case !series.Last().Date.Equal(date):
		c.Status = "stale"
	default:
		c.Status = "ok"
	}
	return c
}
