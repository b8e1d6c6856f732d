package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

// Exit codes
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2 // 설정 파일 오류
	ExitUnavailable = 3 // 저장소 장애 (ErrUpstreamUnavailable)
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "Aegis Scorer - 일봉 기술적 스코어링 및 사후 검증",
	Long: `Aegis Scorer Unified CLI

종목별 일봉으로 기술적 점수를 매기고, 진입/손절/목표가를 산출하며,
사후 시뮬레이션으로 점수 티어와 지표별 성과를 검증합니다.

Pipeline:
  S0 데이터 → S1 국면/유니버스 → S2 점수 → S3 setup → S6 시뮬레이션 → S7 집계

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant score --date 2024-05-15
  go run ./cmd/quant simulate --from 2024-04-01 --to 2024-04-30
  go run ./cmd/quant grade --period 3M
  go run ./cmd/quant config check config/strategy.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	var verr strategyconfig.ValidationError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, contracts.ErrUpstreamUnavailable):
		return ExitUnavailable
	case errors.As(err, &verr), errors.Is(err, errConfig):
		return ExitConfig
	default:
		return ExitFailure
	}
}

// errConfig marks strategy/process configuration failures
var errConfig = errors.New("configuration error")

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy-config", "", "strategy YAML (default: $STRATEGY_CONFIG or config/strategy.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// parseDateFlag parses YYYY-MM-DD (UTC). 비어있으면 fallback.
func parseDateFlag(name, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q (YYYY-MM-DD): %w", name, value, err)
	}
	return t, nil
}
