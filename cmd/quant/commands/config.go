package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

// configCmd manages the strategy YAML
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 파일 관리",
	Long: `전략 설정 YAML 을 생성하거나 검증합니다.

Example:
  go run ./cmd/quant config init --out config/strategy.yaml
  go run ./cmd/quant config check config/strategy.yaml`,
}

var (
	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "기본 전략 설정 YAML 출력",
		RunE:  runConfigInit,
	}

	configCheckCmd = &cobra.Command{
		Use:   "check [file]",
		Short: "전략 설정 검증 및 해시 출력",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigCheck,
	}

	configOut   string
	configForce bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)

	configInitCmd.Flags().StringVar(&configOut, "out", "", "출력 파일 (기본: stdout)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "기존 파일 덮어쓰기")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	data, err := strategyconfig.Marshal(strategyconfig.Default())
	if err != nil {
		return err
	}

	if configOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if _, err := os.Stat(configOut); err == nil && !configForce {
		return fmt.Errorf("%s exists (use --force)", configOut)
	}
	if err := os.WriteFile(configOut, data, 0o644); err != nil {
		return err
	}
	printSuccess(cmd.OutOrStdout(), "wrote "+configOut)
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := strategyFile
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		path = os.Getenv("STRATEGY_CONFIG")
	}

	cfg, err := loadStrategyPath(path)
	if err != nil {
		return err
	}
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "Strategy Config",
		field{"File", path},
		field{"ID", cfg.Meta.StrategyID + " v" + cfg.Meta.Version},
		field{"Hash", hash},
	)
	for _, name := range cfg.StrategyNames() {
		printKeyValue(out, "strategy", name, 10)
	}
	for _, w := range strategyconfig.Warn(cfg) {
		printWarning(out, w.Code+": "+w.Message)
	}
	printSuccess(out, "valid")
	return nil
}

// loadStrategyPath loads path, defaulting to config/strategy.yaml
func loadStrategyPath(path string) (*strategyconfig.Config, error) {
	if path == "" {
		path = "config/strategy.yaml"
	}
	cfg, err := strategyconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errConfig, path, err)
	}
	return cfg, nil
}
