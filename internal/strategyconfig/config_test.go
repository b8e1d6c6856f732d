package strategyconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestRepoConfigLoads(t *testing.T) {
	path := "../../config/strategy.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"momentum", "mean_reversion"}, cfg.StrategyNames())
}

func TestMarshalParseRoundTripKeepsHash(t *testing.T) {
	cfg := Default()
	data, err := Marshal(cfg)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)

	h1, err := Hash(cfg)
	require.NoError(t, err)
	h2, err := Hash(parsed)
	require.NoError(t, err)
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)
}

func TestParseRejectsUnknownField(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	data = append(data, []byte("unexpected_key: 1\n")...)
	_, err = Parse(data)
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "us_equity_swing", cfg.Meta.StrategyID)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"missing strategy id", func(c *Config) { c.Meta.StrategyID = "" }, "meta.strategy_id"},
		{"rsi bands out of order", func(c *Config) { c.Indicators.RSI.Oversold = 15 }, "indicators.rsi"},
		{"volume factor above one", func(c *Config) { c.Indicators.Volume.UnconfirmedFactor = 1.5 }, "indicators.volume.unconfirmed_factor"},
		{"trend windows inverted", func(c *Config) { c.Indicators.Trend.ShortWindow = 60 }, "indicators.trend"},
		{"tiers overlap", func(c *Config) { c.Strategies[0].Tiers.High = c.Strategies[0].Tiers.Extreme }, "strategies[0].tiers"},
		{"discounts decreasing", func(c *Config) { c.Strategies[0].Discounts.Weak = 0.1 }, "strategies[0].discounts"},
		{"stop factor zero", func(c *Config) { c.Strategies[0].Stop.ATRMult = 0 }, "strategies[0].stop.atr_mult"},
		{"target pct zero", func(c *Config) { c.Strategies[1].Target.Pct = 0 }, "strategies[1].target.pct"},
		{"bad anchor", func(c *Config) { c.Strategies[1].EntryAnchor = "open" }, "strategies[1].entry_anchor"},
		{"duplicate strategy", func(c *Config) { c.Strategies[1].Name = "momentum" }, "strategies[1].name"},
		{"one regime index", func(c *Config) { c.Regime.Indices = []string{"SPY"} }, "regime.indices"},
		{"zero horizon", func(c *Config) { c.Simulation.HorizonBars = 0 }, "simulation.horizon_bars"},
		{"bad policy", func(c *Config) { c.Simulation.Policy = "hold" }, "simulation.policy"},
		{"no workers", func(c *Config) { c.Batch.Workers = 0 }, "batch.workers"},
		{"negative bonus", func(c *Config) { c.Bonuses.RSIOversold = -1 }, "bonuses.rsi_oversold"},
		{"nothing enabled", func(c *Config) {
			c.Indicators.RSI.Enabled = false
			c.Indicators.Bollinger.Enabled = false
			c.Indicators.Trend.Enabled = false
			c.Indicators.Volume.Enabled = false
			c.Indicators.Volatility.Enabled = false
			c.Indicators.Candle.Enabled = false
			c.Indicators.Support.Enabled = false
		}, "indicators"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestTierForCoversRealLine(t *testing.T) {
	tiers := Default().Strategies[0].Tiers

	tests := []struct {
		score float64
		want  contracts.Tier
	}{
		{1e9, contracts.TierExtreme},
		{60, contracts.TierExtreme},
		{59.99, contracts.TierHigh},
		{40, contracts.TierHigh},
		{25, contracts.TierMedium},
		{10, contracts.TierLow},
		{9.99, contracts.TierWeak},
		{-1e9, contracts.TierWeak},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tiers.TierFor(tt.score), "score %v", tt.score)
	}

	// monotone: a higher score never maps to a weaker tier
	prev := tiers.TierFor(-100)
	for s := -100.0; s <= 100; s += 0.5 {
		cur := tiers.TierFor(s)
		assert.GreaterOrEqual(t, cur.Rank(), prev.Rank())
		prev = cur
	}
}

func TestStrategyLookupAndClone(t *testing.T) {
	cfg := Default()

	s, err := cfg.Strategy("mean_reversion")
	require.NoError(t, err)
	assert.Equal(t, AnchorLow, s.EntryAnchor)

	_, err = cfg.Strategy("nope")
	assert.ErrorIs(t, err, contracts.ErrNotFound)

	clone := cfg.Clone()
	clone.Strategies[0].MinScore = 999
	clone.Regime.Indices[0] = "DIA"
	assert.Equal(t, 10.0, cfg.Strategies[0].MinScore)
	assert.Equal(t, "SPY", cfg.Regime.Indices[0])
}

func TestWarn(t *testing.T) {
	cfg := Default()
	assert.Empty(t, Warn(cfg))

	cfg.Liquidity.MinAvgVolume = 0
	cfg.Strategies[0].MinScore = -5
	codes := []string{}
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, "NO_LIQUIDITY_GATE")
	assert.Contains(t, codes, "WEAK_TIER_SIGNALS")
}
