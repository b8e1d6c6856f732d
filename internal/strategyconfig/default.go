package strategyconfig

import "time"

// Default returns a complete, valid configuration.
// `quant config init` 이 이 값을 YAML 로 내보낸다.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "us_equity_swing",
			Version:    "1.0.0",
		},
		Liquidity: Liquidity{
			VolumeWindow: 20,
			MinAvgVolume: 100_000,
		},
		Indicators: Indicators{
			RSI: RSI{
				Enabled:                 true,
				Weight:                  1.0,
				Period:                  14,
				ExtremeOversold:         20,
				Oversold:                30,
				Overbought:              70,
				ExtremeOverbought:       80,
				ExtremeOversoldPoints:   20,
				OversoldPoints:          10,
				OverboughtPoints:        5,
				ExtremeOverboughtPoints: 10,
			},
			Bollinger: Bollinger{
				Enabled:     true,
				Weight:      1.0,
				Period:      20,
				StdMult:     2.0,
				LowerPoints: 10,
				UpperPoints: 5,
			},
			Trend: Trend{
				Enabled:     true,
				Weight:      1.0,
				ShortWindow: 20,
				LongWindow:  50,
				UpPoints:    10,
				DownPoints:  10,
			},
			Volume: Volume{
				Enabled:           true,
				Weight:            1.0,
				Window:            20,
				MinRelative:       1.5,
				GapPct:            0.02,
				MovePct:           0.03,
				Points:            10,
				UnconfirmedFactor: 0.5,
			},
			Volatility: Volatility{
				Enabled:       true,
				Weight:        0.5,
				ATRPeriod:     14,
				MinATRPct:     0.01,
				MaxATRPct:     0.06,
				InRangePoints: 5,
				HighPenalty:   10,
			},
			Candle: Candle{
				Enabled:            true,
				Weight:             1.0,
				EngulfingPoints:    10,
				HammerPoints:       8,
				ShootingStarPoints: 8,
				WickBodyRatio:      2.0,
				MaxOppositeWick:    0.25,
			},
			Support: Support{
				Enabled:          true,
				Weight:           1.0,
				Lookback:         52,
				ProximityPct:     0.03,
				SupportPoints:    8,
				ResistancePoints: 5,
			},
		},
		Bonuses: Bonuses{
			RSIExtremeOversold:   10,
			RSIOversold:          5,
			RSIExtremeOverbought: 10,
			RSIOverbought:        5,
		},
		Confluence: Confluence{
			OversoldAtBand:    10,
			ReversalAtSupport: 8,
		},
		Setup: SetupParams{
			ATRPeriod: 14,
		},
		Strategies: []Strategy{
			{
				Name:          "momentum",
				Baseline:      true,
				MinScore:      10,
				Tiers:         TierThresholds{Extreme: 60, High: 40, Medium: 25, Low: 10},
				Discounts:     TierDiscounts{Extreme: 0.0, High: 0.25, Medium: 0.5, Low: 0.75, Weak: 1.0},
				EntryAnchor:   AnchorClose,
				Stop:          Exit{Mode: ExitModeATR, ATRMult: 2.0},
				Target:        Exit{Mode: ExitModeATR, ATRMult: 3.0},
				MinRewardRisk: 1.5,
			},
			{
				// 평균회귀: 낮은 점수대에서도 진입하되 더 깊은 할인, 당일 저가 기준
				Name:          "mean_reversion",
				Baseline:      false,
				MinScore:      15,
				Tiers:         TierThresholds{Extreme: 70, High: 50, Medium: 35, Low: 15},
				Discounts:     TierDiscounts{Extreme: 0.1, High: 0.3, Medium: 0.6, Low: 1.0, Weak: 1.5},
				EntryAnchor:   AnchorLow,
				Stop:          Exit{Mode: ExitModePct, Pct: 0.05},
				Target:        Exit{Mode: ExitModePct, Pct: 0.08},
				MinRewardRisk: 1.2,
			},
		},
		Regime: Regime{
			Indices:           []string{"SPY", "QQQ"},
			MAWindow:          50,
			TrendWindow:       20,
			SlopeLookback:     5,
			SlopeThresholdPct: 0.005,
			CacheTTL:          24 * time.Hour,
		},
		Simulation: Simulation{
			HorizonBars: 10,
			Policy:      PolicyClose,
		},
		Batch: Batch{
			Workers: 8,
		},
	}
}
