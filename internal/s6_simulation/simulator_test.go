package s6_simulation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

var asOf = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// entry 100, stop 95, target 110
func testSetup() contracts.TradeSetup {
	return contracts.TradeSetup{
		Symbol: "AAA", AsOf: asOf, Strategy: "momentum", Tier: contracts.TierHigh,
		EntryPrice: 100, StopLoss: 95, TakeProfit: 110,
	}
}

// hl builds a forward bar on day asOf+d
func hl(d int, low, high, close float64) contracts.Bar {
	return contracts.Bar{Date: asOf.AddDate(0, 0, d), Open: close, High: high, Low: low, Close: close, Volume: 1e6}
}

func TestSimulate(t *testing.T) {
	tests := []struct {
		name     string
		bars     []contracts.Bar
		policy   string
		status   contracts.OutcomeStatus
		filled   bool
		exit     float64
		pnl      float64
		barsHeld int
	}{
		{
			name:   "target after fill",
			bars:   []contracts.Bar{hl(1, 99, 101, 100), hl(2, 104, 111, 109)},
			status: contracts.StatusSuccess, filled: true, exit: 110, pnl: 10, barsHeld: 2,
		},
		{
			name:   "stop after fill",
			bars:   []contracts.Bar{hl(1, 99, 101, 100), hl(2, 94, 99, 95)},
			status: contracts.StatusFailure, filled: true, exit: 95, pnl: -5, barsHeld: 2,
		},
		{
			name:   "stop wins inside one bar",
			bars:   []contracts.Bar{hl(1, 99, 101, 100), hl(2, 90, 115, 100)},
			status: contracts.StatusFailure, filled: true, exit: 95, pnl: -5, barsHeld: 2,
		},
		{
			name:   "stop on fill bar",
			bars:   []contracts.Bar{hl(1, 94, 101, 96)},
			status: contracts.StatusFailure, filled: true, exit: 95, pnl: -5, barsHeld: 1,
		},
		{
			name:   "target ignored on fill bar then closed at horizon",
			bars:   []contracts.Bar{hl(1, 99, 112, 108), hl(2, 104, 108, 106), hl(3, 103, 107, 104)},
			policy: strategyconfig.PolicyClose,
			status: contracts.StatusClosedProfit, filled: true, exit: 104, pnl: 4, barsHeld: 3,
		},
		{
			name:   "closed at or below entry is a loss",
			bars:   []contracts.Bar{hl(1, 99, 101, 100), hl(2, 98, 101, 99), hl(3, 97, 101, 100)},
			policy: strategyconfig.PolicyClose,
			status: contracts.StatusClosedLoss, filled: true, exit: 100, pnl: 0, barsHeld: 3,
		},
		{
			name:   "policy open marks to last close",
			bars:   []contracts.Bar{hl(1, 99, 101, 100), hl(2, 99, 104, 103), hl(3, 100, 105, 104)},
			policy: strategyconfig.PolicyOpen,
			status: contracts.StatusOpen, filled: true, pnl: 4, barsHeld: 3,
		},
		{
			name:   "never filled within horizon",
			bars:   []contracts.Bar{hl(1, 101, 105, 103), hl(2, 102, 106, 104), hl(3, 103, 107, 105)},
			status: contracts.StatusNoFill,
		},
		{
			name:   "not filled yet, horizon pending",
			bars:   []contracts.Bar{hl(1, 101, 105, 103)},
			status: contracts.StatusOpen,
		},
		{
			name:   "filled, horizon pending",
			bars:   []contracts.Bar{hl(1, 99, 101, 100), hl(2, 98, 102, 101)},
			status: contracts.StatusOpen, filled: true, pnl: 1, barsHeld: 2,
		},
		{
			name: "bars on or before setup date are ignored",
			bars: []contracts.Bar{
				hl(-1, 90, 120, 100), hl(0, 90, 120, 100),
				hl(1, 99, 101, 100), hl(2, 104, 111, 109),
			},
			status: contracts.StatusSuccess, filled: true, exit: 110, pnl: 10, barsHeld: 2,
		},
	}

	sim := NewSimulator(logger.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := tt.policy
			if policy == "" {
				policy = strategyconfig.PolicyClose
			}

			out, err := sim.Simulate(testSetup(), tt.bars, 3, policy)
			require.NoError(t, err)

			assert.Equal(t, tt.status, out.Status)
			assert.Equal(t, tt.filled, out.Filled)
			assert.InDelta(t, tt.exit, out.ExitPrice, 1e-9)
			assert.InDelta(t, tt.pnl, out.PnLPercent, 1e-9)
			assert.Equal(t, tt.barsHeld, out.BarsHeld)
			assert.Equal(t, tt.filled, out.FillDate != nil)
			assert.Equal(t, "AAA", out.Symbol)
			assert.Equal(t, asOf, out.SetupDate)
			if tt.status == contracts.StatusOpen {
				assert.Nil(t, out.ExitDate)
			}
		})
	}
}

func TestSimulateHorizonBoundsTheWalk(t *testing.T) {
	// 목표가는 4번째 봉에서 닿지만 horizon=3 이므로 보지 않는다
	bars := []contracts.Bar{hl(1, 99, 101, 100), hl(2, 98, 102, 101), hl(3, 98, 102, 101), hl(4, 105, 120, 115)}

	out, err := NewSimulator(logger.NewNop()).Simulate(testSetup(), bars, 3, strategyconfig.PolicyClose)
	require.NoError(t, err)
	assert.Equal(t, contracts.StatusClosedProfit, out.Status)
	assert.Equal(t, 3, out.BarsSeen)
}

func TestSimulateErrors(t *testing.T) {
	sim := NewSimulator(logger.NewNop())

	_, err := sim.Simulate(testSetup(), nil, 0, strategyconfig.PolicyClose)
	assert.Error(t, err)

	bad := testSetup()
	bad.StopLoss = 101
	_, err = sim.Simulate(bad, nil, 3, strategyconfig.PolicyClose)
	assert.True(t, errors.Is(err, contracts.ErrInvalidSetup))

	unordered := []contracts.Bar{hl(2, 99, 101, 100), hl(1, 99, 101, 100)}
	_, err = sim.Simulate(testSetup(), unordered, 3, strategyconfig.PolicyClose)
	assert.True(t, errors.Is(err, contracts.ErrDataIntegrity))
}

func TestSimulateDecidedOutcomeIgnoresLaterBars(t *testing.T) {
	full := []contracts.Bar{hl(1, 99, 101, 100), hl(2, 98, 104, 103), hl(3, 104, 112, 111)}
	for d := 4; d <= 30; d++ {
		full = append(full, hl(d, 80, 90, 85))
	}

	sim := NewSimulator(logger.NewNop())
	short, err := sim.Simulate(testSetup(), full[:3], 10, strategyconfig.PolicyClose)
	require.NoError(t, err)
	long, err := sim.Simulate(testSetup(), full, 10, strategyconfig.PolicyClose)
	require.NoError(t, err)

	assert.Equal(t, contracts.StatusSuccess, short.Status)
	assert.Equal(t, short.Status, long.Status)
	assert.Equal(t, short.ExitDate, long.ExitDate)
	assert.InDelta(t, short.PnLPercent, long.PnLPercent, 1e-9)
}
