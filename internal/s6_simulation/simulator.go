package s6_simulation

import (
	"fmt"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// Simulator replays a trade setup over the bars that followed it
// ⭐ SSOT: S6 사후 시뮬레이션 상태머신은 여기서만
//
//	PENDING_ENTRY → FILLED → {SUCCESS, FAILURE, CLOSED_PROFIT, CLOSED_LOSS}
//	              ↘ NO_FILL            ↘ OPEN (horizon 미도달 또는 policy=open)
//
// 체결/청산 가격은 지정가(entry, stop, target) 그대로 사용한다.
type Simulator struct {
	logger *logger.Logger
}

// NewSimulator creates a simulator
func NewSimulator(log *logger.Logger) *Simulator {
	return &Simulator{logger: log.WithComponent("simulator")}
}

// Simulate walks at most horizon bars dated after setup.AsOf.
// 한 봉 안에서 stop 과 target 이 모두 닿으면 stop 우선 (봉 내부 경로를 모름).
// 체결 봉에서는 stop 만 검사한다.
func (s *Simulator) Simulate(setup contracts.TradeSetup, forward []contracts.Bar, horizon int, policy string) (contracts.TradeOutcome, error) {
	if horizon < 1 {
		return contracts.TradeOutcome{}, fmt.Errorf("horizon must be >= 1, got %d", horizon)
	}
	if setup.StopLoss >= setup.EntryPrice || setup.TakeProfit <= setup.EntryPrice {
		return contracts.TradeOutcome{}, &contracts.SetupError{Symbol: setup.Symbol, Reason: "levels out of order"}
	}

	series, err := s0_data.NewPriceSeries(setup.Symbol, forward)
	if err != nil {
		return contracts.TradeOutcome{}, err
	}
	bars := series.After(setup.AsOf, horizon).Bars()

	out := contracts.TradeOutcome{
		Symbol:    setup.Symbol,
		SetupDate: setup.AsOf,
		Strategy:  setup.Strategy,
		Status:    contracts.StatusOpen,
		BarsSeen:  len(bars),
	}

	for _, b := range bars {
		if !out.Filled {
			if !b.Contains(setup.EntryPrice) {
				continue
			}
			out.Filled = true
			out.FillDate = datePtr(b.Date)
			out.BarsHeld = 1
			if b.Low <= setup.StopLoss {
				s.exit(&out, setup, contracts.StatusFailure, b.Date, setup.StopLoss)
				return out, nil
			}
			continue
		}

		out.BarsHeld++
		switch {
		case b.Low <= setup.StopLoss:
			s.exit(&out, setup, contracts.StatusFailure, b.Date, setup.StopLoss)
			return out, nil
		case b.High >= setup.TakeProfit:
			s.exit(&out, setup, contracts.StatusSuccess, b.Date, setup.TakeProfit)
			return out, nil
		}
	}

	// horizon 미도달: 아직 결론 없음
	if len(bars) < horizon {
		s.markOpen(&out, setup, bars)
		return out, nil
	}

	if !out.Filled {
		out.Status = contracts.StatusNoFill
		return out, nil
	}

	if policy == strategyconfig.PolicyClose {
		last := bars[len(bars)-1]
		status := contracts.StatusClosedLoss
		if last.Close > setup.EntryPrice {
			status = contracts.StatusClosedProfit
		}
		s.exit(&out, setup, status, last.Date, last.Close)
		return out, nil
	}

	s.markOpen(&out, setup, bars)
	return out, nil
}

// markOpen marks a filled, still-open trade to the last available close. exit 필드는 비워둔다.
func (s *Simulator) markOpen(out *contracts.TradeOutcome, setup contracts.TradeSetup, bars []contracts.Bar) {
	if !out.Filled || len(bars) == 0 {
		return
	}
	last := bars[len(bars)-1].Close
	out.PnLPercent = (last - setup.EntryPrice) / setup.EntryPrice * 100
}

func (s *Simulator) exit(out *contracts.TradeOutcome, setup contracts.TradeSetup, status contracts.OutcomeStatus, date time.Time, price float64) {
	out.Status = status
	out.ExitDate = datePtr(date)
	out.ExitPrice = price
	out.PnLPercent = (price - setup.EntryPrice) / setup.EntryPrice * 100

	zl := s.logger.Zerolog()
	zl.Debug().
		Str("symbol", setup.Symbol).
		Str("setup_date", contracts.DateKey(setup.AsOf)).
		Str("status", string(status)).
		Float64("pnl_pct", out.PnLPercent).
		Int("bars_held", out.BarsHeld).
		Msg("trade closed")
}

func datePtr(t time.Time) *time.Time { return &t }
