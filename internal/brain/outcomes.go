package brain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/pkg/workerpool"
)

// OutcomeRequest selects persisted signals to replay
type OutcomeRequest struct {
	From     time.Time
	To       time.Time
	Strategy string
	DryRun   bool
}

// OutcomeResult is the simulated outcomes plus per-status counts
type OutcomeResult struct {
	Outcomes []contracts.TradeOutcome
	Counts   map[contracts.OutcomeStatus]int
	Skipped  int // setup 없음 또는 시뮬레이션 오류
}

// EvaluateOutcomes replays stored signals in [From, To] over bars after each signal date (S6).
// 신호 저장소에 있는 setup 만 사용한다. 미래 봉이 horizon 보다 짧으면 open 으로 남는다.
func (o *Orchestrator) EvaluateOutcomes(ctx context.Context, req OutcomeRequest) (*OutcomeResult, error) {
	if o.signals == nil {
		return nil, errors.New("signal repository not configured")
	}
	strategy, err := o.cfg.Strategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	signals, err := o.signals.GetRange(ctx, req.From, req.To, strategy.Name)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}

	log := o.logger.WithFields(map[string]interface{}{
		"from":     contracts.DateKey(req.From),
		"to":       contracts.DateKey(req.To),
		"strategy": strategy.Name,
		"signals":  len(signals),
	})
	log.Info("Evaluating trade outcomes")

	// 신호별 병렬 시뮬레이션. 저장소 장애 발생 시 남은 작업 취소.
	simCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	var upstreamErr error
	var once sync.Once

	sims, mapErr := workerpool.Map(simCtx, o.pool, signals, func(ctx context.Context, sig contracts.Signal) simulated {
		outcome, ok, err := o.SimulateSignal(ctx, sig)
		if err != nil {
			once.Do(func() {
				upstreamErr = err
				cancel()
			})
		}
		return simulated{outcome: outcome, ok: ok, err: err}
	}, nil)
	if upstreamErr != nil {
		log.WithError(upstreamErr).Error("Outcome evaluation aborted: store unavailable")
		return nil, upstreamErr
	}
	if mapErr != nil {
		return nil, mapErr
	}

	result := &OutcomeResult{Counts: make(map[contracts.OutcomeStatus]int)}
	for _, r := range sims {
		if !r.ok {
			result.Skipped++
			continue
		}
		result.Outcomes = append(result.Outcomes, r.outcome)
		result.Counts[r.outcome.Status]++
	}
	sortOutcomes(result.Outcomes)
	o.metrics.ObserveStage(contracts.StageSimulation, time.Since(start))

	if !req.DryRun && o.outcomes != nil && len(result.Outcomes) > 0 {
		if err := o.outcomes.Save(ctx, result.Outcomes); err != nil {
			return nil, fmt.Errorf("save outcomes: %w", err)
		}
	}
	o.metrics.ObserveOutcomes(result.Outcomes)

	log.WithFields(map[string]interface{}{
		"outcomes": len(result.Outcomes),
		"skipped":  result.Skipped,
	}).Info("Trade outcomes evaluated")
	return result, nil
}

// simulated is one worker's result
type simulated struct {
	outcome contracts.TradeOutcome
	ok      bool
	err     error
}

// sortOutcomes orders by setup date, symbol, strategy
func sortOutcomes(outcomes []contracts.TradeOutcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		a, b := outcomes[i], outcomes[j]
		if !a.SetupDate.Equal(b.SetupDate) {
			return a.SetupDate.Before(b.SetupDate)
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Strategy < b.Strategy
	})
}

// SimulateSignal replays one signal's setup. ok=false when the signal has no
// usable setup or its forward bars are corrupt; store outages are returned as errors.
func (o *Orchestrator) SimulateSignal(ctx context.Context, sig contracts.Signal) (contracts.TradeOutcome, bool, error) {
	if sig.Setup == nil {
		return contracts.TradeOutcome{}, false, nil
	}
	horizon := o.cfg.Simulation.HorizonBars

	forward, err := o.source.GetBarsAfter(ctx, sig.Symbol, sig.Date, horizon)
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		forward = nil
	case err != nil:
		return contracts.TradeOutcome{}, false, fmt.Errorf("forward bars %s: %w", sig.Symbol, err)
	}

	outcome, err := o.simulator.Simulate(*sig.Setup, forward, horizon, o.cfg.Simulation.Policy)
	if err != nil {
		o.logger.WithFields(map[string]interface{}{
			"symbol": sig.Symbol,
			"date":   contracts.DateKey(sig.Date),
		}).WithError(err).Warn("simulation skipped")
		return contracts.TradeOutcome{}, false, nil
	}
	return outcome, true, nil
}
