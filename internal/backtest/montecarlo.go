package backtest

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// ErrTooFewTrades 확정 거래 수가 MinSamples 미만 → 리샘플링 결과를 신뢰할 수 없음
var ErrTooFewTrades = errors.New("too few decided trades for monte carlo")

// MonteCarloConfig controls the trade bootstrap
type MonteCarloConfig struct {
	Paths      int   `json:"paths"`       // 리샘플링 경로 수 (기본: 5000)
	MinSamples int   `json:"min_samples"` // fail-closed 최소 확정 거래 수 (기본: 20)
	Seed       int64 `json:"seed"`        // 0 = 시간 기반
}

// DefaultMonteCarloConfig 기본 Monte Carlo 설정
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{Paths: 5000, MinSamples: 20}
}

// MonteCarloResult is the distribution of compounded returns over resampled trade sequences
type MonteCarloResult struct {
	Trades      int             `json:"trades"`
	Paths       int             `json:"paths"`
	MeanReturn  float64         `json:"mean_return"`
	VaR95       float64         `json:"var_95"`  // 손실을 양수로 표현
	CVaR95      float64         `json:"cvar_95"` // VaR 이하 평균 손실
	LossProb    float64         `json:"loss_probability"`
	Percentiles map[int]float64 `json:"percentiles"` // 5, 25, 50, 75, 95
}

// MonteCarlo resamples decided trade PnLs with replacement.
// 각 경로는 실제 확정 거래 수만큼 뽑아 복리로 누적한다.
func MonteCarlo(outcomes []contracts.TradeOutcome, cfg MonteCarloConfig) (*MonteCarloResult, error) {
	if cfg.Paths <= 0 {
		cfg.Paths = DefaultMonteCarloConfig().Paths
	}

	pnls := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Status.IsDecided() {
			pnls = append(pnls, o.PnLPercent/100)
		}
	}
	if len(pnls) == 0 || len(pnls) < cfg.MinSamples {
		return nil, ErrTooFewTrades
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	returns := make([]float64, cfg.Paths)
	for i := range returns {
		equity := 1.0
		for range pnls {
			equity *= 1 + pnls[rng.Intn(len(pnls))]
		}
		returns[i] = equity - 1
	}
	sort.Float64s(returns)

	res := &MonteCarloResult{
		Trades:      len(pnls),
		Paths:       cfg.Paths,
		Percentiles: make(map[int]float64, 5),
	}

	losses := 0
	sum := 0.0
	for _, r := range returns {
		sum += r
		if r < 0 {
			losses++
		}
	}
	res.MeanReturn = sum / float64(len(returns))
	res.LossProb = float64(losses) / float64(len(returns))
	res.VaR95, res.CVaR95 = valueAtRisk(returns, 0.95)
	for _, p := range []int{5, 25, 50, 75, 95} {
		res.Percentiles[p] = percentile(returns, float64(p))
	}
	return res, nil
}

// valueAtRisk takes ascending returns. (1-confidence) 분위수 이하가 tail.
func valueAtRisk(sorted []float64, confidence float64) (float64, float64) {
	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	var v float64
	if sorted[idx] < 0 {
		v = -sorted[idx]
	}

	// CVaR: idx 까지 (포함) 평균 손실
	sum := 0.0
	for _, r := range sorted[:idx+1] {
		sum += r
	}
	cvar := -sum / float64(idx+1)
	if cvar < 0 {
		cvar = 0
	}
	return v, cvar
}

// percentile uses linear interpolation between closest ranks
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
