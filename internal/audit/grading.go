package audit

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// Pair joins a persisted signal with its simulated outcome
type Pair struct {
	Signal  contracts.Signal       `json:"signal"`
	Outcome contracts.TradeOutcome `json:"outcome"`
}

// GroupStats aggregates outcomes for one grouping key
//
// WinRate = wins / (wins + losses). open, no_fill 은 분모에서 제외.
// MeanPnL, AvgWin, AvgLoss, ProfitFactor 는 결론 난 거래만 사용.
type GroupStats struct {
	Group        string  `json:"group"`
	Samples      int     `json:"samples"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Open         int     `json:"open"`
	NoFill       int     `json:"no_fill"`
	WinRate      float64 `json:"win_rate"`
	MeanPnL      float64 `json:"mean_pnl_pct"`
	AvgWin       float64 `json:"avg_win_pct"`
	AvgLoss      float64 `json:"avg_loss_pct"`
	ProfitFactor float64 `json:"profit_factor"`
	MeanScore    float64 `json:"mean_score"`
}

// Decided returns wins + losses
func (g GroupStats) Decided() int { return g.Wins + g.Losses }

// GradingReport is the S7 summary used for weight tuning
type GradingReport struct {
	Strategy    string       `json:"strategy,omitempty"`
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
	Overall     GroupStats   `json:"overall"`
	ByTier      []GroupStats `json:"by_tier"`
	ByComponent []GroupStats `json:"by_component"`
	Unmatched   int          `json:"unmatched"` // signals without an outcome yet
}

// Grade aggregates pairs overall, by tier and by fired component.
// ⭐ SSOT: S7 승률/손익 집계는 여기서만
func Grade(pairs []Pair) GradingReport {
	overall := &accumulator{}
	byTier := make(map[contracts.Tier]*accumulator)
	byComponent := make(map[string]*accumulator)

	for _, p := range pairs {
		overall.add(p)

		tier := p.Signal.Tier
		if byTier[tier] == nil {
			byTier[tier] = &accumulator{}
		}
		byTier[tier].add(p)

		for _, name := range p.Signal.Breakdown.FiredComponents() {
			if byComponent[name] == nil {
				byComponent[name] = &accumulator{}
			}
			byComponent[name].add(p)
		}
	}

	report := GradingReport{
		Overall:     overall.stats("overall"),
		ByTier:      make([]GroupStats, 0, len(byTier)),
		ByComponent: make([]GroupStats, 0, len(byComponent)),
	}

	// 수집 후 정렬: 티어는 강한 순, 컴포넌트는 이름순
	tiers := make([]contracts.Tier, 0, len(byTier))
	for t := range byTier {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].Rank() != tiers[j].Rank() {
			return tiers[i].Rank() > tiers[j].Rank()
		}
		return tiers[i] < tiers[j]
	})
	for _, t := range tiers {
		report.ByTier = append(report.ByTier, byTier[t].stats(string(t)))
	}

	names := make([]string, 0, len(byComponent))
	for n := range byComponent {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		report.ByComponent = append(report.ByComponent, byComponent[n].stats(n))
	}

	return report
}

type accumulator struct {
	samples, wins, losses, open, noFill int
	sumPnL, sumWin, sumLoss, sumScore   float64
}

func (a *accumulator) add(p Pair) {
	a.samples++
	a.sumScore += p.Signal.Score

	status := p.Outcome.Status
	switch {
	case status.IsDecided() && status.IsWin():
		a.wins++
		a.sumPnL += p.Outcome.PnLPercent
		a.sumWin += p.Outcome.PnLPercent
	case status.IsDecided():
		a.losses++
		a.sumPnL += p.Outcome.PnLPercent
		a.sumLoss += p.Outcome.PnLPercent
	case status == contracts.StatusNoFill:
		a.noFill++
	default:
		a.open++
	}
}

func (a *accumulator) stats(group string) GroupStats {
	g := GroupStats{
		Group:   group,
		Samples: a.samples,
		Wins:    a.wins,
		Losses:  a.losses,
		Open:    a.open,
		NoFill:  a.noFill,
	}
	if a.samples > 0 {
		g.MeanScore = a.sumScore / float64(a.samples)
	}
	if decided := a.wins + a.losses; decided > 0 {
		g.WinRate = float64(a.wins) / float64(decided)
		g.MeanPnL = a.sumPnL / float64(decided)
	}
	if a.wins > 0 {
		g.AvgWin = a.sumWin / float64(a.wins)
	}
	if a.losses > 0 {
		g.AvgLoss = a.sumLoss / float64(a.losses)
	}
	if a.sumLoss != 0 {
		g.ProfitFactor = a.sumWin / math.Abs(a.sumLoss)
	}
	return g
}
