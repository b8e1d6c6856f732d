package s2_signals

import (
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

// Component key prefixes in ScoreBreakdown.Components
const (
	BonusPrefix      = "bonus_"
	ConfluencePrefix = "confluence_"
)

// Bonus and confluence names
const (
	BonusRSIExtremeOversold   = "rsi_extreme_oversold"
	BonusRSIOversold          = "rsi_oversold"
	BonusRSIExtremeOverbought = "rsi_extreme_overbought"
	BonusRSIOverbought        = "rsi_overbought"

	ConfluenceOversoldAtBand    = "oversold_at_band"
	ConfluenceReversalAtSupport = "reversal_at_support"
)

// fired holds the rule each scorer fired in this evaluation
type fired map[string]string

func (f fired) is(name string, rules ...string) bool {
	got, ok := f[name]
	if !ok || got == "" {
		return false
	}
	for _, r := range rules {
		if got == r {
			return true
		}
	}
	return false
}

type bonusRule struct {
	name   string
	points float64
	when   func(fired) bool
}

// TechnicalAnalyzer is the composite scorer.
// ⭐ SSOT: 점수 합성(유동성 게이트 → 가중합 → 배타 보너스 → 컨플루언스)은 여기서만
//
// Analyze 는 순수 함수: 같은 창과 같은 설정이면 같은 결과.
type TechnicalAnalyzer struct {
	scorers    []Scorer
	liquidity  strategyconfig.Liquidity
	groups     [][]bonusRule
	confluence []bonusRule
}

// NewTechnicalAnalyzer builds the analyzer from a validated config
func NewTechnicalAnalyzer(cfg *strategyconfig.Config) *TechnicalAnalyzer {
	b := cfg.Bonuses
	cf := cfg.Confluence

	// 그룹 안에서는 강한 규칙부터 평가하고 첫 매칭에서 멈춘다
	groups := [][]bonusRule{
		{
			{BonusRSIExtremeOversold, b.RSIExtremeOversold, func(f fired) bool { return f.is(NameRSI, RuleExtremeOversold) }},
			{BonusRSIOversold, b.RSIOversold, func(f fired) bool { return f.is(NameRSI, RuleOversold) }},
		},
		{
			{BonusRSIExtremeOverbought, -b.RSIExtremeOverbought, func(f fired) bool { return f.is(NameRSI, RuleExtremeOverbought) }},
			{BonusRSIOverbought, -b.RSIOverbought, func(f fired) bool { return f.is(NameRSI, RuleOverbought) }},
		},
	}

	confluence := []bonusRule{
		{ConfluenceOversoldAtBand, cf.OversoldAtBand, func(f fired) bool {
			return f.is(NameRSI, RuleExtremeOversold, RuleOversold) && f.is(NameBollinger, RuleBelowLower)
		}},
		{ConfluenceReversalAtSupport, cf.ReversalAtSupport, func(f fired) bool {
			return f.is(NameCandle, RuleBullishEngulfing, RuleHammer) && f.is(NameSupport, RuleNearSupport)
		}},
	}

	return &TechnicalAnalyzer{
		scorers:    BuildScorers(cfg.Indicators),
		liquidity:  cfg.Liquidity,
		groups:     groups,
		confluence: confluence,
	}
}

// RequiredHistory is the longest lookback among enabled scorers and the liquidity window
func (a *TechnicalAnalyzer) RequiredHistory() int {
	n := a.liquidity.VolumeWindow
	for _, s := range a.scorers {
		if lb := s.Lookback(); lb > n {
			n = lb
		}
	}
	return n
}

// ScorerNames lists enabled scorers in evaluation order
func (a *TechnicalAnalyzer) ScorerNames() []string {
	out := make([]string, len(a.scorers))
	for i, s := range a.scorers {
		out[i] = s.Name()
	}
	return out
}

// Analyze scores the window ending at its last bar
func (a *TechnicalAnalyzer) Analyze(window *s0_data.PriceSeries) contracts.ScoreBreakdown {
	if window == nil || window.Len() == 0 || !a.liquid(window) {
		return contracts.ScoreBreakdown{Total: 0}
	}

	out := contracts.ScoreBreakdown{
		Components: make(map[string]float64, len(a.scorers)+4),
		Rules:      make(map[string]string),
	}
	rules := make(fired, len(a.scorers))

	// 1. 개별 지표 가중합
	for _, s := range a.scorers {
		c := s.Score(window)
		w := c.Weighted()
		out.Components[c.Name] = w
		out.Total += w
		if c.Fired() {
			out.Rules[c.Name] = c.Rule
			rules[c.Name] = c.Rule
		}
	}

	// 2. 배타 보너스 그룹
	for _, group := range a.groups {
		for _, r := range group {
			if !r.when(rules) {
				continue
			}
			a.apply(&out, BonusPrefix+r.name, r)
			break
		}
	}

	// 3. 컨플루언스
	for _, r := range a.confluence {
		if r.when(rules) {
			a.apply(&out, ConfluencePrefix+r.name, r)
		}
	}

	return out
}

func (a *TechnicalAnalyzer) apply(out *contracts.ScoreBreakdown, key string, r bonusRule) {
	if r.points == 0 {
		return
	}
	out.Components[key] = r.points
	out.Rules[key] = r.name
	out.Total += r.points
}

// liquid reports whether the average volume over the gate window meets the minimum.
// 창이 게이트 윈도우보다 짧으면 있는 만큼으로 평균.
func (a *TechnicalAnalyzer) liquid(window *s0_data.PriceSeries) bool {
	if a.liquidity.MinAvgVolume <= 0 {
		return true
	}
	n := a.liquidity.VolumeWindow
	if n <= 0 || n > window.Len() {
		n = window.Len()
	}
	avg, _ := SMA(window.Volumes(), n)
	return avg >= a.liquidity.MinAvgVolume
}
