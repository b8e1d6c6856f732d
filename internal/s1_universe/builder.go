package s1_universe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// Exclusion reasons
const (
	ReasonRegimeIndex = "regime_index"
	ReasonNotListed   = "not_in_store"
)

// Universe is the set of symbols scored for one date
type Universe struct {
	Date     time.Time         `json:"date"`
	Symbols  []string          `json:"symbols"`
	Excluded map[string]string `json:"excluded"` // symbol -> reason
}

// Builder constructs the scorable universe
// ⭐ SSOT: S1 → S2 유니버스 생성
//
// 기준 지수(SPY, QQQ 등)는 국면 판단용이므로 채점 대상에서 제외한다.
type Builder struct {
	source  contracts.BarSource
	exclude map[string]string
}

// NewBuilder creates a builder that drops the given regime indices
func NewBuilder(source contracts.BarSource, regimeIndices []string) *Builder {
	exclude := make(map[string]string, len(regimeIndices))
	for _, s := range regimeIndices {
		exclude[normalize(s)] = ReasonRegimeIndex
	}
	return &Builder{source: source, exclude: exclude}
}

// Build lists the store's symbols and applies exclusions.
// only 가 비어있지 않으면 그 목록으로 제한한다 (저장소에 없는 종목은 제외 사유 기록).
func (b *Builder) Build(ctx context.Context, date time.Time, only []string) (*Universe, error) {
	listed, err := b.source.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}

	universe := &Universe{
		Date:     date,
		Symbols:  make([]string, 0, len(listed)),
		Excluded: make(map[string]string),
	}

	candidates := listed
	if len(only) > 0 {
		inStore := make(map[string]bool, len(listed))
		for _, s := range listed {
			inStore[s] = true
		}
		candidates = candidates[:0:0]
		for _, s := range only {
			s = normalize(s)
			switch {
			case s == "":
				continue
			case !inStore[s]:
				universe.Excluded[s] = ReasonNotListed
			default:
				candidates = append(candidates, s)
			}
		}
	}

	seen := make(map[string]bool, len(candidates))
	for _, s := range candidates {
		s = normalize(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		if reason, ok := b.exclude[s]; ok {
			universe.Excluded[s] = reason
			continue
		}
		universe.Symbols = append(universe.Symbols, s)
	}
	sort.Strings(universe.Symbols)

	return universe, nil
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
