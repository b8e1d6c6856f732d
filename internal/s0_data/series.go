package s0_data

import (
	"sort"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// PriceSeries is an immutable, strictly date-increasing sequence of bars
// ⭐ SSOT: 지표 계산에 들어가는 가격 시계열은 모두 이 타입을 거친다
//
// 뷰(Tail, AsOf, After)는 원본 배열을 공유하지만 외부로 쓰기 경로가 없으므로
// 생성 이후 내용이 바뀌지 않는다.
type PriceSeries struct {
	symbol string
	bars   []contracts.Bar
}

// NewPriceSeries validates bars and wraps them.
// 날짜 비단조/중복, high < low 는 IntegrityError (ErrDataIntegrity)
func NewPriceSeries(symbol string, bars []contracts.Bar) (*PriceSeries, error) {
	for i := range bars {
		b := bars[i]
		if b.High < b.Low {
			return nil, &contracts.IntegrityError{Symbol: symbol, Index: i, Reason: "high below low"}
		}
		if i == 0 {
			continue
		}
		prev := bars[i-1].Date
		switch {
		case b.Date.Equal(prev):
			return nil, &contracts.IntegrityError{Symbol: symbol, Index: i, Reason: "duplicate date " + contracts.DateKey(b.Date)}
		case b.Date.Before(prev):
			return nil, &contracts.IntegrityError{Symbol: symbol, Index: i, Reason: "date not increasing " + contracts.DateKey(b.Date)}
		}
	}

	owned := make([]contracts.Bar, len(bars))
	copy(owned, bars)
	return &PriceSeries{symbol: symbol, bars: owned}, nil
}

// Symbol returns the series symbol
func (s *PriceSeries) Symbol() string { return s.symbol }

// Len returns the number of bars
func (s *PriceSeries) Len() int { return len(s.bars) }

// At returns the i-th bar (0 = oldest)
func (s *PriceSeries) At(i int) contracts.Bar { return s.bars[i] }

// Last returns the most recent bar. Panics on an empty series.
func (s *PriceSeries) Last() contracts.Bar { return s.bars[len(s.bars)-1] }

// Bars returns a copy of the bars
func (s *PriceSeries) Bars() []contracts.Bar {
	out := make([]contracts.Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// Tail returns a view of the last n bars (or all if n >= Len)
func (s *PriceSeries) Tail(n int) *PriceSeries {
	if n <= 0 {
		return &PriceSeries{symbol: s.symbol}
	}
	if n >= len(s.bars) {
		return s
	}
	return &PriceSeries{symbol: s.symbol, bars: s.bars[len(s.bars)-n:]}
}

// AsOf returns the view of bars dated on or before d
func (s *PriceSeries) AsOf(d time.Time) *PriceSeries {
	// first index with Date > d
	idx := sort.Search(len(s.bars), func(i int) bool { return s.bars[i].Date.After(d) })
	return &PriceSeries{symbol: s.symbol, bars: s.bars[:idx]}
}

// After returns up to n bars dated strictly after d (n <= 0 means all)
func (s *PriceSeries) After(d time.Time, n int) *PriceSeries {
	idx := sort.Search(len(s.bars), func(i int) bool { return s.bars[i].Date.After(d) })
	end := len(s.bars)
	if n > 0 && idx+n < end {
		end = idx + n
	}
	return &PriceSeries{symbol: s.symbol, bars: s.bars[idx:end]}
}

// Closes returns close prices oldest first
func (s *PriceSeries) Closes() []float64 {
	return s.column(func(b contracts.Bar) float64 { return b.Close })
}

// Highs returns high prices oldest first
func (s *PriceSeries) Highs() []float64 {
	return s.column(func(b contracts.Bar) float64 { return b.High })
}

// Lows returns low prices oldest first
func (s *PriceSeries) Lows() []float64 {
	return s.column(func(b contracts.Bar) float64 { return b.Low })
}

// Volumes returns volumes oldest first
func (s *PriceSeries) Volumes() []float64 {
	return s.column(func(b contracts.Bar) float64 { return b.Volume })
}

func (s *PriceSeries) column(f func(contracts.Bar) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = f(b)
	}
	return out
}

// Dates returns bar dates oldest first
func (s *PriceSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Date
	}
	return out
}
