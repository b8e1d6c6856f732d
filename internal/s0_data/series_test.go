package s0_data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func makeBars(n int) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = contracts.Bar{
			Date:   day0.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestNewPriceSeries_Integrity(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b []contracts.Bar)
		wantIdx int
	}{
		{"duplicate date", func(b []contracts.Bar) { b[3].Date = b[2].Date }, 3},
		{"decreasing date", func(b []contracts.Bar) { b[4].Date = b[1].Date }, 4},
		{"high below low", func(b []contracts.Bar) { b[0].High = b[0].Low - 1 }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := makeBars(6)
			tt.mutate(bars)

			_, err := NewPriceSeries("AAPL", bars)
			require.Error(t, err)
			assert.True(t, errors.Is(err, contracts.ErrDataIntegrity))

			var ie *contracts.IntegrityError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.wantIdx, ie.Index)
		})
	}
}

func TestPriceSeries_Views(t *testing.T) {
	bars := makeBars(10)
	s, err := NewPriceSeries("AAPL", bars)
	require.NoError(t, err)

	// caller mutation does not leak in
	bars[0].Close = -1
	assert.Equal(t, 100.0, s.At(0).Close)

	assert.Equal(t, 10, s.Len())
	assert.Equal(t, 109.0, s.Last().Close)

	tail := s.Tail(3)
	assert.Equal(t, []float64{107, 108, 109}, tail.Closes())
	assert.Same(t, s, s.Tail(20))
	assert.Equal(t, 0, s.Tail(0).Len())

	asOf := s.AsOf(day0.AddDate(0, 0, 4))
	assert.Equal(t, 5, asOf.Len())
	assert.True(t, asOf.Last().Date.Equal(day0.AddDate(0, 0, 4)))

	// between two bars
	assert.Equal(t, 5, s.AsOf(day0.AddDate(0, 0, 4).Add(12*time.Hour)).Len())
	assert.Equal(t, 0, s.AsOf(day0.AddDate(0, 0, -1)).Len())

	after := s.After(day0.AddDate(0, 0, 4), 3)
	assert.Equal(t, []float64{105, 106, 107}, after.Closes())
	assert.Equal(t, 5, s.After(day0.AddDate(0, 0, 4), 0).Len())

	copied := s.Bars()
	copied[0].Close = 0
	assert.Equal(t, 100.0, s.At(0).Close)
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	m := NewMemorySource()
	m.Put("MSFT", makeBars(10))
	m.Put("AAPL", makeBars(3))

	symbols, err := m.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)

	got, err := m.GetBarsAsOf(ctx, "MSFT", day0.AddDate(0, 0, 5), 4)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.True(t, got[3].Date.Equal(day0.AddDate(0, 0, 5)))
	for _, b := range got {
		assert.False(t, b.Date.After(day0.AddDate(0, 0, 5)))
	}

	fwd, err := m.GetBarsAfter(ctx, "MSFT", day0.AddDate(0, 0, 5), 2)
	require.NoError(t, err)
	require.Len(t, fwd, 2)
	assert.True(t, fwd[0].Date.Equal(day0.AddDate(0, 0, 6)))
}
