package s2_signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func bar(i int, o, h, l, c, v float64) contracts.Bar {
	return contracts.Bar{Date: day0.AddDate(0, 0, i), Open: o, High: h, Low: l, Close: c, Volume: v}
}

// closesSeries builds a tight-range series from closes with constant volume
func closesSeries(t *testing.T, closes []float64, volume float64) *s0_data.PriceSeries {
	t.Helper()
	bars := make([]contracts.Bar, len(closes))
	for i, c := range closes {
		bars[i] = bar(i, c, c+0.2, c-0.2, c, volume)
	}
	return series(t, bars)
}

func series(t *testing.T, bars []contracts.Bar) *s0_data.PriceSeries {
	t.Helper()
	s, err := s0_data.NewPriceSeries("TEST", bars)
	require.NoError(t, err)
	return s
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func flat(n int, v float64) []float64 { return linear(n, v, 0) }
