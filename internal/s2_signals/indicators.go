package s2_signals

import (
	"math"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// 순수 수치 함수. 입력은 오래된 값 → 최근 값 순서.
// ok=false 는 데이터가 부족하다는 뜻이며 호출자는 중립(0)으로 처리한다.

// SMA returns the simple mean of the last n values
func SMA(values []float64, n int) (float64, bool) {
	if n <= 0 || len(values) < n {
		return 0, false
	}
	var sum float64
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n), true
}

// StdDev returns the population standard deviation of the last n values
func StdDev(values []float64, n int) (float64, bool) {
	mean, ok := SMA(values, n)
	if !ok {
		return 0, false
	}
	var ss float64
	for _, v := range values[len(values)-n:] {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n)), true
}

// EMA returns the exponential moving average seeded with the SMA of the first n values
func EMA(values []float64, n int) (float64, bool) {
	seed, ok := SMA(values[:min(n, len(values))], n)
	if !ok {
		return 0, false
	}
	k := 2 / float64(n+1)
	ema := seed
	for _, v := range values[n:] {
		ema = v*k + ema*(1-k)
	}
	return ema, true
}

// RSI returns Wilder's relative strength index. Needs period+1 closes.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		ch := closes[i] - closes[i-1]
		if ch > 0 {
			gain += ch
		} else {
			loss -= ch
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	// Wilder smoothing over the rest of the window
	for i := period + 1; i < len(closes); i++ {
		ch := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if ch > 0 {
			g = ch
		} else {
			l = -ch
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50, true
		}
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// TrueRange of bar b given the previous close
func TrueRange(b contracts.Bar, prevClose float64) float64 {
	return math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
}

// ATR returns the mean true range of the last period bars. Needs period+1 bars.
func ATR(bars []contracts.Bar, period int) (float64, bool) {
	if period <= 0 || len(bars) < period+1 {
		return 0, false
	}
	var sum float64
	for i := len(bars) - period; i < len(bars); i++ {
		sum += TrueRange(bars[i], bars[i-1].Close)
	}
	return sum / float64(period), true
}

// MinMax returns the lowest and highest of the last n values
func MinMax(values []float64, n int) (lo, hi float64, ok bool) {
	if n <= 0 || len(values) < n {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values[len(values)-n:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, true
}
