package contracts

import "time"

// Bar is one daily OHLCV observation
// ⭐ SSOT: 가격 데이터 구조는 여기서만 정의
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Contains reports whether price traded inside the bar's range
func (b Bar) Contains(price float64) bool {
	return b.Low <= price && price <= b.High
}

// DateKey formats a trading date the way it is stored and cached
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
