package jobs

import "time"

// TradingDay returns the as-of date for a run at now: the calendar date in
// now's location at UTC midnight, rolled back from weekends to Friday.
// 공휴일은 고려하지 않는다 (해당 날짜 봉이 없으면 종목별 no_signal).
func TradingDay(now time.Time) time.Time {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, -2)
	}
	return d
}
