package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitFailure},
		{"upstream", fmt.Errorf("load: %w", contracts.ErrUpstreamUnavailable), ExitUnavailable},
		{"config sentinel", fmt.Errorf("%w: bad file", errConfig), ExitConfig},
		{"validation", fmt.Errorf("wrap: %w", strategyconfig.ValidationError{Field: "batch.workers", Message: "must be positive"}), ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestParseDateFlag(t *testing.T) {
	fallback := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	got, err := parseDateFlag("date", "", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	got, err = parseDateFlag("date", "2024-05-15", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDateFlag("date", "15/05/2024", fallback)
	assert.ErrorContains(t, err, "--date")
}

func TestStrategiesFor(t *testing.T) {
	cfg := strategyconfig.Default()

	all, err := strategiesFor(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, cfg.StrategyNames(), all)

	one, err := strategiesFor(cfg, "momentum")
	require.NoError(t, err)
	assert.Equal(t, []string{"momentum"}, one)

	_, err = strategiesFor(cfg, "nope")
	assert.Error(t, err)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"A", "B"}, []int{4, 3}, [][]string{{"x", "y"}})

	assert.Equal(t, "A     B\n"+"─────────\n"+"x     y\n", buf.String())
}

func TestCheckSymbol(t *testing.T) {
	day0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := func(n int) []contracts.Bar {
		out := make([]contracts.Bar, n)
		for i := range out {
			out[i] = contracts.Bar{Date: day0.AddDate(0, 0, i), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1000}
		}
		return out
	}

	src := s0_data.NewMemorySource()
	src.Put("OK", bars(30))
	src.Put("SHORT", bars(5))
	src.Put("STALE", bars(20))
	dup := bars(30)
	dup[25].Date = dup[24].Date
	src.Put("DUP", dup)

	asOf := day0.AddDate(0, 0, 29)
	ctx := context.Background()

	tests := []struct {
		symbol string
		status string
	}{
		{"OK", "ok"},
		{"SHORT", "short"},
		{"STALE", "stale"},
		{"DUP", "integrity"},
		{"NONE", "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			c := checkSymbol(ctx, src, tt.symbol, asOf, 15)
			assert.Equal(t, tt.status, c.Status, c.Detail)
		})
	}
}

func TestScoreDatesSkipsWeekends(t *testing.T) {
	fri := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	dates := scoreDates(fri, fri.AddDate(0, 0, 4)) // 금 ~ 화

	require.Len(t, dates, 3)
	assert.Equal(t, "2024-05-03", contracts.DateKey(dates[0]))
	assert.Equal(t, "2024-05-06", contracts.DateKey(dates[1]))
	assert.Equal(t, "2024-05-07", contracts.DateKey(dates[2]))

	assert.Empty(t, scoreDates(fri, fri.AddDate(0, 0, -1)))
}

func TestScoreDatesFromFlags(t *testing.T) {
	today := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	reset := func() { scoreDate, scoreFrom, scoreTo = "", "", "" }
	t.Cleanup(reset)

	tests := []struct {
		name       string
		date       string
		from, to   string
		want       []string
		wantConfig bool
	}{
		{name: "default today", want: []string{"2024-05-15"}},
		{name: "single date", date: "2024-05-10", want: []string{"2024-05-10"}},
		{name: "range", from: "2024-05-09", to: "2024-05-13", want: []string{"2024-05-09", "2024-05-10", "2024-05-13"}},
		{name: "from only", from: "2024-05-14", want: []string{"2024-05-14"}},
		{name: "to without from", to: "2024-05-14", wantConfig: true},
		{name: "weekend only", from: "2024-05-11", to: "2024-05-12", wantConfig: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset()
			scoreDate, scoreFrom, scoreTo = tt.date, tt.from, tt.to

			dates, err := scoreDatesFromFlags(today)
			if tt.wantConfig {
				require.Error(t, err)
				assert.Equal(t, ExitConfig, ExitCode(err))
				return
			}
			require.NoError(t, err)
			got := make([]string, len(dates))
			for i, d := range dates {
				got[i] = contracts.DateKey(d)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
