package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/api/handlers"
	"github.com/wonny/aegis-scorer/internal/audit"
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/internal/data/repos"
	"github.com/wonny/aegis-scorer/internal/metrics"
	"github.com/wonny/aegis-scorer/internal/regime"
	"github.com/wonny/aegis-scorer/internal/s0_data"
	"github.com/wonny/aegis-scorer/internal/strategyconfig"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func indexBars(n int) []contracts.Bar {
	bars := make([]contracts.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = contracts.Bar{Date: day0.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1e7}
	}
	return bars
}

func newTestRouter(t *testing.T) (http.Handler, *repos.MemorySignalRepository) {
	t.Helper()
	log := logger.NewNop()
	cfg := strategyconfig.Default()

	src := s0_data.NewMemorySource()
	src.Put("SPY", indexBars(80))
	src.Put("QQQ", indexBars(80))

	signals := repos.NewMemorySignalRepository()
	outcomes := repos.NewMemoryOutcomeRepository()
	gate := regime.NewGate(src, cfg.Regime, nil, log)

	return NewRouter(Handlers{
		Pipeline: handlers.NewPipelineHandler(signals, gate, "momentum", log),
		Grading:  handlers.NewGradingHandler(audit.NewAnalyzer(signals, outcomes, log), nil, "momentum", log),
		Metrics:  metrics.New(),
	}, log), signals
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGetSignals(t *testing.T) {
	h, signals := newTestRouter(t)
	date := day0.AddDate(0, 0, 10)
	require.NoError(t, signals.Save(context.Background(), []contracts.Signal{
		{Symbol: "AAA", Date: date, Strategy: "momentum", Score: 20},
		{Symbol: "BBB", Date: date, Strategy: "momentum", Score: 40},
		{Symbol: "CCC", Date: date, Strategy: "mean_reversion", Score: 50},
	}))

	rec := get(t, h, "/api/signals?date=2024-03-11")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.SignalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "momentum", resp.Strategy)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "BBB", resp.Signals[0].Symbol)
}

func TestGetSignalsBadDate(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := get(t, h, "/api/signals?date=11-03-2024")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRegime(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := get(t, h, "/api/regime?date=2024-05-19")
	require.Equal(t, http.StatusOK, rec.Code)

	var health contracts.MarketHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, contracts.MarketBullish, health.Status)
	assert.Equal(t, 2, health.Known)
}

func TestGetGradingEmpty(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := get(t, h, "/api/grading?period=1M")
	require.Equal(t, http.StatusOK, rec.Code)

	var report audit.GradingReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "momentum", report.Strategy)
	assert.Zero(t, report.Overall.Samples)
}

func TestGetLatestReportWithoutStore(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := get(t, h, "/api/grading/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
