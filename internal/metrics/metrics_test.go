package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

func TestObserveBatch(t *testing.T) {
	r := New()
	r.ObserveBatch(contracts.BatchSummary{Strategy: "momentum", Scored: 3, NoSignal: 2, Duration: time.Second})
	r.ObserveBatch(contracts.BatchSummary{Strategy: "momentum", Scored: 1})

	assert.Equal(t, 4.0, testutil.ToFloat64(r.BatchResults.WithLabelValues("momentum", "scored")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.BatchResults.WithLabelValues("momentum", "no_signal")))
}

func TestRegimeAndOutcomes(t *testing.T) {
	r := New()
	r.SetRegime(contracts.MarketHealth{Status: contracts.MarketNeutral, Multiplier: 0.5, Healthy: 1})
	r.ObserveOutcomes([]contracts.TradeOutcome{
		{Strategy: "momentum", Status: contracts.StatusSuccess},
		{Strategy: "momentum", Status: contracts.StatusSuccess},
		{Strategy: "momentum", Status: contracts.StatusNoFill},
	})

	assert.Equal(t, 0.5, testutil.ToFloat64(r.RegimeScale))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Outcomes.WithLabelValues("momentum", "success")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.ObserveStage(contracts.StageSignals, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "scorer_stage_duration_seconds")
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveBatch(contracts.BatchSummary{Scored: 1})
		r.SetRegime(contracts.MarketHealth{})
		r.ObserveOutcomes([]contracts.TradeOutcome{{}})
		r.ObserveStage(contracts.StageData, time.Second)
	})
}
