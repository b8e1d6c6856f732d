package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// Registry holds the scorer's Prometheus metrics.
// 모든 메서드는 nil receiver 에서 no-op (METRICS_ENABLED=false).
type Registry struct {
	reg *prometheus.Registry

	BatchResults  *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec
	StageDuration *prometheus.HistogramVec
	Outcomes      *prometheus.CounterVec
	RegimeScale   prometheus.Gauge
	RegimeHealthy prometheus.Gauge
}

// New creates and registers all metrics on a private registry
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		BatchResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorer_batch_results_total",
				Help: "Per-symbol batch results by strategy and result kind",
			},
			[]string{"strategy", "kind"},
		),

		BatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scorer_batch_duration_seconds",
				Help:    "Duration of one scoring batch",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"strategy"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scorer_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"stage"},
		),

		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scorer_trade_outcomes_total",
				Help: "Simulated trade outcomes by strategy and status",
			},
			[]string{"strategy", "status"},
		),

		RegimeScale: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "scorer_regime_multiplier",
				Help: "Latest market regime position multiplier (0.0 to 1.0)",
			},
		),

		RegimeHealthy: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "scorer_regime_healthy_indices",
				Help: "Number of healthy reference indices in the latest regime evaluation",
			},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.BatchResults,
		r.BatchDuration,
		r.StageDuration,
		r.Outcomes,
		r.RegimeScale,
		r.RegimeHealthy,
	)

	return r
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveBatch records a finished batch summary
func (r *Registry) ObserveBatch(s contracts.BatchSummary) {
	if r == nil {
		return
	}
	counts := map[contracts.ResultKind]int{
		contracts.ResultScored:         s.Scored,
		contracts.ResultNoSignal:       s.NoSignal,
		contracts.ResultVetoed:         s.Vetoed,
		contracts.ResultInvalidSetup:   s.InvalidSetup,
		contracts.ResultIntegrityError: s.IntegrityError,
		contracts.ResultFailed:         s.Failed,
	}
	for kind, n := range counts {
		if n > 0 {
			r.BatchResults.WithLabelValues(s.Strategy, string(kind)).Add(float64(n))
		}
	}
	r.BatchDuration.WithLabelValues(s.Strategy).Observe(s.Duration.Seconds())
}

// ObserveStage records one stage duration
func (r *Registry) ObserveStage(stage contracts.Stage, d time.Duration) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage.String()).Observe(d.Seconds())
}

// SetRegime records the latest market health
func (r *Registry) SetRegime(h contracts.MarketHealth) {
	if r == nil {
		return
	}
	r.RegimeScale.Set(h.Multiplier)
	r.RegimeHealthy.Set(float64(h.Healthy))
}

// ObserveOutcomes counts simulated outcomes
func (r *Registry) ObserveOutcomes(outcomes []contracts.TradeOutcome) {
	if r == nil {
		return
	}
	for _, o := range outcomes {
		r.Outcomes.WithLabelValues(o.Strategy, string(o.Status)).Inc()
	}
}
