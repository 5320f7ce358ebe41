// Package metrics records screening activity with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kalambet/talentscout/internal/screening"
)

// Recorder owns a private registry so tests and multiple servers in one
// process do not collide on the default one.
type Recorder struct {
	registry       *prometheus.Registry
	turnsTotal     *prometheus.CounterVec
	fallbacksTotal *prometheus.CounterVec
	engineRequests *prometheus.CounterVec
	engineDuration *prometheus.HistogramVec
	sessionsActive prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talentscout_turns_total",
				Help: "Screening turns by resulting step and outcome",
			},
			[]string{"step", "outcome"},
		),
		fallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talentscout_fallbacks_total",
				Help: "Templated fallbacks used instead of model output",
			},
			[]string{"kind"},
		),
		engineRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "talentscout_engine_requests_total",
				Help: "Chat requests sent to the text-generation backend",
			},
			[]string{"backend", "status"},
		),
		engineDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "talentscout_engine_request_duration_seconds",
				Help:    "Duration of chat requests to the text-generation backend",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "talentscout_sessions_active",
			Help: "Screening sessions currently held in memory",
		}),
	}
}

// ObserveTurn counts one screening turn.
func (r *Recorder) ObserveTurn(step screening.StepName, outcome screening.Outcome) {
	r.turnsTotal.WithLabelValues(string(step), string(outcome)).Inc()
}

// ObserveFallback counts one templated fallback of the given kind.
func (r *Recorder) ObserveFallback(kind string) {
	r.fallbacksTotal.WithLabelValues(kind).Inc()
}

// ObserveEngineRequest records a chat call to backend.
func (r *Recorder) ObserveEngineRequest(backend string, ok bool, d time.Duration) {
	status := "success"
	if !ok {
		status = "error"
	}
	r.engineRequests.WithLabelValues(backend, status).Inc()
	r.engineDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// SetActiveSessions sets the active sessions gauge.
func (r *Recorder) SetActiveSessions(n int) {
	r.sessionsActive.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
