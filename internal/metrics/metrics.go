// Package metrics exposes Prometheus collectors for the store and the HTTP
// surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"teambudget/internal/engine"
)

const namespace = "teambudget"

// Metrics holds every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	mutations       *prometheus.CounterVec
	computeDuration prometheus.Histogram
	persistFailures *prometheus.CounterVec
	bankBalance     prometheus.Gauge
	outstanding     prometheus.Gauge
	players         prometheus.Gauge
	perPlayerShare  prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors. Go runtime and process collectors are
// included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_mutations_total",
			Help:      "Applied store mutations by operation.",
		}, []string{"op"}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_mutation_duration_seconds",
			Help:      "Time spent applying a mutation and recomputing.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_persist_failures_total",
			Help:      "Mutations whose snapshot could not be persisted.",
		}, []string{"op"}),
		bankBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bank_balance",
			Help:      "Recorded income minus recorded expenses.",
		}),
		outstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outstanding_total",
			Help:      "Sum of amounts still owed by the roster.",
		}),
		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players",
			Help:      "Number of players on the roster.",
		}),
		perPlayerShare: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "per_player_share",
			Help:      "Team expense share owed by each player.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	m.registry.MustRegister(
		m.mutations, m.computeDuration, m.persistFailures,
		m.bankBalance, m.outstanding, m.players, m.perPlayerShare,
		m.httpRequests, m.httpDuration,
	)
	if withRuntime {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveMutation records a successful mutation and the resulting totals.
func (m *Metrics) ObserveMutation(op string, elapsed time.Duration, r engine.Result) {
	m.mutations.WithLabelValues(op).Inc()
	m.computeDuration.Observe(elapsed.Seconds())
	m.Observe(r)
}

// Observe sets the solvency gauges from r.
func (m *Metrics) Observe(r engine.Result) {
	m.bankBalance.Set(r.Actuals.BankBalance)
	m.outstanding.Set(r.TotalOutstanding)
	m.players.Set(float64(r.PlayerCount))
	m.perPlayerShare.Set(r.PerPlayerShare)
}

func (m *Metrics) PersistFailed(op string) {
	m.persistFailures.WithLabelValues(op).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
