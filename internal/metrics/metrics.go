// Package metrics provides Prometheus metrics for the value engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// Error stages
const (
	StageConsume   = "consume"
	StageDecode    = "decode"
	StagePublish   = "publish"
	StageAck       = "ack"
	StageArchive   = "archive"
	StageCache     = "cache"
	StageBroadcast = "broadcast"
)

// Metrics collects value engine metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	ValuationsTotal    *prometheus.CounterVec
	ValueOutcomesTotal *prometheus.CounterVec
	ArbitragesTotal    *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	ValuationDuration  prometheus.Histogram
	WSClients          prometheus.Gauge
	CacheRequests      *prometheus.CounterVec
}

// New creates and registers the metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ValuationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "value_engine_valuations_total",
				Help: "Snapshots valued",
			},
			[]string{"sport"},
		),
		ValueOutcomesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "value_engine_value_outcomes_total",
				Help: "Outcomes with edge above the minimum threshold",
			},
			[]string{"sport", "outcome", "method"},
		),
		ArbitragesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "value_engine_arbitrages_total",
				Help: "Snapshots whose best prices form an arbitrage",
			},
			[]string{"sport"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "value_engine_valuation_errors_total",
				Help: "Errors by processing stage",
			},
			[]string{"stage"},
		),
		ValuationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "value_engine_valuation_duration_seconds",
				Help:    "Time to value, publish and broadcast one snapshot",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100µs to ~1.6s
			},
		),
		WSClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "value_engine_ws_clients",
				Help: "Connected WebSocket clients",
			},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "value_engine_analysis_cache_requests_total",
				Help: "Match context cache lookups by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.ValuationsTotal,
		m.ValueOutcomesTotal,
		m.ArbitragesTotal,
		m.ErrorsTotal,
		m.ValuationDuration,
		m.WSClients,
		m.CacheRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordValuation records one valued snapshot
func (m *Metrics) RecordValuation(v models.Valuation, minEdgePct float64, elapsed time.Duration) {
	m.ValuationsTotal.WithLabelValues(v.SportKey).Inc()
	m.ValuationDuration.Observe(elapsed.Seconds())

	for _, vo := range v.ValueOutcomes(minEdgePct) {
		m.ValueOutcomesTotal.WithLabelValues(v.SportKey, string(vo.Outcome), string(vo.Method)).Inc()
	}
	if v.Arbitrage.IsArbitrage {
		m.ArbitragesTotal.WithLabelValues(v.SportKey).Inc()
	}
}

// RecordError counts an error at a processing stage
func (m *Metrics) RecordError(stage string) {
	m.ErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordCache counts a cache lookup as hit, miss or error
func (m *Metrics) RecordCache(result string) {
	m.CacheRequests.WithLabelValues(result).Inc()
}

// SetClients updates the connected WebSocket client gauge
func (m *Metrics) SetClients(n int) {
	m.WSClients.Set(float64(n))
}
