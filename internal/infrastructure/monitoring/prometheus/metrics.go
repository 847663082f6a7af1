// Package prometheus registers and exposes the engine's operational metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every metric the engine emits.  One instance is created at
// startup and injected into the services that record to it.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP layer
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Matching engine
	MatchRunsTotal     *prometheus.CounterVec
	MatchRunDuration   prometheus.Histogram
	MatchesCreated     prometheus.Counter
	BatchApplicants    *prometheus.CounterVec
	EmbeddingDegraded  prometheus.Counter
	EmbeddingCacheHits prometheus.Counter

	// Heatmap
	HeatmapRequestsTotal *prometheus.CounterVec
	HeatmapCellCount     prometheus.Histogram
}

var httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// NewMetrics registers all engine metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchgrid_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "matchgrid_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path"}),
		MatchRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchgrid_match_runs_total",
			Help: "Match runs by kind (single|batch) and outcome.",
		}, []string{"kind", "outcome"}),
		MatchRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchgrid_match_run_duration_seconds",
			Help:    "Duration of a single applicant's scoring run.",
			Buckets: httpDurationBuckets,
		}),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchgrid_matches_created_total",
			Help: "Match records persisted.",
		}),
		BatchApplicants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchgrid_batch_applicants_total",
			Help: "Applicants processed in batch runs by outcome (ok|failed).",
		}, []string{"outcome"}),
		EmbeddingDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchgrid_embedding_degraded_total",
			Help: "Embeddings that degraded to a zero vector.",
		}),
		EmbeddingCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchgrid_embedding_cache_hits_total",
			Help: "Embedding requests served from cache.",
		}),
		HeatmapRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matchgrid_heatmap_requests_total",
			Help: "Heatmap requests by mode and outcome.",
		}, []string{"mode", "outcome"}),
		HeatmapCellCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matchgrid_heatmap_cell_count",
			Help:    "Non-empty cells per heatmap response.",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.MatchRunsTotal,
		m.MatchRunDuration,
		m.MatchesCreated,
		m.BatchApplicants,
		m.EmbeddingDegraded,
		m.EmbeddingCacheHits,
		m.HeatmapRequestsTotal,
		m.HeatmapCellCount,
	)
	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
