// Package metrics provides Prometheus metrics for the summarizer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "newssummarizer"

// Metrics holds the collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	articlesTotal *prometheus.CounterVec
	llmCalls      *prometheus.CounterVec
	llmDuration   prometheus.Histogram
	cacheTotal    *prometheus.CounterVec
	archiveTotal  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		),

		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		articlesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "articles_total",
				Help:      "Articles seen by the pipeline by outcome",
			},
			[]string{"outcome"},
		),

		llmCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_calls_total",
				Help:      "Calls to the summarization model by status",
			},
			[]string{"status"},
		),

		llmDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_call_duration_seconds",
				Help:      "Latency of summarization model calls in seconds",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
		),

		cacheTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Report cache lookups by result",
			},
			[]string{"result"},
		),

		archiveTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_uploads_total",
				Help:      "PDF archive uploads by status",
			},
			[]string{"status"},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRun records the outcome of a pipeline run.
func (m *Metrics) RecordRun(outcome string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordStage records how long a pipeline stage took.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordArticles adds n articles under outcome (fetched, kept, discarded, summarized, skipped).
func (m *Metrics) RecordArticles(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.articlesTotal.WithLabelValues(outcome).Add(float64(n))
}

// RecordLLMCall records a single model call.
func (m *Metrics) RecordLLMCall(err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.llmCalls.WithLabelValues(status).Inc()
	m.llmDuration.Observe(d.Seconds())
}

// RecordCache records a cache hit or miss.
func (m *Metrics) RecordCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}

// RecordArchive records an archive upload.
func (m *Metrics) RecordArchive(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.archiveTotal.WithLabelValues(status).Inc()
}
