// Package observability exposes Prometheus metrics for analysis runs and
// HTTP requests.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abunai/impact/internal/engine"
)

const metricsNamespace = "abunai"

// Run status label values.
const (
	StatusSuccess   = "success"
	StatusCancelled = "cancelled"
	StatusUpstream  = "upstream_error"
	StatusError     = "error"
)

// Metrics holds the analysis and HTTP collectors.
//
// Thread-safety: all methods are safe for concurrent use.
type Metrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	sourcesTotal    *prometheus.CounterVec
	skippedTotal    prometheus.Counter
	violationsTotal prometheus.Counter
	candidates      prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests. If reg is also a Gatherer, Handler
// serves it; otherwise Handler serves the default gatherer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total analysis runs by status",
		}, []string{"status"}),

		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Analysis run duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60},
		}, []string{"status"}),

		sourcesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "analysis",
			Name:      "sources_total",
			Help:      "Registered uncertainty sources by category",
		}, []string{"category"}),

		skippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "analysis",
			Name:      "skipped_entities_total",
			Help:      "Assumption entities that could not be classified",
		}),

		violationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "analysis",
			Name:      "violating_sequences_total",
			Help:      "Candidate sequences with confidentiality violations",
		}),

		candidates: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "analysis",
			Name:      "candidate_sequences",
			Help:      "Number of candidate action sequences per run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),

		gatherer: prometheus.DefaultGatherer,
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveRun records one analysis run. Implements engine.Observer.
func (m *Metrics) ObserveRun(res *engine.Result, elapsed time.Duration, err error) {
	status := RunStatus(err)
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(elapsed.Seconds())

	if err != nil || res == nil {
		return
	}
	for _, src := range res.Sources {
		m.sourcesTotal.WithLabelValues(src.Category.String()).Inc()
	}
	m.skippedTotal.Add(float64(len(res.Skipped)))
	m.violationsTotal.Add(float64(len(res.Violations)))
	m.candidates.Observe(float64(len(res.Candidates)))
}

// RunStatus maps a run error to its status label.
func RunStatus(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case engine.IsCancelled(err):
		return StatusCancelled
	case engine.IsUpstreamError(err):
		return StatusUpstream
	default:
		return StatusError
	}
}

// Middleware records request counts and durations. Requests that match no
// route are labelled "unmatched".
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
