// Package metrics provides Prometheus metric collection and exposition.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers the service's Prometheus metrics.
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
	dueQueries      prometheus.Counter
	dueListed       prometheus.Counter
	completions     prometheus.Counter
	storeErrors     prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nexttrack_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nexttrack_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		dueQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nexttrack_due_queries_total",
			Help: "Due-action list queries served.",
		}),
		dueListed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nexttrack_due_opportunities_listed_total",
			Help: "Due opportunities returned across all queries.",
		}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nexttrack_action_completions_total",
			Help: "Accepted action completions.",
		}),
		storeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nexttrack_store_errors_total",
			Help: "Store-level failures surfaced to callers.",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestDuration,
		c.dueQueries,
		c.dueListed,
		c.completions,
		c.storeErrors,
	)

	return c
}

// RecordHTTPStatus counts a response by status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration observes one request's duration.
func (c *Collector) RecordRequestDuration(d time.Duration) {
	c.requestDuration.Observe(d.Seconds())
}

// RecordDueQuery counts a served due-action query and its result size.
func (c *Collector) RecordDueQuery(count int) {
	c.dueQueries.Inc()
	c.dueListed.Add(float64(count))
}

// RecordCompletion counts an accepted action completion.
func (c *Collector) RecordCompletion() {
	c.completions.Inc()
}

// RecordStoreError counts a store-level failure.
func (c *Collector) RecordStoreError() {
	c.storeErrors.Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware returns an HTTP middleware that records status codes and
// request durations for every response.
func (c *Collector) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			c.RecordHTTPStatus(rec.statusCode)
			c.RecordRequestDuration(time.Since(start))
		})
	}
}

// statusRecorder captures the response status for the metrics middleware.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}
