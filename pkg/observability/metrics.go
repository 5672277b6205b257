package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Bus metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Queries         *prometheus.CounterVec

	// Business metrics
	NodesCreated   prometheus.Counter
	DragsCompleted *prometheus.CounterVec
	Exports        *prometheus.CounterVec
	ExportDuration *prometheus.HistogramVec
	ActiveSessions prometheus.Gauge
	Observers      prometheus.Gauge
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	// Use singleton pattern to avoid duplicate registration in tests
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by type and outcome",
		}, []string{"type", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Command handling time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries answered, by type and outcome",
		}, []string{"type", "status"}),
		NodesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_created_total",
			Help:      "Total number of ideas added",
		}),
		DragsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drags_completed_total",
			Help:      "Finished drags, split by whether they counted as a click",
		}, []string{"click"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Exports by format and outcome",
		}, []string{"format", "status"}),
		ExportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Export rendering time in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"format"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory",
		}),
		Observers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_observers",
			Help:      "Connected websocket observers",
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.CommandDuration,
		c.Queries,
		c.NodesCreated,
		c.DragsCompleted,
		c.Exports,
		c.ExportDuration,
		c.ActiveSessions,
		c.Observers,
	)

	globalCollector = c
	return globalCollector
}

// ResetForTesting resets the global collector for testing purposes
func ResetForTesting() {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	globalCollector = nil
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCommand implements the command bus metrics hook
func (c *Collector) ObserveCommand(cmdType string, elapsed time.Duration, err error) {
	c.Commands.WithLabelValues(cmdType, outcome(err)).Inc()
	c.CommandDuration.WithLabelValues(cmdType).Observe(elapsed.Seconds())
}

// ObserveQuery implements the query bus metrics hook
func (c *Collector) ObserveQuery(queryType string, _ time.Duration, err error) {
	c.Queries.WithLabelValues(queryType, outcome(err)).Inc()
}

// NodeCreated counts one added idea
func (c *Collector) NodeCreated() {
	c.NodesCreated.Inc()
}

// DragCompleted counts one finished drag
func (c *Collector) DragCompleted(wasClick bool) {
	c.DragsCompleted.WithLabelValues(strconv.FormatBool(wasClick)).Inc()
}

// SessionOpened tracks a new live session
func (c *Collector) SessionOpened() {
	c.ActiveSessions.Inc()
}

// SessionClosed tracks a discarded or expired session
func (c *Collector) SessionClosed() {
	c.ActiveSessions.Dec()
}

// ExportFinished records one export attempt
func (c *Collector) ExportFinished(format string, elapsed time.Duration, err error) {
	c.Exports.WithLabelValues(format, outcome(err)).Inc()
	if err == nil {
		c.ExportDuration.WithLabelValues(format).Observe(elapsed.Seconds())
	}
}

// ObserverConnected tracks a websocket observer joining or leaving
func (c *Collector) ObserverConnected(delta int) {
	c.Observers.Add(float64(delta))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// MetricsMiddleware adds Prometheus metrics to HTTP requests
func MetricsMiddleware(collector *Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			// The pattern is only complete once routing has finished
			routePattern := "unknown"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				routePattern = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			collector.HTTPRequests.WithLabelValues(r.Method, routePattern, strconv.Itoa(status)).Inc()
			collector.HTTPDuration.WithLabelValues(r.Method, routePattern).Observe(time.Since(start).Seconds())
		})
	}
}
