package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gdpillet/gdpillet-trailmates/internal/apperror"
)

// Metrics owns a private registry so tests can build as many instances as they like.
type Metrics struct {
	registry         *prometheus.Registry
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	routeSearches    prometheus.Counter
	draftWrites      *prometheus.CounterVec
	eventSubmissions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		routeSearches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trailmates_route_searches_total",
			Help: "Route catalog filter/sort evaluations",
		}),
		draftWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trailmates_draft_writes_total",
			Help: "Event draft persistence attempts by outcome",
		}, []string{"outcome"}),
		eventSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trailmates_event_submissions_total",
			Help: "Event wizard submissions by outcome",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.requestDuration,
		m.requestTotal,
		m.routeSearches,
		m.draftWrites,
		m.eventSubmissions,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RouteSearch() {
	if m == nil {
		return
	}
	m.routeSearches.Inc()
}

func (m *Metrics) DraftWrite(ok bool) {
	if m == nil {
		return
	}
	m.draftWrites.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) EventSubmission(outcome string) {
	if m == nil {
		return
	}
	m.eventSubmissions.WithLabelValues(outcome).Inc()
}

// Middleware records request count and latency keyed by the matched route pattern.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = apperror.FromError(err).Status
		}
		labels := prometheus.Labels{
			"method": c.Method(),
			"route":  c.Route().Path,
			"status": strconv.Itoa(status),
		}
		m.requestTotal.With(labels).Inc()
		m.requestDuration.With(labels).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
