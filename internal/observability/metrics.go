package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors used by the API and the reminder dispatcher.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	remindersSentTotal   *prometheus.CounterVec
	remindersFailedTotal *prometheus.CounterVec
	reminderCostTotal    *prometheus.CounterVec
	reminderSendDuration *prometheus.HistogramVec
	jobsInflight         *prometheus.GaugeVec
	jobsFinishedTotal    *prometheus.CounterVec
	jobsSweptTotal       prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rentalert",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rentalert",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		remindersSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rentalert",
				Name:      "reminders_sent_total",
				Help:      "Total number of rent reminders delivered successfully.",
			},
			[]string{"method"},
		),
		remindersFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rentalert",
				Name:      "reminders_failed_total",
				Help:      "Total number of rent reminders that failed to deliver.",
			},
			[]string{"method", "reason"},
		),
		reminderCostTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rentalert",
				Name:      "reminder_cost_total",
				Help:      "Accumulated provider cost of delivered reminders.",
			},
			[]string{"method"},
		),
		reminderSendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rentalert",
				Name:      "reminder_send_duration_seconds",
				Help:      "Provider send duration in seconds grouped by method.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"method"},
		),
		jobsInflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "rentalert",
				Name:      "reminder_jobs_inflight",
				Help:      "Current number of reminder jobs being processed grouped by method.",
			},
			[]string{"method"},
		),
		jobsFinishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rentalert",
				Name:      "reminder_jobs_finished_total",
				Help:      "Total number of reminder jobs that reached a terminal status.",
			},
			[]string{"method", "status"},
		),
		jobsSweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "rentalert",
				Name:      "reminder_jobs_swept_total",
				Help:      "Total number of finished reminder jobs removed from the registry.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.remindersSentTotal,
		m.remindersFailedTotal,
		m.reminderCostTotal,
		m.reminderSendDuration,
		m.jobsInflight,
		m.jobsFinishedTotal,
		m.jobsSweptTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncReminderSent(method string, cost float64) {
	if m == nil {
		return
	}
	label := normalizeMethod(method)
	m.remindersSentTotal.WithLabelValues(label).Inc()
	if cost > 0 {
		m.reminderCostTotal.WithLabelValues(label).Add(cost)
	}
}

func (m *Metrics) IncReminderFailed(method string, reason string) {
	if m == nil {
		return
	}
	reasonLabel := strings.TrimSpace(strings.ToLower(reason))
	if reasonLabel == "" {
		reasonLabel = "unknown"
	}
	m.remindersFailedTotal.WithLabelValues(normalizeMethod(method), reasonLabel).Inc()
}

func (m *Metrics) ObserveReminderSendDuration(method string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.reminderSendDuration.WithLabelValues(normalizeMethod(method)).Observe(seconds)
}

func (m *Metrics) IncJobsInFlight(method string) {
	if m == nil {
		return
	}
	m.jobsInflight.WithLabelValues(normalizeMethod(method)).Inc()
}

func (m *Metrics) DecJobsInFlight(method string) {
	if m == nil {
		return
	}
	m.jobsInflight.WithLabelValues(normalizeMethod(method)).Dec()
}

func (m *Metrics) IncJobFinished(method string, status string) {
	if m == nil {
		return
	}
	m.jobsFinishedTotal.WithLabelValues(normalizeMethod(method), strings.ToLower(strings.TrimSpace(status))).Inc()
}

func (m *Metrics) AddJobsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.jobsSweptTotal.Add(float64(n))
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeMethod(method string) string {
	normalized := strings.ToLower(strings.TrimSpace(method))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
