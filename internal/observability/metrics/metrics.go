// Package metrics registers Prometheus instruments for the HTTP surface and
// the permit lifecycle.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	permitOps     *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	refundsTotal  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permits_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "permits_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		permitOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permits_operations_total",
			Help: "Permit lifecycle operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		webhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "permits_talpa_events_total",
			Help: "Talpa order webhook events by type and outcome.",
		}, []string{"event_type", "outcome"}),
		refundsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "permits_refunds_created_total",
			Help: "Refunds created by permit updates and endings.",
		}),
	}
}

func (m *Metrics) RecordPermitOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.permitOps.WithLabelValues(operation, outcome(err)).Inc()
}

func (m *Metrics) RecordWebhookEvent(eventType string, err error) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, outcome(err)).Inc()
}

func (m *Metrics) RecordRefundCreated() {
	if m == nil {
		return
	}
	m.refundsTotal.Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// GinMiddleware records request counts and latency.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
