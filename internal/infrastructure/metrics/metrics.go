// Package metrics exposes Prometheus counters for the referral, earning and payout lifecycle.
package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/affiliate/backend/internal/domain/earning"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/domain/referral"
	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LifecycleMetrics counts lifecycle events and HTTP traffic on a private registry
type LifecycleMetrics struct {
	registry *prometheus.Registry

	events              *prometheus.CounterVec
	referralTransitions *prometheus.CounterVec
	earningTransitions  *prometheus.CounterVec
	payoutTransitions   *prometheus.CounterVec
	earningsCreated     *prometheus.CounterVec
	payoutAmount        *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates the metric set under namespace and registers the Go and process collectors
func New(namespace string) *LifecycleMetrics {
	registry := prometheus.NewRegistry()
	m := &LifecycleMetrics{
		registry: registry,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_events_total",
			Help:      "Lifecycle events published, by type.",
		}, []string{"event_type"}),
		referralTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "referral",
			Name:      "status_transitions_total",
			Help:      "Referral status transitions.",
		}, []string{"from", "to"}),
		earningTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "earning",
			Name:      "status_transitions_total",
			Help:      "Earning status transitions.",
		}, []string{"from", "to"}),
		payoutTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "status_transitions_total",
			Help:      "Payout status transitions.",
		}, []string{"from", "to", "method"}),
		earningsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "earning",
			Name:      "created_amount_total",
			Help:      "Sum of created earning amounts, by source.",
		}, []string{"source"}),
		payoutAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "amount_total",
			Help:      "Sum of payout amounts entering each status, by payment method.",
		}, []string{"status", "method"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.events,
		m.referralTransitions,
		m.earningTransitions,
		m.payoutTransitions,
		m.earningsCreated,
		m.payoutAmount,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry
func (m *LifecycleMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBStats exports the connection pool statistics of db as go_sql_* series
func (m *LifecycleMetrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// Handler serves the registry in the Prometheus exposition format
func (m *LifecycleMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// EventTypes subscribes to every lifecycle event; nil means all
func (m *LifecycleMetrics) EventTypes() []string {
	return nil
}

// Handle updates counters for a lifecycle event
func (m *LifecycleMetrics) Handle(_ context.Context, event shared.DomainEvent) error {
	m.events.WithLabelValues(event.EventType()).Inc()

	switch e := event.(type) {
	case *referral.ReferralStatusChangedEvent:
		m.referralTransitions.WithLabelValues(string(e.From), string(e.To)).Inc()
	case *earning.EarningCreatedEvent:
		m.earningsCreated.WithLabelValues(string(e.Source)).Add(e.Amount.InexactFloat64())
	case *earning.EarningStatusChangedEvent:
		m.earningTransitions.WithLabelValues(string(e.From), string(e.To)).Inc()
	case *payout.PayoutCreatedEvent:
		m.payoutAmount.WithLabelValues(string(payout.StatusPending), string(e.PaymentMethod)).Add(e.Amount.InexactFloat64())
	case *payout.PayoutStatusChangedEvent:
		m.payoutTransitions.WithLabelValues(string(e.From), string(e.To), string(e.PaymentMethod)).Inc()
		m.payoutAmount.WithLabelValues(string(e.To), string(e.PaymentMethod)).Add(e.Amount.InexactFloat64())
	}
	return nil
}

// GinMiddleware records request counts and latency by matched route
func (m *LifecycleMetrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

var _ shared.EventHandler = (*LifecycleMetrics)(nil)
