// Package metrics holds the Prometheus collectors of the game backend.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"serotonyl.ru/game-backend/internal/features/resources"
)

const namespace = "game"

// Metrics holds the collectors. Create it once per registry.
type Metrics struct {
	ClaimsTotal      *prometheus.CounterVec
	ResourcesGranted *prometheus.CounterVec
	RemindersSent    prometheus.Counter
	BotCommands      *prometheus.CounterVec
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	DBConnPoolStats  *prometheus.GaugeVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ClaimsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "daily_bonus",
				Name:      "claims_total",
				Help:      "Daily bonus claim attempts by outcome",
			},
			[]string{"outcome"},
		),
		ResourcesGranted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "daily_bonus",
				Name:      "resources_granted_total",
				Help:      "Resources credited by daily bonus claims",
			},
			[]string{"resource"},
		),
		RemindersSent: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "daily_bonus",
				Name:      "reminders_sent_total",
				Help:      "Streak reminders delivered to Telegram",
			},
		),
		BotCommands: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "bot",
				Name:      "commands_total",
				Help:      "Telegram commands handled",
			},
			[]string{"command"},
		),
		RequestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		DBConnPoolStats: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "db",
				Name:      "connection_pool",
				Help:      "Database connection pool statistics",
			},
			[]string{"stat"}, // total, idle, acquired, max
		),
	}
}

// ObserveClaim records one claim attempt. grant is zero for rejected claims.
func (m *Metrics) ObserveClaim(outcome string, grant resources.Bundle) {
	m.ClaimsTotal.WithLabelValues(outcome).Inc()
	m.ResourcesGranted.WithLabelValues("food").Add(float64(grant.Food))
	m.ResourcesGranted.WithLabelValues("gold").Add(float64(grant.Gold))
	m.ResourcesGranted.WithLabelValues("wood").Add(float64(grant.Wood))
	m.ResourcesGranted.WithLabelValues("stone").Add(float64(grant.Stone))
}

// ObserveReminders adds n delivered reminders.
func (m *Metrics) ObserveReminders(n int) {
	m.RemindersSent.Add(float64(n))
}

// ObserveCommand counts one handled bot command.
func (m *Metrics) ObserveCommand(command string) {
	m.BotCommands.WithLabelValues(command).Inc()
}

// PoolStats is the part of *pgxpool.Stat the pool gauge reads.
type PoolStats interface {
	TotalConns() int32
	IdleConns() int32
	AcquiredConns() int32
	MaxConns() int32
}

// ObservePool copies the pool statistics into the gauge.
func (m *Metrics) ObservePool(s PoolStats) {
	m.DBConnPoolStats.WithLabelValues("total").Set(float64(s.TotalConns()))
	m.DBConnPoolStats.WithLabelValues("idle").Set(float64(s.IdleConns()))
	m.DBConnPoolStats.WithLabelValues("acquired").Set(float64(s.AcquiredConns()))
	m.DBConnPoolStats.WithLabelValues("max").Set(float64(s.MaxConns()))
}

// Middleware tracks count, latency and in-flight requests per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
