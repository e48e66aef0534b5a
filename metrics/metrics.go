// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/polls/middleware"
	"github.com/danielhkuo/polls/models"
)

const namespace = "polls"

// Metrics holds the Prometheus collectors for the server
type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	VotesCast       *prometheus.CounterVec
	VotesMoved      prometheus.Counter
	VotesRejected   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a private registry. When db is non-nil its
// connection pool stats are exported too.
func New(db *sql.DB) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		reg.MustRegister(collectors.NewDBStatsCollector(db, namespace))
	}

	factory := promauto.With(reg)
	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		VotesCast: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_cast_total",
				Help:      "Votes recorded, by vote scope",
			},
			[]string{"scope"},
		),
		VotesMoved: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_moved_total",
				Help:      "Votes removed from another question under the global vote scope",
			},
		),
		VotesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_rejected_total",
				Help:      "Votes refused, by reason",
			},
			[]string{"reason"},
		),
		registry: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument counts and times requests for a route pattern
func (m *Metrics) Instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &middleware.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

		next(rec, r)

		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(route, r.Method, strconv.Itoa(rec.Status)).Inc()
	}
}

// VoteCast records an accepted vote and how many other questions lost it
func (m *Metrics) VoteCast(scope models.VoteScope, movedFrom int) {
	m.VotesCast.WithLabelValues(string(scope)).Inc()
	if movedFrom > 0 {
		m.VotesMoved.Add(float64(movedFrom))
	}
}

// VoteRejected records a refused vote
func (m *Metrics) VoteRejected(reason string) {
	m.VotesRejected.WithLabelValues(reason).Inc()
}
