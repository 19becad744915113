package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_engine",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "market_engine",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "market_engine",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Provider fetch / cache metrics ─────────────────────────────────────

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_engine",
		Subsystem: "fetch",
		Name:      "total",
		Help:      "Total provider fetch attempts per data kind.",
	}, []string{"kind", "status"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "market_engine",
		Subsystem: "fetch",
		Name:      "duration_seconds",
		Help:      "Duration of provider calls per data kind in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"kind"})

	LastLiveFetch = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "market_engine",
		Subsystem: "fetch",
		Name:      "last_live_timestamp",
		Help:      "Unix timestamp of the last successful live fetch per kind.",
	}, []string{"kind"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_engine",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Reading cache hits per data kind.",
	}, []string{"kind"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_engine",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Reading cache misses per data kind.",
	}, []string{"kind"})

	FallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_engine",
		Subsystem: "fetch",
		Name:      "fallback_total",
		Help:      "Fallback readings served per data kind.",
	}, []string{"kind"})
)

// ── Business metrics ───────────────────────────────────────────────────

var (
	SimulationPercentage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "market_engine",
		Subsystem: "business",
		Name:      "simulation_percentage",
		Help:      "Share of data sources currently serving fallback data.",
	})

	QuotesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "market_engine",
		Subsystem: "business",
		Name:      "quotes_issued_total",
		Help:      "Total swap quotes issued.",
	})

	QuotesExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "market_engine",
		Subsystem: "business",
		Name:      "quotes_expired_total",
		Help:      "Total swap executions rejected for quote expiry.",
	})
)
