package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agrishield",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agrishield",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Analysis and selection metrics
	AnalysisRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "analysis",
		Name:      "requests_total",
		Help:      "Vegetation index analyses by outcome",
	}, []string{"outcome"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agrishield",
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "Round trip to the analysis endpoint",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	BoundaryChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "selection",
		Name:      "boundary_changes_total",
		Help:      "Selection boundary notifications by draw event kind",
	}, []string{"kind"})

	GeocodeLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "geocoder",
		Name:      "lookups_total",
		Help:      "Place searches by outcome",
	}, []string{"outcome"})

	NewsFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "news",
		Name:      "fetches_total",
		Help:      "News provider attempts by provider and outcome",
	}, []string{"provider", "outcome"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrishield",
		Subsystem: "session",
		Name:      "active",
		Help:      "Open map sessions",
	})

	SurveysStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "fields",
		Name:      "surveys_started_total",
		Help:      "Field survey workflows started",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrishield",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrishield",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrishield",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrishield",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})

	DBPoolEmptyAcquires = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agrishield",
		Subsystem: "db",
		Name:      "pool_empty_acquires_total",
		Help:      "Total times a connection had to be established when acquiring from pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat read by UpdateDBPoolMetrics.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
	EmptyAcquireCount() int64
}

var lastEmptyAcquires int64

// UpdateDBPoolMetrics copies pool gauges from a pgxpool.Stat snapshot.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
	if n := s.EmptyAcquireCount(); n > lastEmptyAcquires {
		DBPoolEmptyAcquires.Add(float64(n - lastEmptyAcquires))
		lastEmptyAcquires = n
	}
}
