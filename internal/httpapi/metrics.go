package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics bundles the process-level counters/histograms the HTTP layer
// exposes at GET /metrics, grounded on the same CounterVec/HistogramVec/
// Gauge shape the Prometheus client library's own consumers use.
type metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runningBrowsers prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "browsion_http_requests_total",
			Help: "Total HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "browsion_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		runningBrowsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "browsion_running_browsers",
			Help: "Number of profiles with a live browser process.",
		}),
	}
	prometheus.MustRegister(m.requests, m.requestDuration, m.runningBrowsers)
	return m
}

// middleware records request count and latency for every route.
func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func (s *Server) metricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		s.metrics.runningBrowsers.Set(float64(len(s.manager.Running())))
		h.ServeHTTP(c.Writer, c.Request)
	}
}
