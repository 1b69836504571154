package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokencount_analyses_total",
		Help: "Total document analyses by media type and outcome",
	}, []string{"media_type", "outcome"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokencount_analysis_duration_seconds",
		Help:    "Analysis duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"media_type"})

	TokensPerDocument = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tokencount_document_tokens",
		Help:    "Token count of successfully analyzed documents",
		Buckets: prometheus.ExponentialBuckets(16, 4, 10),
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokencount_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tokencount_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// ObserveAnalysis records one analysis attempt.
func ObserveAnalysis(mediaType, outcome string, elapsed time.Duration) {
	AnalysesTotal.WithLabelValues(mediaType, outcome).Inc()
	AnalysisDuration.WithLabelValues(mediaType).Observe(elapsed.Seconds())
}

// ObserveTokens records the token count of a stored document.
func ObserveTokens(count int) {
	if count < 0 {
		count = 0
	}
	TokensPerDocument.Observe(float64(count))
}

// ObserveRequest records a completed HTTP request.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
