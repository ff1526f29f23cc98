// Package metrics exposes the Prometheus collectors the service records into
// and the handler that serves them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ibmentor_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ibmentor_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	gatewayCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ibmentor_gateway_calls_total",
		Help: "LLM gateway calls by model and outcome.",
	}, []string{"model", "outcome"})

	gatewayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ibmentor_gateway_call_duration_seconds",
		Help:    "LLM gateway call latency.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
	})

	parseFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ibmentor_parse_fallbacks_total",
		Help: "Structured model outputs that fell back to a default payload.",
	}, []string{"kind"})

	quotaRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ibmentor_quota_rejections_total",
		Help: "Requests rejected by the daily usage limiter.",
	})
)

// ObserveGatewayCall records one chat/embeddings round trip.
func ObserveGatewayCall(model string, ok bool, d time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	gatewayCalls.WithLabelValues(model, outcome).Inc()
	gatewayDuration.Observe(d.Seconds())
}

// CountParseFallback records that a normalizer returned its fallback payload.
// kind is "flashcards", "essay_feedback" or "model_answer".
func CountParseFallback(kind string) {
	parseFallbacks.WithLabelValues(kind).Inc()
}

// CountQuotaRejection records a 429 from the usage limiter.
func CountQuotaRejection() {
	quotaRejections.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
