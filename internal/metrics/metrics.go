// Package metrics exports collection and HTTP counters to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "records"

// Collector implements entity.Observer and records gin requests.
type Collector struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	size       *prometheus.GaugeVec
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// New creates a Collector and registers it with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Store operations by collection and kind.",
		}, []string{"collection", "op"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failures_total",
			Help:      "Store operations that returned an error.",
		}, []string{"collection", "op"}),
		size: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_size",
			Help:      "Records currently held per collection.",
		}, []string{"collection"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
	for _, col := range []prometheus.Collector{c.operations, c.failures, c.size, c.requests, c.latency} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe records one store operation.
func (c *Collector) Observe(collection, op string, size int, err error) {
	c.operations.WithLabelValues(collection, op).Inc()
	if err != nil {
		c.failures.WithLabelValues(collection, op).Inc()
	}
	c.size.WithLabelValues(collection).Set(float64(size))
}

// Middleware counts requests per matched route.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.requests.WithLabelValues(route, method, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.latency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
