// Package metrics exports cache, fetch, mutation and HTTP counters to
// Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory"

// Collector records workspace events. It satisfies inventory.Observer.
type Collector struct {
	cacheRequests *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them through promhttp.Handler.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		cacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Entity cache lookups by result.",
		}, []string{"kind", "result"}),
		invalidations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Entity cache invalidations.",
		}, []string{"kind"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_fetches_total",
			Help:      "Snapshot loads from the backend by outcome.",
		}, []string{"kind", "outcome"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_fetch_duration_seconds",
			Help:      "Snapshot load latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Form submissions by operation and outcome.",
		}, []string{"kind", "op", "outcome"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) CacheHit(kind string) {
	c.cacheRequests.WithLabelValues(kind, "hit").Inc()
}

func (c *Collector) CacheMiss(kind string) {
	c.cacheRequests.WithLabelValues(kind, "miss").Inc()
}

func (c *Collector) CacheInvalidated(kind string) {
	c.invalidations.WithLabelValues(kind).Inc()
}

func (c *Collector) Fetched(kind string, elapsed time.Duration, err error) {
	c.fetches.WithLabelValues(kind, outcome(err)).Inc()
	c.fetchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (c *Collector) Mutated(kind, op string, err error) {
	c.mutations.WithLabelValues(kind, op, outcome(err)).Inc()
}

// ObserveHTTP records one served request. Route is the matched pattern, not
// the raw path.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
