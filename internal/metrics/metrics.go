// Package metrics records API and query cache activity in a prometheus
// registry, written out in the textfile collector format.
package metrics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// Metrics holds the console's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheEvents     *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idops_api_requests_total",
			Help: "Backend API requests by method and response status (0 for transport failures)",
		}, []string{"method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idops_api_request_duration_seconds",
			Help:    "Backend API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		CacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idops_query_cache_events_total",
			Help: "Query cache hits, misses, shared fetches, retries and evictions",
		}, []string{"event"}),
	}

	registry.MustRegister(m.Requests, m.RequestDuration, m.CacheEvents)

	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ResponseInterceptor counts every backend response.
func (m *Metrics) ResponseInterceptor() ops.ResponseInterceptor {
	return func(_ context.Context, req *ops.Request, resp *ops.Response) error {
		m.Requests.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
		m.RequestDuration.WithLabelValues(req.Method).Observe(resp.Duration.Seconds())

		return nil
	}
}

// CacheObserver counts query cache events.
func (m *Metrics) CacheObserver() ops.CacheObserver {
	return func(event ops.CacheEvent, _ string) {
		m.CacheEvents.WithLabelValues(string(event)).Inc()
	}
}

// WriteToTextfile writes the registry to path for node_exporter's textfile
// collector.
func (m *Metrics) WriteToTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, m.registry)
	if err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}

	return nil
}
