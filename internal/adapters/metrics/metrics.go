// Package metrics exposes storefront counters and gauges to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every storefront collector on one registry.
// It implements shelf.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	shelfMutations  *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	subscribers     prometheus.Gauge
	externalChanges prometheus.Counter
	shelvesCached   prometheus.Gauge
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, including Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		shelfMutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_shelf_mutations_total",
			Help: "Shelf mutations by store, operation and result",
		}, []string{"store", "op", "result"}),
		storageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_storage_failures_total",
			Help: "Failed key-value storage calls by operation and kind",
		}, []string{"op", "kind"}),
		subscribers: f.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_shelf_subscribers",
			Help: "Live shelf change subscribers",
		}),
		externalChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_shelf_external_changes_total",
			Help: "Shelf records changed by another writer",
		}),
		shelvesCached: f.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_shelves_cached",
			Help: "Visitor shelves held in memory",
		}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration by route and status",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"route", "status"}),
	}
}

// Mutation counts a shelf mutation.
func (m *Metrics) Mutation(store, op, result string) {
	m.shelfMutations.WithLabelValues(store, op, result).Inc()
}

// StorageFailure counts a failed storage call.
func (m *Metrics) StorageFailure(op, kind string) {
	m.storageFailures.WithLabelValues(op, kind).Inc()
}

// SubscribersChanged moves the live subscriber gauge.
func (m *Metrics) SubscribersChanged(delta int) {
	m.subscribers.Add(float64(delta))
}

// ExternalChange counts an externally written record.
func (m *Metrics) ExternalChange() {
	m.externalChanges.Inc()
}

// SetShelvesCached records the registry size.
func (m *Metrics) SetShelvesCached(n int) {
	m.shelvesCached.Set(float64(n))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	m.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
