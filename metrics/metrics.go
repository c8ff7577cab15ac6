// SPDX-License-Identifier: MIT

// Package metrics provides a small prometheus-backed metrics facade with a
// statsd-like surface: named counters, gauges and timers under a common
// prefix, created on first use and cached thereafter.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds named collectors under a common name prefix. The zero value
// is not usable; create instances with New.
type Registry struct {
	prefix string
	reg    *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

// New creates a Registry whose metric names are prefixed with prefix
// (rendered as the prometheus namespace).
func New(prefix string) *Registry {
	return &Registry{
		prefix:     prefix,
		reg:        prometheus.NewRegistry(),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Counter returns the counter vector registered under name, creating it on
// first use. Calling Counter twice with the same name but different label
// sets panics, matching prometheus registration semantics.
func (r *Registry) Counter(name, help string, labels ...string) *prometheus.CounterVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.prefix,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(c)
	r.counters[name] = c
	return c
}

// Gauge returns the gauge vector registered under name, creating it on first use.
func (r *Registry) Gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.prefix,
		Name:      name,
		Help:      help,
	}, labels)
	r.reg.MustRegister(g)
	r.gauges[name] = g
	return g
}

// Histogram returns the histogram vector registered under name, creating it
// on first use with default buckets.
func (r *Registry) Histogram(name, help string, labels ...string) *prometheus.HistogramVec {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.histograms[name]; ok {
		return h
	}
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.prefix,
		Name:      name,
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	}, labels)
	r.reg.MustRegister(h)
	r.histograms[name] = h
	return h
}

// Incr increments the named counter by one.
func (r *Registry) Incr(name string, labels ...string) {
	r.Counter(name, name, labelNames(len(labels))...).WithLabelValues(labels...).Inc()
}

// Timing records a duration in seconds on the named histogram.
func (r *Registry) Timing(name string, d time.Duration, labels ...string) {
	r.Histogram(name, name, labelNames(len(labels))...).WithLabelValues(labels...).Observe(d.Seconds())
}

// StartTimer starts a timer for the named histogram; the returned function
// stops it and records the elapsed duration.
func (r *Registry) StartTimer(name string, labels ...string) func() {
	start := time.Now()
	return func() {
		r.Timing(name, time.Since(start), labels...)
	}
}

// Handler exposes the registry in prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// DefaultHandler exposes the process-wide default Prometheus registry,
// which carries the built-in cache, circuit breaker and retry metrics.
func DefaultHandler() http.Handler {
	return promhttp.Handler()
}

// Gatherer exposes the underlying registry for tests and custom exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// labelNames generates positional label names ("label_0", ...) for the
// convenience helpers, which identify metrics by name only.
func labelNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("label_%d", i)
	}
	return names
}
