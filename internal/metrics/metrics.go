// Package metrics exposes Prometheus collectors for series operations on a
// private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainerrors "github.com/listenupapp/seriesd/internal/errors"
)

const namespace = "seriesd"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	operations      *prometheus.CounterVec
	restrictedFlips *prometheus.CounterVec
	denials         *prometheus.CounterVec
	requests        *prometheus.HistogramVec
}

// New creates and registers the collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Series operations by name and outcome (ok or error code).",
		}, []string{"operation", "outcome"}),
		restrictedFlips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restricted_flips_total",
			Help:      "Times reconciliation changed a series' restricted flag, by new value.",
		}, []string{"restricted"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visibility_denials_total",
			Help:      "Series reads refused by the visibility rules, by viewer class.",
		}, []string{"class"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.operations,
		m.restrictedFlips,
		m.denials,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Operation records the outcome of a named service operation.
func (m *Metrics) Operation(name string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(name, Outcome(err)).Inc()
}

// RestrictedFlip records a reconciliation that changed the flag.
func (m *Metrics) RestrictedFlip(restricted bool) {
	if m == nil {
		return
	}
	m.restrictedFlips.WithLabelValues(strconv.FormatBool(restricted)).Inc()
}

// VisibilityDenied records a refused read.
func (m *Metrics) VisibilityDenied(class string) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(class).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Outcome maps an error to a bounded label value.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		return string(domainErr.Code)
	}
	return string(domainerrors.CodeInternal)
}
