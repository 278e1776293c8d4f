// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "campaign"

// Metrics holds the campaign collectors on a private registry so several
// instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	callsPlaced      *prometheus.CounterVec
	callsFailed      *prometheus.CounterVec
	contactsSkipped  prometheus.Counter
	callsCanceled    *prometheus.CounterVec
	callbacks        *prometheus.CounterVec
	inflight         prometheus.Gauge
	placementLatency *prometheus.HistogramVec
	batchesCompleted prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		callsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_placed_total",
			Help:      "Calls accepted by the telephony provider.",
		}, []string{"provider"}),
		callsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_failed_total",
			Help:      "Placements rejected by the telephony provider.",
		}, []string{"provider"}),
		contactsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contacts_skipped_total",
			Help:      "Contacts skipped for lacking a phone number.",
		}),
		callsCanceled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_canceled_total",
			Help:      "Cancellation attempts by outcome.",
		}, []string{"result"}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Provider callbacks by kind and outcome.",
		}, []string{"kind", "result"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "placements_inflight",
			Help:      "Placements currently waiting on the provider.",
		}),
		placementLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "placement_duration_seconds",
			Help:      "Latency of provider placement requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		batchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_completed_total",
			Help:      "Dispatch batches fully attempted.",
		}),
	}
	m.registry.MustRegister(
		m.callsPlaced,
		m.callsFailed,
		m.contactsSkipped,
		m.callsCanceled,
		m.callbacks,
		m.inflight,
		m.placementLatency,
		m.batchesCompleted,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePlacement records the outcome of one provider placement.
func (m *Metrics) ObservePlacement(provider string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.placementLatency.WithLabelValues(provider).Observe(took.Seconds())
	if err != nil {
		m.callsFailed.WithLabelValues(provider).Inc()
		return
	}
	m.callsPlaced.WithLabelValues(provider).Inc()
}

func (m *Metrics) PlacementStarted() {
	if m == nil {
		return
	}
	m.inflight.Inc()
}

func (m *Metrics) PlacementFinished() {
	if m == nil {
		return
	}
	m.inflight.Dec()
}

func (m *Metrics) ContactSkipped() {
	if m == nil {
		return
	}
	m.contactsSkipped.Inc()
}

func (m *Metrics) BatchCompleted() {
	if m == nil {
		return
	}
	m.batchesCompleted.Inc()
}

// CancelOutcome counts one cancellation; result is "canceled" or "failed".
func (m *Metrics) CancelOutcome(result string) {
	if m == nil {
		return
	}
	m.callsCanceled.WithLabelValues(result).Inc()
}

// TrackCalls exports count as a gauge of calls held by the registry. It is
// evaluated on every scrape and must be registered at most once.
func (m *Metrics) TrackCalls(count func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "calls_tracked",
		Help:      "Calls currently held by the call registry.",
	}, func() float64 { return float64(count()) }))
}

// Callback counts one provider callback; result is "applied", "ignored",
// "unknown", "empty", "invalid" or "error".
func (m *Metrics) Callback(kind, result string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(kind, result).Inc()
}
