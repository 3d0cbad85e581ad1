// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tourvista"

type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	ordersCreated     *prometheus.CounterVec
	confirmations     *prometheus.CounterVec
	webhookEvents     *prometheus.CounterVec
	outboxDispatch    *prometheus.CounterVec
	panics            *prometheus.CounterVec
	integrityGaps     prometheus.Gauge
	integrityLastScan prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ordersCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_orders_total",
				Help:      "Create-order calls by result",
			},
			[]string{"result"},
		),
		confirmations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_confirmations_total",
				Help:      "Payment confirmations by source and whether state changed",
			},
			[]string{"source", "result"},
		),
		webhookEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_events_total",
				Help:      "Webhook deliveries by outcome",
			},
			[]string{"outcome"},
		),
		outboxDispatch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outbox_dispatch_total",
				Help:      "Outbox dispatch attempts by result",
			},
			[]string{"result"},
		),
		panics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_panics_total",
				Help:      "Handler panics recovered per route",
			},
			[]string{"route"},
		),
		integrityGaps: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "integrity_gaps",
				Help:      "Successful payments whose booking is not confirmed",
			},
		),
		integrityLastScan: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "integrity_last_scan_timestamp_seconds",
				Help:      "Unix time of the last integrity scan",
			},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.ordersCreated,
		m.confirmations,
		m.webhookEvents,
		m.outboxDispatch,
		m.panics,
		m.integrityGaps,
		m.integrityLastScan,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) OrderCreated(reused bool) {
	if reused {
		m.ordersCreated.WithLabelValues("reused").Inc()
		return
	}
	m.ordersCreated.WithLabelValues("created").Inc()
}

func (m *Metrics) PaymentConfirmed(source string, applied bool) {
	result := "duplicate"
	if applied {
		result = "confirmed"
	}
	m.confirmations.WithLabelValues(source, result).Inc()
}

func (m *Metrics) WebhookHandled(outcome string) {
	m.webhookEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OutboxDispatched(ok bool) {
	if ok {
		m.outboxDispatch.WithLabelValues("dispatched").Inc()
		return
	}
	m.outboxDispatch.WithLabelValues("failed").Inc()
}

func (m *Metrics) PanicRecovered(route string) {
	m.panics.WithLabelValues(route).Inc()
}

func (m *Metrics) IntegrityScanned(gaps int, at time.Time) {
	m.integrityGaps.Set(float64(gaps))
	m.integrityLastScan.Set(float64(at.Unix()))
}
