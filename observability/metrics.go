// Package observability exposes the prometheus collectors of the messenger.
// Every recorder is nil-safe so components can run without metrics in tests.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	activeChannels  prometheus.Gauge
	channelsTotal   prometheus.Counter
	messagesRouted  prometheus.Counter
	routeErrors     *prometheus.CounterVec
	deliveries      *prometheus.CounterVec
	routeLatency    prometheus.Histogram
	authRejected    *prometheus.CounterVec
	workerRestarted *prometheus.CounterVec
	identities      prometheus.Gauge
	backlog         prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		activeChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "messenger_channels_active",
			Help: "Current number of authenticated real-time channels.",
		}),
		channelsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "messenger_channels_total",
			Help: "Total number of channels authenticated since start.",
		}),
		messagesRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "messenger_messages_routed_total",
			Help: "Messages persisted and handed to delivery.",
		}),
		routeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messenger_route_errors_total",
			Help: "Rejected or failed routing attempts by code.",
		}, []string{"code"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messenger_deliveries_total",
			Help: "Pushes to live channels by outcome.",
		}, []string{"result"}),
		routeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "messenger_route_latency_seconds",
			Help:    "Time spent persisting and fanning out one message.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}),
		authRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messenger_auth_rejected_total",
			Help: "Rejected credentials by surface.",
		}, []string{"surface"}),
		workerRestarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "messenger_worker_restarts_total",
			Help: "Supervised worker restarts after a crash.",
		}, []string{"worker"}),
		identities: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "messenger_identities_online",
			Help: "Identities holding at least one channel, sampled.",
		}),
		backlog: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "messenger_channel_backlog_max_ratio",
			Help: "Fullest outbound queue over its capacity, sampled.",
		}),
	}

	reg.MustRegister(
		m.activeChannels,
		m.channelsTotal,
		m.messagesRouted,
		m.routeErrors,
		m.deliveries,
		m.routeLatency,
		m.authRejected,
		m.workerRestarted,
		m.identities,
		m.backlog,
	)
	return m
}

func (m *Metrics) ChannelOpened() {
	if m == nil {
		return
	}
	m.activeChannels.Inc()
	m.channelsTotal.Inc()
}

func (m *Metrics) ChannelClosed() {
	if m == nil {
		return
	}
	m.activeChannels.Dec()
}

func (m *Metrics) MessageRouted(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.messagesRouted.Inc()
	m.routeLatency.Observe(elapsed.Seconds())
}

func (m *Metrics) RouteError(code string) {
	if m == nil {
		return
	}
	m.routeErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) Delivered() {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues("ok").Inc()
}

func (m *Metrics) DeliveryFailed() {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues("failed").Inc()
}

func (m *Metrics) AuthRejected(surface string) {
	if m == nil {
		return
	}
	m.authRejected.WithLabelValues(surface).Inc()
}

func (m *Metrics) WorkerRestarted(worker string) {
	if m == nil {
		return
	}
	m.workerRestarted.WithLabelValues(worker).Inc()
}

func (m *Metrics) ChannelsSampled(identities int, maxBacklog float64) {
	if m == nil {
		return
	}
	m.identities.Set(float64(identities))
	m.backlog.Set(maxBacklog)
}
