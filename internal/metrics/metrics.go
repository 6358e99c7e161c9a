// Package metrics exposes Prometheus counters for the paper desk server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "paperdesk"

// Manager owns a private registry so tests can build as many as they like.
type Manager struct {
	registry *prometheus.Registry

	uploads     prometheus.Counter
	submits     prometheus.Counter
	refsIssued  prometheus.Counter
	refsRevoked *prometheus.CounterVec
	refsLive    prometheus.Gauge
	downloads   prometheus.Counter
}

func New() *Manager {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Manager{
		registry: reg,
		uploads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Files selected for upload and held in memory.",
		}),
		submits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submits_total",
			Help:      "Uploads confirmed to storage.",
		}),
		refsIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_refs_issued_total",
			Help:      "Download references issued to rendered links.",
		}),
		refsRevoked: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_refs_revoked_total",
			Help:      "Download references revoked, by reason.",
		}, []string{"reason"}),
		refsLive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "download_refs_live",
			Help:      "Download references currently resolvable.",
		}),
		downloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Blobs served through a download reference.",
		}),
	}
}

// Nil-receiver safe so callers may run without metrics.

func (m *Manager) Upload() {
	if m != nil {
		m.uploads.Inc()
	}
}

func (m *Manager) Submit() {
	if m != nil {
		m.submits.Inc()
	}
}

func (m *Manager) Download() {
	if m != nil {
		m.downloads.Inc()
	}
}

func (m *Manager) RefIssued(live int) {
	if m != nil {
		m.refsIssued.Inc()
		m.refsLive.Set(float64(live))
	}
}

func (m *Manager) RefRevoked(reason string, live int) {
	if m != nil {
		m.refsRevoked.WithLabelValues(reason).Inc()
		m.refsLive.Set(float64(live))
	}
}

// Registry returns the underlying registry for gathering in tests.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
