// Package metrics exposes Prometheus counters for the reconciliation
// cycle and a standalone metrics HTTP server.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the reconciliation counters. One instance is shared by the
// HTTP host and its handlers.
type Metrics struct {
	registry *prometheus.Registry

	SnapshotReads  prometheus.Counter
	SettingsWrites prometheus.Counter
	ApplyFailures  prometheus.Counter
	RestartSignals prometheus.Counter
}

// New creates and registers the reconciliation counters under the given
// namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		SnapshotReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "snapshot_reads_total",
			Help:      "Full configuration snapshot reads.",
		}),
		SettingsWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "settings_writes_total",
			Help:      "Individual setting writes issued by apply.",
		}),
		ApplyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "apply_failures_total",
			Help:      "Set cycles that failed before completing.",
		}),
		RestartSignals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "restart_signals_total",
			Help:      "Advisory service restart signals raised.",
		}),
	}

	registry.MustRegister(m.SnapshotReads, m.SettingsWrites, m.ApplyFailures, m.RestartSignals)
	return m
}

// MetricsServer serves the Prometheus scrape endpoint on its own address,
// separate from the API listener.
type MetricsServer struct {
	srv     *http.Server
	metrics *Metrics
}

// NewServer creates a metrics server for addr. An empty addr disables the
// server; Start and Shutdown become no-ops.
func NewServer(addr string, m *Metrics) *MetricsServer {
	if addr == "" {
		return &MetricsServer{metrics: m}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		metrics: m,
	}
}

// ListenAndServe serves the scrape endpoint until Shutdown. It returns
// http.ErrServerClosed on clean shutdown, like net/http.
func (s *MetricsServer) ListenAndServe() error {
	if s.srv == nil {
		return http.ErrServerClosed
	}
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the scrape endpoint.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
