// Package metrics exposes the scanner's optional Prometheus metrics
// surface (SPEC_FULL.md §2 "Metrics"): counters for targets scanned,
// scripts captured, registry lookups, and findings by severity, served
// over HTTP when --metrics-addr is set.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter the scanner updates during a run.
type Metrics struct {
	TargetsScanned   *prometheus.CounterVec
	ScriptsCaptured  prometheus.Counter
	RegistryLookups  *prometheus.CounterVec
	FindingsBySeverity *prometheus.CounterVec

	registry *prometheus.Registry
}

// New registers every metric against a fresh registry, isolated from the
// global default registry so a scan's metrics never leak into an
// embedding process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TargetsScanned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depconfuse_targets_scanned_total",
			Help: "Targets scanned, labeled by terminal status.",
		}, []string{"status"}),
		ScriptsCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "depconfuse_scripts_captured_total",
			Help: "JavaScript resources captured across all targets.",
		}),
		RegistryLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depconfuse_registry_lookups_total",
			Help: "Registry client lookups, labeled by outcome (hit, miss, unknown).",
		}, []string{"outcome"}),
		FindingsBySeverity: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "depconfuse_findings_total",
			Help: "Findings emitted, labeled by severity.",
		}, []string{"severity"}),
	}
}

// Serve starts an HTTP server exposing /metrics on addr and shuts it down
// when ctx is cancelled. It runs in the caller's goroutine; callers that
// want a background listener should invoke it via `go m.Serve(ctx, addr)`.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
