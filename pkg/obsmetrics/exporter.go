// Package obsmetrics exports the coordinator's aggregated Stats as
// Prometheus gauges over HTTP. The teacher's monitoring/prometheus client
// queries an external Prometheus server; a fuzzer coordinator has no
// external network dependency to query, so here the coordinator becomes
// the scrape target instead, using the sibling
// github.com/prometheus/client_golang/prometheus (+ promhttp) packages.
package obsmetrics

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/stats"
)

// Exporter maintains a private Prometheus registry populated from Stats
// snapshots and serves it over HTTP.
type Exporter struct {
	registry *prometheus.Registry

	execs         prometheus.Gauge
	crashes       prometheus.Gauge
	uniqueCrashes prometheus.Gauge
	execsPerSec   prometheus.Gauge
	timeRunning   prometheus.Gauge
	coverageSize  prometheus.Gauge

	server *http.Server
}

// New builds an Exporter with its own registry (never the global default,
// so multiple fuzzer instances in one process never collide).
func New() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		execs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vmfuzzer", Name: "execs_total", Help: "Total executions across all workers.",
		}),
		crashes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vmfuzzer", Name: "crashes_total", Help: "Total crashing executions, including duplicates.",
		}),
		uniqueCrashes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vmfuzzer", Name: "unique_crashes", Help: "Distinct crash fingerprints observed.",
		}),
		execsPerSec: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vmfuzzer", Name: "execs_per_second", Help: "Current execution throughput.",
		}),
		timeRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vmfuzzer", Name: "time_running_seconds", Help: "Wall-clock time since the run started.",
		}),
		coverageSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vmfuzzer", Name: "coverage_size", Help: "Distinct retained traces in the global coverage set.",
		}),
	}
	e.registry.MustRegister(e.execs, e.crashes, e.uniqueCrashes, e.execsPerSec, e.timeRunning, e.coverageSize)
	return e
}

// Update refreshes the gauges from a global Stats snapshot.
func (e *Exporter) Update(s stats.Snapshot) {
	e.execs.Set(float64(s.Execs))
	e.crashes.Set(float64(s.Crashes))
	e.uniqueCrashes.Set(float64(s.UniqueCrashes))
	e.execsPerSec.Set(s.ExecsPerSec)
	e.timeRunning.Set(s.TimeRunning.Seconds())
	e.coverageSize.Set(float64(s.CoverageSize))
}

// Serve starts the HTTP exporter on addr in the background. Call Shutdown
// to stop it.
func (e *Exporter) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	e.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "obsmetrics: serve %s: %v\n", addr, err)
		}
	}()
	return nil
}

// Shutdown stops the HTTP exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	return e.server.Shutdown(ctx)
}
