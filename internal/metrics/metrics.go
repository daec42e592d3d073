package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "batchlaunch",
			Subsystem: "supervisor",
			Name:      "launches_total",
			Help:      "Number of successful client launches.",
		}, []string{"login"},
	)
	launchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "batchlaunch",
			Subsystem: "supervisor",
			Name:      "launch_failures_total",
			Help:      "Number of failed client launches.",
		}, []string{"login"},
	)
	stops = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "batchlaunch",
			Subsystem: "supervisor",
			Name:      "stops_total",
			Help:      "Number of explicit closes.",
		}, []string{"login"},
	)
	pollReaped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "batchlaunch",
			Subsystem: "supervisor",
			Name:      "poll_reaped_total",
			Help:      "Records removed because the liveness poll found the process gone.",
		},
	)
	runningAccounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "batchlaunch",
			Subsystem: "supervisor",
			Name:      "running_accounts",
			Help:      "Currently tracked running accounts.",
		},
	)
	scanFiles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "batchlaunch",
			Subsystem: "scanner",
			Name:      "scan_files_total",
			Help:      "Script files examined by directory scans.",
		},
	)
	scanCandidates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "batchlaunch",
			Subsystem: "scanner",
			Name:      "scan_candidates_total",
			Help:      "Complete account candidates recovered by scans.",
		},
	)
	encodingRepairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "batchlaunch",
			Subsystem: "textenc",
			Name:      "encoding_repairs_total",
			Help:      "Garbled strings successfully repaired.",
		},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{launches, launchFailures, stops, pollReaped, runningAccounts, scanFiles, scanCandidates, encodingRepairs}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving Prometheus metrics for the
// DefaultGatherer. The caller wires the route.
func Handler() http.Handler { return promhttp.Handler() }

// Lightweight helpers used by internal packages. They no-op if Register
// hasn't been called.

func IncLaunch(login string) {
	if regOK.Load() {
		launches.WithLabelValues(login).Inc()
	}
}

func IncLaunchFailure(login string) {
	if regOK.Load() {
		launchFailures.WithLabelValues(login).Inc()
	}
}

func IncStop(login string) {
	if regOK.Load() {
		stops.WithLabelValues(login).Inc()
	}
}

func IncPollReaped() {
	if regOK.Load() {
		pollReaped.Inc()
	}
}

func SetRunningAccounts(n int) {
	if regOK.Load() {
		runningAccounts.Set(float64(n))
	}
}

func IncScanFile() {
	if regOK.Load() {
		scanFiles.Inc()
	}
}

func IncScanCandidate() {
	if regOK.Load() {
		scanCandidates.Inc()
	}
}

func IncEncodingRepair() {
	if regOK.Load() {
		encodingRepairs.Inc()
	}
}
