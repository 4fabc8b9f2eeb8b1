package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the invocation counter.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	registry = prometheus.NewRegistry()

	invocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "toolrun",
		Name:      "invocations_total",
		Help:      "Total number of tool invocations by backend and outcome.",
	}, []string{"backend", "outcome"})

	invocationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "toolrun",
		Name:      "invocation_duration_seconds",
		Help:      "Wall-clock duration of tool invocations in seconds.",
	}, []string{"backend"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "toolrun",
		Name:      "build_info",
		Help:      "Build metadata for the running toolrun binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(invocations, invocationDuration, buildInfo)
}

// Registry returns the Prometheus registry containing all toolrun metrics.
func Registry() *prometheus.Registry {
	return registry
}

// RecordInvocation counts a completed invocation and observes its duration.
func RecordInvocation(backend, outcome string, d time.Duration) {
	if backend == "" {
		backend = "unknown"
	}
	invocations.WithLabelValues(backend, outcome).Inc()
	invocationDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
