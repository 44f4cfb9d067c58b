// Package metrics records the outcome of osprey runs as Prometheus metrics.
//
// osprey is a short-lived process, so metrics are not served over HTTP.
// Instead they are written in the text exposition format to a file that the
// node_exporter textfile collector (or similar) picks up.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/pseudomuto/osprey/pkg/executor"
	"github.com/pseudomuto/osprey/pkg/sanity"
)

const namespace = "osprey"

// Recorder collects metrics for a single run.
type Recorder struct {
	registry *prometheus.Registry

	querySets      *prometheus.CounterVec
	queries        *prometheus.CounterVec
	failures       *prometheus.CounterVec
	violations     *prometheus.CounterVec
	runDuration    *prometheus.GaugeVec
	lastRunSuccess *prometheus.GaugeVec
	lastRunTime    *prometheus.GaugeVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		querySets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "migrate",
				Name:      "query_sets_total",
				Help:      "Number of tag groups applied.",
			},
			[]string{"tag"},
		),
		queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "migrate",
				Name:      "queries_total",
				Help:      "Number of statements executed.",
			},
			[]string{"tag"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "migrate",
				Name:      "failures_total",
				Help:      "Number of groups that failed to apply.",
			},
			[]string{"tag", "file"},
		),
		violations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sanity",
				Name:      "violations_total",
				Help:      "Number of sanity violations found.",
			},
			[]string{"kind"},
		),
		runDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of the last run in seconds.",
			},
			[]string{"command"},
		),
		lastRunSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_success",
				Help:      "Whether the last run succeeded (1) or failed (0).",
			},
			[]string{"command"},
		),
		lastRunTime: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time at which the last run finished.",
			},
			[]string{"command"},
		),
	}
}

// Registry returns the registry holding the recorded metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveMigration records the groups and statements of a migrate run. Dry
// runs are ignored.
func (r *Recorder) ObserveMigration(report *executor.Report) {
	if report == nil || report.DryRun {
		return
	}

	r.querySets.WithLabelValues(report.Tag).Add(float64(report.QuerySets))
	r.queries.WithLabelValues(report.Tag).Add(float64(report.Queries))

	if failed, ok := report.Failed(); ok {
		r.failures.WithLabelValues(report.Tag, failed.File).Inc()
	}
}

// ObserveSanity records the violations contained in err, which is the result
// of a sanity check. Non-sanity errors are ignored.
func (r *Recorder) ObserveSanity(err error) {
	var violations sanity.Violations
	if errors.As(err, &violations) {
		for _, v := range violations {
			r.violations.WithLabelValues(v.Kind.String()).Inc()
		}
		return
	}

	var single *sanity.Error
	if errors.As(err, &single) {
		r.violations.WithLabelValues(single.Kind.String()).Inc()
	}
}

// ObserveRun records how long command took and whether it succeeded.
func (r *Recorder) ObserveRun(command string, duration time.Duration, err error) {
	success := 1.0
	if err != nil {
		success = 0
	}

	r.runDuration.WithLabelValues(command).Set(duration.Seconds())
	r.lastRunSuccess.WithLabelValues(command).Set(success)
	r.lastRunTime.WithLabelValues(command).SetToCurrentTime()
}

// WriteFile writes the recorded metrics to path in the text exposition
// format. The file is replaced atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics file: %s", path)
	}

	return nil
}
