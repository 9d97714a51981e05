package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zipcrack/internal/progress"
)

const namespace = "zipcrack"

// Recorder holds the search counters on a private registry. It implements
// progress.Reporter so the dispatcher feeds it like any other observer.
type Recorder struct {
	registry *prometheus.Registry

	tested      prometheus.Counter
	failures    prometheus.Counter
	checkpoints prometheus.Counter
	found       prometheus.Counter
	passes      prometheus.Counter
	runDuration *prometheus.HistogramVec

	passLength prometheus.Gauge
	passTotal  prometheus.Gauge
	passDone   prometheus.Gauge
}

// New registers the search metrics on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		tested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "candidates_tested_total",
			Help:      "Candidates retired by the dispatcher",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "transient_failures_total",
			Help:      "Candidates rejected after exhausting transient retries",
		}),
		checkpoints: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkpoint",
			Name:      "writes_total",
			Help:      "Checkpoint records persisted",
		}),
		found: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "found_total",
			Help:      "Runs that found the password",
		}),
		passes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "passes_total",
			Help:      "Enumeration passes started",
		}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed runs by outcome",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
		}, []string{"outcome"}),
		passLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "length",
			Help:      "Candidate length of the current pass",
		}),
		passTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "size",
			Help:      "Candidates in the current pass",
		}),
		passDone: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pass",
			Name:      "retired",
			Help:      "Candidates of the current pass already retired, including the resumed offset",
		}),
	}
}

// Registry exposes the underlying registry for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Start(pass progress.Pass) {
	r.passes.Inc()
	r.passLength.Set(float64(pass.Length))
	r.passTotal.Set(float64(pass.Total))
	r.passDone.Set(float64(pass.Offset))
}

func (r *Recorder) Advance(tested, failures uint64) {
	r.tested.Add(float64(tested))
	r.failures.Add(float64(failures))
	r.passDone.Add(float64(tested))
}

func (r *Recorder) Candidate(string) {}

func (r *Recorder) Checkpoint(uint64) { r.checkpoints.Inc() }

func (r *Recorder) Finish() {}

// RunFinished records the outcome of a whole run.
func (r *Recorder) RunFinished(outcome string, elapsed time.Duration) {
	if outcome == "found" {
		r.found.Inc()
	}
	r.runDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
