// Package metrics wires up the Prometheus collectors a workerstack
// Handler reports request outcomes and upstream latency through,
// following the counter/histogram naming and registration pattern
// skipper's metrics package uses for its own proxy instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the collectors for a single Handler. Each Handler gets
// its own Recorder and, by default, its own registry, so that embedding
// two Handlers in the same process never collides on metric names.
type Recorder struct {
	registry *prometheus.Registry
	outcomes *prometheus.CounterVec
	upstream *prometheus.HistogramVec
}

// NewRecorder builds a Recorder registered against a fresh registry.
func NewRecorder() *Recorder {
	return NewRecorderWithRegisterer(prometheus.NewRegistry())
}

// NewRecorderWithRegisterer builds a Recorder registered against reg,
// useful when a host wants to expose workerstack's metrics alongside its
// own on a shared /metrics endpoint.
func NewRecorderWithRegisterer(reg *prometheus.Registry) *Recorder {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workerstack",
		Name:      "requests_total",
		Help:      "Total requests handled, labeled by outcome.",
	}, []string{"outcome"})

	upstream := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "workerstack",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of the upstream binding fetch, labeled by binding.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"binding"})

	reg.MustRegister(outcomes, upstream)

	return &Recorder{registry: reg, outcomes: outcomes, upstream: upstream}
}

// Registry returns the Recorder's registry, so a host can serve it with
// promhttp.HandlerFor.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveOutcome increments the outcome counter. Expected outcome values:
// "ok", "no_match", "config_error", "upstream_error".
func (r *Recorder) ObserveOutcome(outcome string) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(outcome).Inc()
}

// StartUpstream starts timing an upstream fetch and returns a func that
// records the elapsed duration against binding when called.
func (r *Recorder) StartUpstream(binding string) func() {
	if r == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		r.upstream.WithLabelValues(binding).Observe(time.Since(start).Seconds())
	}
}
