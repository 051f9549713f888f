// Package metrics exposes Prometheus metrics for conversations, completion
// calls and the analytics aggregate.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the conversation layer reports into.
type Recorder interface {
	RecordTurn(command string, degraded bool)
	RecordCompletion(provider string, duration time.Duration, err error)
	RecordStorageError(op string)
	RecordArtifact(kind string, count int)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTurn(string, bool)                       {}
func (Nop) RecordCompletion(string, time.Duration, error) {}
func (Nop) RecordStorageError(string)                     {}
func (Nop) RecordArtifact(string, int)                    {}

// Collector is the Prometheus Recorder.
type Collector struct {
	turns              *prometheus.CounterVec
	completions        *prometheus.CounterVec
	completionLatency  prometheus.Histogram
	storageErrors      *prometheus.CounterVec
	artifacts          *prometheus.CounterVec
	sessions           prometheus.Gauge
	avgSessionDuration prometheus.Gauge
	totalMessages      prometheus.Gauge
	toolUsage          *prometheus.GaugeVec
	roleRequests       *prometheus.GaugeVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hireplan_turns_total",
			Help: "Handled user utterances by command and whether a fallback reply was used",
		}, []string{"command", "degraded"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hireplan_completions_total",
			Help: "Completion service calls by provider and outcome",
		}, []string{"provider", "outcome"}),
		completionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hireplan_completion_latency_seconds",
			Help:    "Completion service latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hireplan_storage_errors_total",
			Help: "Storage failures absorbed while handling a turn",
		}, []string{"op"}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hireplan_artifacts_generated_total",
			Help: "Generated job descriptions and checklists",
		}, []string{"kind"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hireplan_sessions",
			Help: "Sessions recorded in the analytics aggregate",
		}),
		avgSessionDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hireplan_avg_session_duration_seconds",
			Help: "Mean session duration from the analytics aggregate",
		}),
		totalMessages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hireplan_messages",
			Help: "Messages recorded in the analytics aggregate",
		}),
		toolUsage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hireplan_tool_usage",
			Help: "Tool invocations from the analytics aggregate",
		}, []string{"tool"}),
		roleRequests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hireplan_role_requests",
			Help: "Role requests from the analytics aggregate",
		}, []string{"role"}),
	}

	reg.MustRegister(
		c.turns,
		c.completions,
		c.completionLatency,
		c.storageErrors,
		c.artifacts,
		c.sessions,
		c.avgSessionDuration,
		c.totalMessages,
		c.toolUsage,
		c.roleRequests,
	)

	return c
}

// RecordTurn counts one handled utterance.
func (c *Collector) RecordTurn(command string, degraded bool) {
	d := "false"
	if degraded {
		d = "true"
	}
	c.turns.WithLabelValues(command, d).Inc()
}

// RecordCompletion counts one completion call and its latency.
func (c *Collector) RecordCompletion(provider string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.completions.WithLabelValues(provider, outcome).Inc()
	c.completionLatency.Observe(duration.Seconds())
}

// RecordStorageError counts one absorbed storage failure.
func (c *Collector) RecordStorageError(op string) {
	c.storageErrors.WithLabelValues(op).Inc()
}

// RecordArtifact counts generated artifacts of kind.
func (c *Collector) RecordArtifact(kind string, count int) {
	c.artifacts.WithLabelValues(kind).Add(float64(count))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
