package agents

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AgentCallsTotal counts calls to the text-generation service.
	// Labels: agent, result (success, error)
	AgentCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketsmith",
			Subsystem: "agents",
			Name:      "calls_total",
			Help:      "Total number of agent calls by agent and result",
		},
		[]string{"agent", "result"},
	)

	// AgentCallDuration tracks how long each agent call takes.
	AgentCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ticketsmith",
			Subsystem: "agents",
			Name:      "call_duration_seconds",
			Help:      "Duration of agent calls in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"agent"},
	)

	malformedOutputs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ticketsmith",
			Subsystem: "agents",
			Name:      "malformed_outputs_total",
			Help:      "Agent replies that failed JSON extraction or schema validation",
		},
		[]string{"agent"},
	)
)

func observeCall(agent string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	AgentCallsTotal.WithLabelValues(agent, result).Inc()
	AgentCallDuration.WithLabelValues(agent).Observe(d.Seconds())
}
