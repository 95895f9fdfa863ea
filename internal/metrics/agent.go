package metrics

import "github.com/prometheus/client_golang/prometheus"

// Agent Prometheus metrics.
var (
	AgentTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "agent_turns_total",
			Help:      "Total number of agent turns by outcome",
		},
		[]string{"outcome"}, // "text" / "confirm" / "blocked" / "exhausted" / "error"
	)

	AgentRounds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Name:      "agent_rounds",
			Help:      "Number of reasoning rounds per turn",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10},
		},
	)

	AgentToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Name:      "agent_tool_calls_total",
			Help:      "Total tool calls executed by the agent",
		},
		[]string{"tool", "status"},
	)

	AgentLLMDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Name:      "agent_llm_duration_seconds",
			Help:      "Chat completion duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"model"},
	)
)

var agentMetricsRegistered bool

// RegisterAgentMetrics registers Prometheus agent metrics. Must be called once from main.
func RegisterAgentMetrics() {
	if agentMetricsRegistered {
		return
	}
	prometheus.MustRegister(AgentTurnsTotal)
	prometheus.MustRegister(AgentRounds)
	prometheus.MustRegister(AgentToolCallsTotal)
	prometheus.MustRegister(AgentLLMDuration)
	agentMetricsRegistered = true
}
