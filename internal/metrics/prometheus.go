package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_agent_calls_total",
			Help: "Total number of agent invocations",
		},
		[]string{"agent", "model", "status"}, // status: success|degraded|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hermes_agent_latency_seconds",
			Help:    "Agent execution latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_agent_tokens_total",
			Help: "Total tokens used by agents",
		},
		[]string{"agent", "model", "type"}, // type: input|output
	)

	// Retrieval metrics
	RetrievalQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_retrieval_queries_total",
			Help: "Total number of vector store queries",
		},
		[]string{"namespace", "status"}, // status: success|empty|error
	)

	// Pipeline metrics
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_pipeline_runs_total",
			Help: "Total number of proposal pipeline runs",
		},
		[]string{"status"}, // status: success|error
	)

	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hermes_pipeline_duration_seconds",
			Help:    "End-to-end pipeline duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hermes_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		AgentCalls,
		AgentLatency,
		AgentTokens,
		RetrievalQueries,
		PipelineRuns,
		PipelineDuration,
		HTTPRequests,
	)
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAgentCall records one agent invocation
func ObserveAgentCall(agent, model, status string, duration time.Duration) {
	AgentCalls.WithLabelValues(agent, model, status).Inc()
	AgentLatency.WithLabelValues(agent, model).Observe(duration.Seconds())
}

// ObserveAgentTokens records the tokens one agent call consumed
func ObserveAgentTokens(agent, model string, promptTokens, completionTokens int) {
	AgentTokens.WithLabelValues(agent, model, "input").Add(float64(promptTokens))
	AgentTokens.WithLabelValues(agent, model, "output").Add(float64(completionTokens))
}
