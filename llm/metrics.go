package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	llmCompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chimera_llm_completions_total",
			Help: "Total LLM completions routed, by provider and final status.",
		},
		[]string{"provider", "status"},
	)
	llmCompletionLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chimera_llm_completion_latency_ms",
			Help:    "End-to-end completion latency in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"provider"},
	)
	llmCompletionTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chimera_llm_completion_tokens_total",
			Help: "Provider-reported token usage (0 when the provider reports none).",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(
		llmCompletionsTotal,
		llmCompletionLatencyMs,
		llmCompletionTokens,
	)
}

func observeCompletion(provider string, resp *Response, latency time.Duration) {
	if provider == "" {
		provider = "unknown"
	}
	llmCompletionsTotal.WithLabelValues(provider, string(resp.Status)).Inc()
	llmCompletionLatencyMs.WithLabelValues(provider).Observe(float64(latency.Milliseconds()))
	if resp.Tokens > 0 {
		llmCompletionTokens.WithLabelValues(provider).Add(float64(resp.Tokens))
	}
}
