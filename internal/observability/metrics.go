package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service. Collectors
// register with the default registry at construction, so a process must
// call NewMetrics at most once per namespace. Tests use a unique
// namespace per test to avoid duplicate registration.
type Metrics struct {
	// Smart search pipeline.
	SearchesStarted   prometheus.Counter
	SearchesCompleted prometheus.Counter
	SearchesFailed    prometheus.Counter
	SearchDuration    prometheus.Histogram
	PapersPerSearch   prometheus.Histogram

	// Degrading adapters. The tier label records which strategy
	// produced the result: structured, heuristic, or fallback.
	OptimizationsTotal *prometheus.CounterVec
	AbstractsTotal     *prometheus.CounterVec
	PapersAnalyzed     prometheus.Counter
	PapersDefaulted    prometheus.Counter

	// Upstream calls.
	LLMRequests    *prometheus.CounterVec
	SourceRequests *prometheus.CounterVec
}

// NewMetrics creates and registers the service metrics under the given
// namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "Number of smart searches started.",
		}),
		SearchesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_completed_total",
			Help:      "Number of smart searches completed successfully.",
		}),
		SearchesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_failed_total",
			Help:      "Number of smart searches that returned an error.",
		}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end smart search duration.",
			Buckets:   prometheus.DefBuckets,
		}),
		PapersPerSearch: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "papers_per_search",
			Help:      "Number of papers returned per smart search.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		OptimizationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_optimizations_total",
			Help:      "Keyword optimizations by producing tier.",
		}, []string{"tier"}),
		AbstractsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "abstracts_generated_total",
			Help:      "Abstract syntheses by producing tier.",
		}, []string{"tier"}),
		PapersAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_analyzed_total",
			Help:      "Papers scored by the relevance analyzer.",
		}),
		PapersDefaulted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_defaulted_total",
			Help:      "Papers assigned the default relevance score.",
		}),
		LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM completions by provider and outcome.",
		}, []string{"provider", "outcome"}),
		SourceRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Paper source searches by source and outcome.",
		}, []string{"source", "outcome"}),
	}
}
