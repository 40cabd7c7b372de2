// Package search coordinates the smart-search pipeline: keyword
// optimization, paper retrieval, bounded concurrent relevance
// enrichment, and deterministic ranking.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/papermind/paper-search-service/internal/domain"
	"github.com/papermind/paper-search-service/internal/observability"
	"github.com/papermind/paper-search-service/internal/papersources"
)

// MaxEnrichedPapers bounds the number of concurrent relevance analyses
// per search. Papers beyond the bound keep the default score.
const MaxEnrichedPapers = 5

// DefaultMaxResults is used when the caller does not cap the result set
// and no service-level default is configured.
const DefaultMaxResults = 10

// MaxResultsCap bounds a caller-supplied result limit so a single
// request cannot pull arbitrarily large pages from the feed.
const MaxResultsCap = 50

// notAnalyzedReasoning annotates papers outside the enrichment bound.
const notAnalyzedReasoning = "상위 5개 논문만 AI 분석이 적용됩니다."

// noResultsMessage explains an empty result set to the caller.
const noResultsMessage = "검색 결과가 없습니다. 다른 키워드를 시도해보세요."

// KeywordOptimizer converts a research request into search keywords.
// Implementations never fail; see the keywords package.
type KeywordOptimizer interface {
	Optimize(ctx context.Context, userQuery string) *domain.KeywordOptimizationResult
}

// RelevanceAnalyzer scores one paper against a search context in place.
// Implementations never fail; see the relevance package.
type RelevanceAnalyzer interface {
	Analyze(ctx context.Context, paper *domain.PaperRecord, searchContext string)
}

// Request holds the smart-search inputs. At least one of UserQuery and
// SelectedKeyword must be set.
type Request struct {
	UserQuery       string
	SelectedKeyword string
	MaxResults      int
}

// Stats summarizes one smart search.
type Stats struct {
	TotalPapers      int `json:"totalPapers"`
	AverageRelevance int `json:"averageRelevance"`
	AnalyzedPapers   int `json:"analyzedPapers"`
}

// Result is the ranked outcome of a smart search.
type Result struct {
	Papers        []*domain.PaperRecord             `json:"papers"`
	SearchKeyword string                            `json:"searchKeyword"`
	Optimization  *domain.KeywordOptimizationResult `json:"optimization,omitempty"`
	Stats         *Stats                            `json:"stats,omitempty"`
	Message       string                            `json:"message,omitempty"`
}

// Config holds orchestrator tuning.
type Config struct {
	// DefaultMaxResults is the result cap applied when a request leaves
	// MaxResults unset. Zero falls back to DefaultMaxResults.
	DefaultMaxResults int
}

// Orchestrator runs the smart-search pipeline.
type Orchestrator struct {
	optimizer         KeywordOptimizer
	analyzer          RelevanceAnalyzer
	source            papersources.PaperSource
	defaultMaxResults int
	logger            zerolog.Logger
	metrics           *observability.Metrics
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(cfg Config, optimizer KeywordOptimizer, analyzer RelevanceAnalyzer, source papersources.PaperSource, logger zerolog.Logger, metrics *observability.Metrics) *Orchestrator {
	defaultMaxResults := cfg.DefaultMaxResults
	if defaultMaxResults <= 0 {
		defaultMaxResults = DefaultMaxResults
	}
	return &Orchestrator{
		optimizer:         optimizer,
		analyzer:          analyzer,
		source:            source,
		defaultMaxResults: defaultMaxResults,
		logger:            logger.With().Str("component", "search_orchestrator").Logger(),
		metrics:           metrics,
	}
}

// SmartSearch turns a research request into a ranked paper list.
//
// When SelectedKeyword is absent the user query is optimized first and
// the optimization's leading keyword becomes the effective search term.
// The first five retrieved papers are enriched concurrently with model
// relevance scores; the remainder keep the default score. The final
// list sorts descending by relevance score, ties keeping retrieval
// order.
//
// Only two failure classes surface: missing input and retrieval
// transport errors. Model failures degrade per stage and never fail the
// search.
func (o *Orchestrator) SmartSearch(ctx context.Context, req Request) (*Result, error) {
	if req.UserQuery == "" && req.SelectedKeyword == "" {
		return nil, domain.NewValidationError("userQuery", "userQuery or selectedKeyword is required")
	}

	o.metrics.SearchesStarted.Inc()
	start := time.Now()

	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = o.defaultMaxResults
	}
	if maxResults > MaxResultsCap {
		maxResults = MaxResultsCap
	}

	searchKeyword := req.SelectedKeyword
	var optimization *domain.KeywordOptimizationResult
	if searchKeyword == "" {
		optimization = o.optimizer.Optimize(ctx, req.UserQuery)
		searchKeyword = optimization.Keywords[0]
	}

	searchContext := req.UserQuery
	if searchContext == "" {
		searchContext = req.SelectedKeyword
	}

	ctx, requestID := observability.EnsureRequestID(ctx)
	logger := observability.WithSearchContext(o.logger, requestID, searchContext)
	logger.Info().Str("keyword", searchKeyword).Int("max_results", maxResults).Msg("smart search started")

	found, err := o.source.Search(ctx, papersources.SearchParams{
		Query:      searchKeyword,
		MaxResults: maxResults,
		SortBy:     papersources.SortByRelevance,
		SortOrder:  papersources.SortOrderDescending,
	})
	if err != nil {
		o.metrics.SearchesFailed.Inc()
		o.metrics.SourceRequests.WithLabelValues(o.source.Name(), "error").Inc()
		return nil, fmt.Errorf("retrieving papers for %q: %w", searchKeyword, err)
	}
	o.metrics.SourceRequests.WithLabelValues(o.source.Name(), "success").Inc()

	papers := found.Papers
	if len(papers) == 0 {
		o.metrics.SearchesCompleted.Inc()
		o.metrics.SearchDuration.Observe(time.Since(start).Seconds())
		o.metrics.PapersPerSearch.Observe(0)
		logger.Info().Msg("smart search found no papers")
		return &Result{
			Papers:        []*domain.PaperRecord{},
			SearchKeyword: searchKeyword,
			Optimization:  optimization,
			Message:       noResultsMessage,
		}, nil
	}

	analyzed := o.enrich(ctx, papers, searchContext)

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].RelevanceScore > papers[j].RelevanceScore
	})

	stats := computeStats(papers, analyzed)
	o.metrics.SearchesCompleted.Inc()
	o.metrics.SearchDuration.Observe(time.Since(start).Seconds())
	o.metrics.PapersPerSearch.Observe(float64(len(papers)))
	logger.Info().
		Int("papers", stats.TotalPapers).
		Int("average_relevance", stats.AverageRelevance).
		Int("analyzed", stats.AnalyzedPapers).
		Msg("smart search complete")

	return &Result{
		Papers:        papers,
		SearchKeyword: searchKeyword,
		Optimization:  optimization,
		Stats:         stats,
	}, nil
}

// enrich scores the first MaxEnrichedPapers papers concurrently and
// assigns the default score to the rest. Returns the number of papers
// sent to the analyzer.
func (o *Orchestrator) enrich(ctx context.Context, papers []*domain.PaperRecord, searchContext string) int {
	bound := len(papers)
	if bound > MaxEnrichedPapers {
		bound = MaxEnrichedPapers
	}

	// Each goroutine writes only its own record, so the join needs no
	// further coordination.
	var wg sync.WaitGroup
	for _, paper := range papers[:bound] {
		wg.Add(1)
		go func(p *domain.PaperRecord) {
			defer wg.Done()
			o.analyzer.Analyze(ctx, p, searchContext)
		}(paper)
	}
	wg.Wait()

	for _, paper := range papers[bound:] {
		paper.RelevanceScore = domain.DefaultRelevanceScore
		paper.AIAnalysis = &domain.AIAnalysis{
			Reasoning:   notAnalyzedReasoning,
			KeyInsights: []string{},
			Methodology: "분석되지 않음",
		}
		o.metrics.PapersDefaulted.Inc()
	}

	return bound
}

func computeStats(papers []*domain.PaperRecord, analyzed int) *Stats {
	sum := 0
	for _, p := range papers {
		sum += p.RelevanceScore
	}
	return &Stats{
		TotalPapers:      len(papers),
		AverageRelevance: int(math.Round(float64(sum) / float64(len(papers)))),
		AnalyzedPapers:   analyzed,
	}
}
