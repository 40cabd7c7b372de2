// Package relevance scores a paper's relevance to a search context
// using the configured LLM.
//
// Scoring is best-effort: any model or parse failure yields the default
// score of 50 with a fixed "analysis failed" rationale, so enrichment
// never fails a search.
package relevance

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/papermind/paper-search-service/internal/domain"
	"github.com/papermind/paper-search-service/internal/llm"
	"github.com/papermind/paper-search-service/internal/observability"
)

const (
	analyzeMaxTokens   = 500
	analyzeTemperature = 0.2
)

// analysisReply is the JSON shape requested from the model.
type analysisReply struct {
	RelevanceScore int      `json:"relevanceScore"`
	Reasoning      string   `json:"reasoning"`
	KeyInsights    []string `json:"keyInsights"`
	Methodology    string   `json:"methodology"`
}

// Analyzer scores papers against a search context.
type Analyzer struct {
	client  llm.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewAnalyzer creates an Analyzer backed by the given LLM client.
func NewAnalyzer(client llm.Client, logger zerolog.Logger, metrics *observability.Metrics) *Analyzer {
	return &Analyzer{
		client:  client,
		logger:  logger.With().Str("component", "relevance_analyzer").Logger(),
		metrics: metrics,
	}
}

// Analyze sets paper.RelevanceScore and paper.AIAnalysis from a model
// assessment of the paper against searchContext.
//
// It never returns an error: a failed call or unparseable reply leaves
// the paper with the default score and a fixed failure rationale.
func (a *Analyzer) Analyze(ctx context.Context, paper *domain.PaperRecord, searchContext string) {
	a.metrics.PapersAnalyzed.Inc()

	resp, err := a.client.Complete(ctx, llm.Request{
		Prompt:      buildAnalysisPrompt(paper, searchContext),
		MaxTokens:   analyzeMaxTokens,
		Temperature: analyzeTemperature,
	})
	if err != nil {
		a.metrics.LLMRequests.WithLabelValues(a.client.Provider(), "error").Inc()
		a.markFailed(paper, err)
		return
	}
	a.metrics.LLMRequests.WithLabelValues(a.client.Provider(), "success").Inc()

	var reply analysisReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Content)), &reply); err != nil {
		a.markFailed(paper, err)
		return
	}

	score := reply.RelevanceScore
	if score == 0 {
		score = domain.DefaultRelevanceScore
	}
	paper.RelevanceScore = score
	paper.AIAnalysis = &domain.AIAnalysis{
		Reasoning:   valueOr(reply.Reasoning, "분석 결과 없음"),
		KeyInsights: nonNil(reply.KeyInsights),
		Methodology: valueOr(reply.Methodology, "방법론 정보 없음"),
	}
}

func (a *Analyzer) markFailed(paper *domain.PaperRecord, err error) {
	paperLogger := observability.WithPaperContext(a.logger, paper.ID)
	paperLogger.Warn().Err(err).Msg("relevance analysis failed")
	paper.RelevanceScore = domain.DefaultRelevanceScore
	paper.AIAnalysis = &domain.AIAnalysis{
		Reasoning:   "분석 실패",
		KeyInsights: []string{},
		Methodology: "정보 없음",
	}
}

func buildAnalysisPrompt(paper *domain.PaperRecord, searchContext string) string {
	var sb strings.Builder
	sb.WriteString("논문 관련성을 분석해주세요.\n\n")
	sb.WriteString("검색 맥락: \"" + searchContext + "\"\n\n")
	sb.WriteString("논문 정보:\n")
	sb.WriteString("- 제목: " + paper.Title + "\n")
	sb.WriteString("- 저자: " + paper.AuthorNames("저자 정보 없음") + "\n")
	sb.WriteString("- 초록: " + valueOr(paper.Summary, "초록 없음") + "\n")
	sb.WriteString("- 카테고리: " + valueOr(paper.PrimaryCategory, "카테고리 없음") + "\n\n")
	sb.WriteString(`다음 형식으로 응답:
{
  "relevanceScore": 85,
  "reasoning": "관련성이 높은 이유",
  "keyInsights": ["핵심 인사이트 1", "핵심 인사이트 2"],
  "methodology": "연구 방법론"
}

점수 기준: 90-100(매우 관련), 70-89(관련), 50-69(부분 관련), 30-49(약간 관련), 0-29(무관련)`)
	return sb.String()
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
