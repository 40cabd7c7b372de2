// Package keywords converts a free-text research request into optimized
// English search terms for arXiv.
//
// Optimization is best-effort and never fails: a structured model reply
// is preferred, a heuristic extraction from the raw reply is attempted
// when parsing fails, and a static keyword mapping covers model outages.
// Callers always receive a usable result with at least one keyword.
package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/papermind/paper-search-service/internal/domain"
	"github.com/papermind/paper-search-service/internal/llm"
	"github.com/papermind/paper-search-service/internal/observability"
)

// Tier labels reported in logs and metrics.
const (
	TierStructured = "structured"
	TierHeuristic  = "heuristic"
	TierFallback   = "fallback"
)

const (
	optimizeMaxTokens   = 1000
	optimizeTemperature = 0.3

	maxKeywords   = 5
	minConfidence = 60
	maxConfidence = 95

	heuristicConfidence = 65
	fallbackConfidence  = 60
)

// quotedPhrasePattern matches double-quoted alphabetic phrases in a raw
// model reply, the shape keyword lists take in prose answers.
var quotedPhrasePattern = regexp.MustCompile(`"([a-zA-Z\s]+)"`)

// topicKeywords maps a topic substring of the user's query to a curated
// English keyword list. Matching is ordered: the first topic found as a
// substring wins, so a query mentioning both a domain and "AI" resolves
// to the more specific domain.
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"영화", []string{"film production", "cinema technology", "movie industry", "film studies", "entertainment technology"}},
	{"의료", []string{"medical imaging", "healthcare AI", "clinical diagnosis", "medical technology", "biomedical engineering"}},
	{"자율주행", []string{"autonomous driving", "self driving cars", "vehicle automation", "transportation AI", "robotics navigation"}},
	{"교육", []string{"educational technology", "learning systems", "online education", "e-learning platforms", "educational AI"}},
	{"딥러닝", []string{"deep learning", "neural networks", "machine learning", "artificial intelligence", "computer vision"}},
	{"AI", []string{"artificial intelligence", "machine learning", "neural networks", "deep learning", "AI applications"}},
}

// defaultKeywords is used when no topic substring matches the query.
var defaultKeywords = []string{"artificial intelligence", "machine learning", "computer science", "technology research", "data analysis"}

// Optimizer turns natural-language research requests into search
// keywords via the configured LLM, degrading to deterministic output
// when the model is unavailable or its reply is unusable.
type Optimizer struct {
	client  llm.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewOptimizer creates an Optimizer backed by the given LLM client.
func NewOptimizer(client llm.Client, logger zerolog.Logger, metrics *observability.Metrics) *Optimizer {
	return &Optimizer{
		client:  client,
		logger:  logger.With().Str("component", "keyword_optimizer").Logger(),
		metrics: metrics,
	}
}

// Optimize converts userQuery into 1-5 English search keywords.
//
// It never returns an error: model failures and malformed replies are
// absorbed by the degradation chain, and the result always carries at
// least one keyword with confidence in [60, 95].
func (o *Optimizer) Optimize(ctx context.Context, userQuery string) *domain.KeywordOptimizationResult {
	resp, err := o.client.Complete(ctx, llm.Request{
		Prompt:      buildOptimizePrompt(userQuery),
		MaxTokens:   optimizeMaxTokens,
		Temperature: optimizeTemperature,
	})
	if err != nil {
		o.metrics.LLMRequests.WithLabelValues(o.client.Provider(), "error").Inc()
		o.logger.Warn().Err(err).Str("query", userQuery).
			Msg("model call failed, using static keyword mapping")
		return o.finish(TierFallback, fallbackResult(userQuery))
	}
	o.metrics.LLMRequests.WithLabelValues(o.client.Provider(), "success").Inc()

	raw := strings.TrimSpace(resp.Content)

	var parsed domain.KeywordOptimizationResult
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		o.logger.Warn().Str("query", userQuery).
			Msg("structured parse failed, extracting keywords from raw reply")
		if result, ok := extractFromText(raw, userQuery); ok {
			return o.finish(TierHeuristic, result)
		}
		return o.finish(TierFallback, fallbackResult(userQuery))
	}

	keywords := cleanKeywords(parsed.Keywords)
	if len(keywords) == 0 {
		o.logger.Warn().Str("query", userQuery).
			Msg("model reply has no keywords, using static keyword mapping")
		return o.finish(TierFallback, fallbackResult(userQuery))
	}

	parsed.OriginalQuery = userQuery
	parsed.Keywords = keywords
	parsed.Confidence = clampConfidence(parsed.Confidence)
	return o.finish(TierStructured, &parsed)
}

func (o *Optimizer) finish(tier string, result *domain.KeywordOptimizationResult) *domain.KeywordOptimizationResult {
	o.metrics.OptimizationsTotal.WithLabelValues(tier).Inc()
	o.logger.Debug().
		Str("tier", tier).
		Int("keywords", len(result.Keywords)).
		Int("confidence", result.Confidence).
		Msg("keyword optimization complete")
	return result
}

// cleanKeywords trims the model's keywords, drops empties, and caps the
// list at five entries.
func cleanKeywords(raw []string) []string {
	keywords := make([]string, 0, maxKeywords)
	for _, kw := range raw {
		kw = strings.TrimSpace(kw)
		if kw == "" || len(keywords) == maxKeywords {
			continue
		}
		keywords = append(keywords, kw)
	}
	return keywords
}

// extractFromText scans the raw reply line by line for quoted
// alphabetic phrases longer than 2 characters, collecting up to 5.
func extractFromText(raw, userQuery string) (*domain.KeywordOptimizationResult, bool) {
	keywords := make([]string, 0, maxKeywords)
	for _, line := range strings.Split(raw, "\n") {
		for _, match := range quotedPhrasePattern.FindAllStringSubmatch(line, -1) {
			keyword := strings.TrimSpace(match[1])
			if keyword == "" || len(keyword) <= 2 || len(keywords) >= maxKeywords {
				continue
			}
			keywords = append(keywords, keyword)
		}
	}
	if len(keywords) == 0 {
		return nil, false
	}

	return &domain.KeywordOptimizationResult{
		OriginalQuery: userQuery,
		Analysis:      "텍스트에서 키워드를 추출했습니다.",
		Strategy:      "모델 응답에서 추출한 검색어",
		Keywords:      keywords,
		Confidence:    heuristicConfidence,
		Reasoning:     "텍스트 파싱을 통해 추출된 키워드",
	}, true
}

// fallbackResult resolves the query against the static topic mapping,
// defaulting to a generic AI/ML list when no topic matches.
func fallbackResult(userQuery string) *domain.KeywordOptimizationResult {
	keywords := defaultKeywords
	for _, entry := range topicKeywords {
		if strings.Contains(userQuery, entry.topic) {
			keywords = entry.keywords
			break
		}
	}

	return &domain.KeywordOptimizationResult{
		OriginalQuery: userQuery,
		Analysis:      "기본 키워드 매핑을 사용했습니다.",
		Strategy:      "사전 정의된 키워드 매핑",
		Keywords:      keywords,
		Confidence:    fallbackConfidence,
		Reasoning:     "사용자 요청에서 주요 키워드를 매핑하여 생성",
	}
}

func clampConfidence(c int) int {
	if c < minConfidence {
		return minConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

func buildOptimizePrompt(userQuery string) string {
	return fmt.Sprintf(`당신은 학술 논문 검색 전문가입니다. 사용자의 자연어 요청을 분석해서 arXiv에서 효과적인 검색을 위한 최적화된 영어 키워드들을 생성해주세요.

사용자 요청: %q

다음 형식으로 정확히 응답해주세요:

{
  "originalQuery": %q,
  "analysisKorean": "사용자 요청에 대한 간단한 분석 (한국어)",
  "strategy": "검색 전략 설명 (한국어)",
  "keywords": [
    "keyword1",
    "keyword2",
    "keyword3",
    "keyword4",
    "keyword5"
  ],
  "confidence": 85,
  "reasoning": "이 키워드들을 선택한 이유 (한국어)"
}

규칙:
1. keywords는 반드시 영어로 작성
2. arXiv 검색에 최적화된 학술 용어 사용
3. 5개의 키워드 생성 (구체적 → 일반적 순서)
4. confidence는 60-95 사이의 숫자
5. JSON 형식만 응답 (다른 텍스트 추가 금지)`, userQuery, userQuery)
}
