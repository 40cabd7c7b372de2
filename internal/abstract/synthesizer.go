// Package abstract drafts an academic abstract from research details
// and a set of reference papers.
//
// Synthesis follows the same never-fail shape as keyword optimization:
// a structured model reply is preferred, a best-effort body is lifted
// from the raw reply when parsing fails, and a deterministic template
// built from the research details covers model outages. The resulting
// abstract is always at least 50 characters long.
package abstract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

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
	synthesizeMaxTokens   = 2000
	synthesizeTemperature = 0.3

	// minAbstractLength is the shortest abstract considered usable; a
	// model reply below it is replaced by the templated fallback.
	minAbstractLength = 50

	maxReferencePapers  = 5
	maxReferencedTitles = 3

	heuristicConfidence = 60
	fallbackConfidence  = 50
)

// Synthesizer drafts abstracts via the configured LLM, degrading to
// deterministic output when the model is unavailable or its reply is
// unusable.
type Synthesizer struct {
	client  llm.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewSynthesizer creates a Synthesizer backed by the given LLM client.
func NewSynthesizer(client llm.Client, logger zerolog.Logger, metrics *observability.Metrics) *Synthesizer {
	return &Synthesizer{
		client:  client,
		logger:  logger.With().Str("component", "abstract_synthesizer").Logger(),
		metrics: metrics,
	}
}

// Synthesize drafts an abstract for the given research details using up
// to five reference papers.
//
// It never returns an error: model failures and malformed replies are
// absorbed by the degradation chain.
func (s *Synthesizer) Synthesize(ctx context.Context, info domain.ResearchInfo, papers []*domain.PaperRecord, searchKeyword string) *domain.AbstractSynthesisResult {
	if len(papers) > maxReferencePapers {
		papers = papers[:maxReferencePapers]
	}

	resp, err := s.client.Complete(ctx, llm.Request{
		Prompt:      buildAbstractPrompt(info, papers, searchKeyword),
		MaxTokens:   synthesizeMaxTokens,
		Temperature: synthesizeTemperature,
	})
	if err != nil {
		s.metrics.LLMRequests.WithLabelValues(s.client.Provider(), "error").Inc()
		s.logger.Warn().Err(err).Str("title", info.Title).
			Msg("model call failed, using templated abstract")
		return s.finish(TierFallback, fallbackAbstract(info, papers))
	}
	s.metrics.LLMRequests.WithLabelValues(s.client.Provider(), "success").Inc()

	raw := strings.TrimSpace(resp.Content)

	var result *domain.AbstractSynthesisResult
	tier := TierStructured
	if parsed, ok := parseStructured(raw); ok {
		result = parsed
	} else {
		s.logger.Warn().Str("title", info.Title).
			Msg("structured parse failed, extracting abstract from raw reply")
		result = extractFromText(raw, info)
		tier = TierHeuristic
	}

	if utf8.RuneCountInString(result.Abstract) < minAbstractLength {
		s.logger.Warn().Str("title", info.Title).
			Msg("abstract below minimum length, using templated abstract")
		result = fallbackAbstract(info, papers)
		tier = TierFallback
	}

	return s.finish(tier, result)
}

func (s *Synthesizer) finish(tier string, result *domain.AbstractSynthesisResult) *domain.AbstractSynthesisResult {
	s.metrics.AbstractsTotal.WithLabelValues(tier).Inc()
	s.logger.Debug().
		Str("tier", tier).
		Int("word_count", result.WordCount).
		Int("confidence", result.Confidence).
		Msg("abstract synthesis complete")
	return result
}

// parseStructured decodes the model reply as the requested JSON shape
// and normalizes it: missing structure sections get generic labels, the
// referenced-title list caps at three, and a zero word count falls back
// to the abstract's character count.
func parseStructured(raw string) (*domain.AbstractSynthesisResult, bool) {
	var result domain.AbstractSynthesisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	if result.Abstract == "" {
		return nil, false
	}

	defaultSection(&result.Structure.Background, "연구 배경")
	defaultSection(&result.Structure.Objective, "연구 목적")
	defaultSection(&result.Structure.Methodology, "연구 방법")
	defaultSection(&result.Structure.ExpectedResults, "기대 결과")
	defaultSection(&result.Structure.Significance, "연구의 의의")

	if len(result.ReferencedPapers) > maxReferencedTitles {
		result.ReferencedPapers = result.ReferencedPapers[:maxReferencedTitles]
	}
	if result.WordCount <= 0 {
		result.WordCount = utf8.RuneCountInString(result.Abstract)
	}
	return &result, true
}

// extractFromText lifts a best-effort abstract body out of a raw model
// reply: the first line longer than 100 characters that contains no
// braces, or failing that a stripped 300-character prefix of the whole
// reply.
func extractFromText(raw string, info domain.ResearchInfo) *domain.AbstractSynthesisResult {
	var body string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > 100 && !strings.ContainsAny(line, "{}") {
			body = line
			break
		}
	}
	if body == "" {
		stripped := strings.NewReplacer("{", "", "}", "", `"`, "").Replace(raw)
		runes := []rune(stripped)
		if len(runes) > 300 {
			runes = runes[:300]
		}
		body = string(runes) + "..."
	}

	return &domain.AbstractSynthesisResult{
		Abstract:  body,
		WordCount: utf8.RuneCountInString(body),
		Structure: domain.AbstractStructure{
			Background:      "배경 정보 추출됨",
			Objective:       valueOr(info.Objective, "목적 명시 필요"),
			Methodology:     valueOr(info.Methodology, "방법론 명시 필요"),
			ExpectedResults: "결과 예상됨",
			Significance:    "연구 의의 있음",
		},
		Confidence:       heuristicConfidence,
		Suggestions:      []string{"더 구체적인 연구 정보 제공", "참고논문 추가 검토"},
		ReferencedPapers: []string{"텍스트 파싱으로 추출된 내용"},
	}
}

// fallbackAbstract concatenates the research details into a templated
// paragraph, substituting filler text for missing fields. The template
// always clears the minimum length.
func fallbackAbstract(info domain.ResearchInfo, papers []*domain.PaperRecord) *domain.AbstractSynthesisResult {
	body := fmt.Sprintf("%s에 관한 연구이다. %s %s %d개의 관련 논문을 참고하여 %s 본 연구는 해당 분야의 이론적 토대를 강화하고 실무적 시사점을 제공할 것이다.",
		info.Title,
		valueOr(info.Objective, "본 연구의 목적은 해당 분야의 발전에 기여하는 것이다."),
		valueOr(info.Methodology, "체계적인 연구 방법론을 통해 분석을 수행한다."),
		len(papers),
		valueOr(info.ExpectedResults, "의미있는 결과를 도출할 것으로 기대된다."))

	titles := make([]string, 0, maxReferencedTitles)
	for _, p := range papers {
		if len(titles) == maxReferencedTitles {
			break
		}
		titles = append(titles, p.Title)
	}

	return &domain.AbstractSynthesisResult{
		Abstract:  body,
		WordCount: utf8.RuneCountInString(body),
		Structure: domain.AbstractStructure{
			Background:      "연구 배경",
			Objective:       valueOr(info.Objective, "연구 목적"),
			Methodology:     valueOr(info.Methodology, "연구 방법"),
			ExpectedResults: valueOr(info.ExpectedResults, "기대 결과"),
			Significance:    "연구의 의의",
		},
		Confidence:       fallbackConfidence,
		Suggestions:      []string{"더 구체적인 연구 계획 수립", "추가 문헌 조사"},
		ReferencedPapers: titles,
	}
}

func buildAbstractPrompt(info domain.ResearchInfo, papers []*domain.PaperRecord, searchKeyword string) string {
	summaries := make([]string, 0, len(papers))
	for i, p := range papers {
		score := p.RelevanceScore
		if score == 0 {
			score = domain.DefaultRelevanceScore
		}
		summaries = append(summaries, fmt.Sprintf("%d. %s\n   저자: %s\n   초록: %s...\n   관련성: %d점",
			i+1, p.Title, p.AuthorNames("Unknown"), truncateRunes(p.Summary, 200), score))
	}

	return fmt.Sprintf(`당신은 학술 논문 작성 전문가입니다. 주어진 연구 정보와 참고논문들을 바탕으로 고품질의 학술 초록을 생성해주세요.

연구 정보:
- 제목: %s
- 목적: %s
- 방법론: %s
- 기대 결과: %s
- 검색 키워드: %s

참고 논문들:
%s

다음 형식으로 정확히 응답해주세요:

{
  "abstract": "생성된 초록 내용 (한국어, 150-300단어)",
  "wordCount": 250,
  "structure": {
    "background": "배경 및 동기",
    "objective": "연구 목적",
    "methodology": "연구 방법",
    "expectedResults": "기대 효과",
    "significance": "연구의 의의"
  },
  "confidence": 85,
  "suggestions": ["개선 제안 1", "개선 제안 2"],
  "referencedPapers": ["활용된 주요 논문 제목들"]
}

규칙:
1. 학술적이고 전문적인 톤 유지
2. 논리적 흐름으로 구성 (배경→목적→방법→결과→의의)
3. 참고논문의 핵심 내용을 자연스럽게 반영
4. 구체적이고 측정 가능한 표현 사용
5. JSON 형식만 응답 (다른 텍스트 추가 금지)`,
		info.Title,
		valueOr(info.Objective, "명시되지 않음"),
		valueOr(info.Methodology, "명시되지 않음"),
		valueOr(info.ExpectedResults, "명시되지 않음"),
		valueOr(searchKeyword, "명시되지 않음"),
		strings.Join(summaries, "\n\n"))
}

// defaultSection fills a blank structure section with its generic label.
func defaultSection(s *string, fallback string) {
	if strings.TrimSpace(*s) == "" {
		*s = fallback
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
