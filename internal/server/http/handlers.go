package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/papermind/paper-search-service/internal/domain"
	"github.com/papermind/paper-search-service/internal/papersources"
	"github.com/papermind/paper-search-service/internal/search"
)

// maxRequestBodySize caps request bodies at 1 MB.
const maxRequestBodySize = 1 << 20

// validateKeywordMaxResults is the probe size for keyword validation.
const validateKeywordMaxResults = 5

var validate = validator.New()

// optimizeKeywordsRequest is the JSON request body for keyword
// optimization.
type optimizeKeywordsRequest struct {
	UserQuery string `json:"userQuery" validate:"required"`
	Language  string `json:"language,omitempty"`
}

// smartSearchRequest is the JSON request body for the smart search.
type smartSearchRequest struct {
	UserQuery       string `json:"userQuery,omitempty"`
	SelectedKeyword string `json:"selectedKeyword,omitempty"`
	MaxResults      int    `json:"maxResults,omitempty" validate:"gte=0"`
}

// generateAbstractRequest is the JSON request body for abstract
// synthesis.
type generateAbstractRequest struct {
	ResearchInfo    domain.ResearchInfo   `json:"researchInfo"`
	ReferencePapers []*domain.PaperRecord `json:"referencePapers" validate:"required,min=1"`
	SearchKeyword   string                `json:"searchKeyword,omitempty"`
}

// validateKeywordRequest is the JSON request body for keyword
// validation.
type validateKeywordRequest struct {
	Keyword string `json:"keyword" validate:"required"`
}

// decodeBody reads and unmarshals a size-limited JSON request body.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// optimizeKeywordsHandler handles POST /api/mcp/optimize-keywords.
func (s *Server) optimizeKeywordsHandler(w http.ResponseWriter, r *http.Request) {
	var req optimizeKeywordsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "요청 본문이 올바르지 않습니다.", "")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingQuery, "사용자 요청이 필요합니다.", "")
		return
	}

	result := s.optimizer.Optimize(r.Context(), req.UserQuery)
	writeData(w, http.StatusOK, result)
}

// smartSearchHandler handles POST /api/mcp/smart-search.
func (s *Server) smartSearchHandler(w http.ResponseWriter, r *http.Request) {
	var req smartSearchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "요청 본문이 올바르지 않습니다.", "")
		return
	}
	if strings.TrimSpace(req.UserQuery) == "" && strings.TrimSpace(req.SelectedKeyword) == "" {
		writeError(w, http.StatusBadRequest, codeMissingSearchTerm, "검색어 또는 선택된 키워드가 필요합니다.", "")
		return
	}

	result, err := s.searcher.SmartSearch(r.Context(), search.Request{
		UserQuery:       req.UserQuery,
		SelectedKeyword: req.SelectedKeyword,
		MaxResults:      req.MaxResults,
	})
	if err != nil {
		s.writeSearchError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// writeSearchError maps pipeline errors onto the HTTP error taxonomy.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, codeMissingSearchTerm, "검색어 또는 선택된 키워드가 필요합니다.", "")
	case errors.Is(err, domain.ErrSearchTimeout):
		writeError(w, http.StatusGatewayTimeout, codeSearchTimeout, "스마트 검색에 실패했습니다.", err.Error())
	default:
		s.logger.Error().Err(err).Msg("smart search failed")
		writeError(w, http.StatusInternalServerError, codeSmartSearchFailed, "스마트 검색에 실패했습니다.", err.Error())
	}
}

// generateAbstractHandler handles POST /api/mcp/generate-abstract.
func (s *Server) generateAbstractHandler(w http.ResponseWriter, r *http.Request) {
	var req generateAbstractRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "요청 본문이 올바르지 않습니다.", "")
		return
	}
	if strings.TrimSpace(req.ResearchInfo.Title) == "" {
		writeError(w, http.StatusBadRequest, codeMissingTitle, "연구 제목이 필요합니다.", "")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingPapers, "참고할 논문이 최소 1개 이상 필요합니다.", "")
		return
	}

	result := s.synthesizer.Synthesize(r.Context(), req.ResearchInfo, req.ReferencePapers, req.SearchKeyword)
	writeData(w, http.StatusOK, result)
}

// validateKeywordHandler handles POST /api/mcp/validate-keyword. It
// probes the paper source with a small search and reports whether the
// keyword yields any results.
func (s *Server) validateKeywordHandler(w http.ResponseWriter, r *http.Request) {
	var req validateKeywordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "요청 본문이 올바르지 않습니다.", "")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, codeMissingKeyword, "키워드가 필요합니다.", "")
		return
	}

	found, err := s.source.Search(r.Context(), papersources.SearchParams{
		Query:      req.Keyword,
		MaxResults: validateKeywordMaxResults,
		SortBy:     papersources.SortByRelevance,
		SortOrder:  papersources.SortOrderDescending,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("keyword", req.Keyword).Msg("keyword validation failed")
		writeError(w, http.StatusInternalServerError, codeKeywordValidationFailed, "키워드 검증 실패", err.Error())
		return
	}

	count := len(found.Papers)
	message := fmt.Sprintf("%q에 대한 검색 결과가 없습니다.", req.Keyword)
	if count > 0 {
		message = fmt.Sprintf("%q로 %d개의 논문을 찾았습니다.", req.Keyword, count)
	}
	writeJSON(w, http.StatusOK, validateKeywordResponse{
		Success:     true,
		Keyword:     req.Keyword,
		ResultCount: count,
		Valid:       count > 0,
		Message:     message,
	})
}
