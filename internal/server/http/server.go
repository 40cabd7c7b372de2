// Package httpserver provides the HTTP REST API server for the paper
// search service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/papermind/paper-search-service/internal/domain"
	"github.com/papermind/paper-search-service/internal/llm"
	"github.com/papermind/paper-search-service/internal/papersources"
	"github.com/papermind/paper-search-service/internal/search"
)

// healthCheckTimeout bounds the model round trip made by the health
// endpoint.
const healthCheckTimeout = 5 * time.Second

// KeywordOptimizer converts a research request into search keywords.
type KeywordOptimizer interface {
	Optimize(ctx context.Context, userQuery string) *domain.KeywordOptimizationResult
}

// AbstractSynthesizer drafts an abstract from research details and
// reference papers.
type AbstractSynthesizer interface {
	Synthesize(ctx context.Context, info domain.ResearchInfo, papers []*domain.PaperRecord, searchKeyword string) *domain.AbstractSynthesisResult
}

// SmartSearcher runs the search-and-enrichment pipeline.
type SmartSearcher interface {
	SmartSearch(ctx context.Context, req search.Request) (*search.Result, error)
}

// Server is the HTTP REST API server.
type Server struct {
	router      chi.Router
	httpServer  *http.Server
	optimizer   KeywordOptimizer
	synthesizer AbstractSynthesizer
	searcher    SmartSearcher
	source      papersources.PaperSource
	llmClient   llm.Client
	llmProvider string
	logger      zerolog.Logger
	metricsPath string
}

// Config holds HTTP server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// MetricsPath exposes the Prometheus endpoint when non-empty.
	MetricsPath string

	// LLMProvider names the configured model provider for health
	// reporting.
	LLMProvider string
}

// NewServer creates a new HTTP server with all dependencies.
func NewServer(
	cfg Config,
	optimizer KeywordOptimizer,
	synthesizer AbstractSynthesizer,
	searcher SmartSearcher,
	source papersources.PaperSource,
	llmClient llm.Client,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		optimizer:   optimizer,
		synthesizer: synthesizer,
		searcher:    searcher,
		source:      source,
		llmClient:   llmClient,
		llmProvider: cfg.LLMProvider,
		logger:      logger.With().Str("component", "http-server").Logger(),
		metricsPath: cfg.MetricsPath,
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// buildRouter creates the chi router with all middleware and routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestContextMiddleware)
	r.Use(s.requestLogMiddleware)

	r.Get("/healthz", s.livenessHandler)
	if s.metricsPath != "" {
		r.Handle(s.metricsPath, promhttp.Handler())
	}

	r.Route("/api/mcp", func(r chi.Router) {
		r.Use(jsonContentTypeMiddleware)

		r.Get("/health", s.serviceHealthHandler)
		r.Post("/optimize-keywords", s.optimizeKeywordsHandler)
		r.Post("/smart-search", s.smartSearchHandler)
		r.Post("/generate-abstract", s.generateAbstractHandler)
		r.Post("/validate-keyword", s.validateKeywordHandler)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// livenessHandler returns basic liveness status.
func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// serviceHealthHandler reports the status of the service and its
// collaborators. When a model client is present the handler makes a
// minimal live call so the report distinguishes a configured key from
// a working one.
func (s *Server) serviceHealthHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"mcp":       "healthy",
		"llm":       "not_configured",
		"provider":  s.llmProvider,
		"arxiv":     "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if s.llmClient != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		_, err := s.llmClient.Complete(ctx, llm.Request{
			Prompt:    "test query",
			MaxTokens: 10,
		})
		if err != nil {
			status["llm"] = "error"
			status["llmError"] = err.Error()
			s.logger.Warn().Err(err).Msg("model health check failed")
		} else {
			status["llm"] = "working"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  status,
		"message": "MCP 서비스가 정상 작동 중입니다.",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Best-effort log; headers already sent.
		_ = err
	}
}
