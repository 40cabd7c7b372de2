// Package observability provides logging and metrics support for the
// paper search service.
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("request_id", reqID).Msg("smart search started")
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("papermind")
//
// Record metrics:
//
//	metrics.SearchesStarted.Inc()
//	metrics.PapersAnalyzed.Add(5)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: Correlation identifier for one HTTP request
//   - query: User's research query
//   - keyword: Effective search term sent to the feed
//   - paper_id: arXiv paper identifier
//   - tier: Degradation tier that produced a result (structured,
//     heuristic, fallback)
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
