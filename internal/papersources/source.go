// Package papersources provides the client plumbing for querying
// external literature feeds.
//
// The package defines the PaperSource capability interface plus a shared
// rate-limited HTTP client. The arxiv subpackage implements the interface
// for the arXiv Atom API; the orchestrator and its tests depend only on
// the interface, so deterministic stand-ins can be substituted.
package papersources

import (
	"context"

	"github.com/papermind/paper-search-service/internal/domain"
)

// Sort field and order values understood by the feed query.
const (
	SortByRelevance     = "relevance"
	SortBySubmittedDate = "submittedDate"

	SortOrderDescending = "descending"
	SortOrderAscending  = "ascending"
)

// SearchParams defines the parameters for one literature feed query.
type SearchParams struct {
	// Query is the search expression (required).
	Query string

	// MaxResults limits the number of papers returned in a single
	// request. A value of 0 uses the source's default limit.
	MaxResults int

	// Offset is the starting position for paginated results.
	Offset int

	// SortBy selects the sort field; empty means relevance.
	SortBy string

	// SortOrder selects the sort direction; empty means descending.
	SortOrder string
}

// SearchResult contains the results from a feed search operation.
type SearchResult struct {
	// Papers contains the normalized records returned by the search.
	// Empty when no papers match, which is success, not an error.
	Papers []*domain.PaperRecord

	// TotalResults is the total number of papers matching the query as
	// reported by the feed, regardless of the result cap.
	TotalResults int
}

// PaperSource is the capability interface implemented by literature
// feed clients.
type PaperSource interface {
	// Search queries the feed for papers matching the given parameters.
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)

	// Name returns the human-readable source name.
	Name() string
}
