// Package domain defines the core types and error taxonomy for the
// paper search service.
package domain

import "strings"

// Sentinel values used when a feed entry is missing a field.
const (
	// UnknownID is the paper ID used when a feed entry carries no identifier.
	UnknownID = "unknown"

	// ParseErrorID marks a placeholder record substituted for an entry
	// that could not be normalized.
	ParseErrorID = "parse-error"

	// UnknownDate is stored when a date is absent or unparseable.
	UnknownDate = "Unknown"

	// UnknownCategory is the primary category for papers without one.
	UnknownCategory = "Unknown"

	// NoTitle is substituted when a title is empty after cleaning.
	NoTitle = "No Title"

	// NoAbstract is substituted when a summary is empty after cleaning.
	NoAbstract = "No Abstract Available"
)

// DefaultRelevanceScore is assigned to papers that were surfaced in a
// ranked result set without AI analysis. An unenriched paper must carry
// this explicit degraded default, never a silent zero.
const DefaultRelevanceScore = 50

// Author is a single paper author.
type Author struct {
	Name string `json:"name"`
}

// AIAnalysis holds the model-derived rationale attached to a paper
// during relevance enrichment.
type AIAnalysis struct {
	Reasoning   string   `json:"reasoning"`
	KeyInsights []string `json:"keyInsights"`
	Methodology string   `json:"methodology"`
}

// PaperRecord is the canonical in-memory representation of one
// literature item. It is created by the record normalizer from a raw
// feed entry, optionally mutated by the relevance enricher during
// orchestration, and held only for the duration of one request.
type PaperRecord struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Authors         []Author `json:"authors"`
	Summary         string   `json:"summary"`
	Categories      []string `json:"categories"`
	PrimaryCategory string   `json:"primaryCategory"`

	// Published and Updated are date-only strings ("2006-01-02"),
	// or "Unknown" when the feed date is absent or unparseable.
	Published string `json:"published"`
	Updated   string `json:"updated"`

	// PDFURL is the document (PDF) link; may be empty.
	PDFURL string `json:"pdfUrl"`

	// AbstractURL is the landing-page link, synthesized from the feed's
	// canonical abstract-page template when the entry carries none.
	AbstractURL string `json:"abstractUrl"`

	// RelevanceScore is 0 until enrichment and only meaningful after it.
	RelevanceScore int `json:"relevanceScore"`

	// AIAnalysis is nil until enrichment (or default assignment).
	AIAnalysis *AIAnalysis `json:"aiAnalysis"`
}

// AuthorNames returns the comma-joined author names, or fallback when
// the paper has no authors.
func (p *PaperRecord) AuthorNames(fallback string) string {
	if len(p.Authors) == 0 {
		return fallback
	}
	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// NewParseErrorRecord returns the placeholder record substituted for a
// feed entry that failed normalization. Substituting rather than
// raising keeps a malformed entry from aborting the batch.
func NewParseErrorRecord() *PaperRecord {
	return &PaperRecord{
		ID:              ParseErrorID,
		Title:           "Parsing Error",
		Authors:         []Author{},
		Summary:         "Failed to parse paper information",
		Categories:      []string{},
		PrimaryCategory: UnknownCategory,
		Published:       UnknownDate,
		Updated:         UnknownDate,
	}
}
