package domain

// KeywordOptimizationResult is the outcome of converting a free-text
// research request into arXiv search keywords. The fallback chain in
// the keywords package guarantees Keywords is never empty.
type KeywordOptimizationResult struct {
	// OriginalQuery echoes the caller's query.
	OriginalQuery string `json:"originalQuery"`

	// Analysis is a short rationale for how the query was interpreted.
	Analysis string `json:"analysisKorean"`

	// Strategy describes the search strategy behind the keyword choice.
	Strategy string `json:"strategy"`

	// Keywords holds 1-5 non-empty English search terms, most specific first.
	Keywords []string `json:"keywords"`

	// Confidence is 0-100; degraded tiers report fixed lower values.
	Confidence int `json:"confidence"`

	// Reasoning explains why these keywords were selected.
	Reasoning string `json:"reasoning"`
}
