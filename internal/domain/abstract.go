package domain

// ResearchInfo describes the study an abstract is drafted for.
// Title is required; the remaining fields default to filler text in
// the static fallback tier when absent.
type ResearchInfo struct {
	Title           string `json:"title"`
	Objective       string `json:"objective,omitempty"`
	Methodology     string `json:"methodology,omitempty"`
	ExpectedResults string `json:"expectedResults,omitempty"`
}

// AbstractStructure labels the five sections of a drafted abstract.
type AbstractStructure struct {
	Background      string `json:"background"`
	Objective       string `json:"objective"`
	Methodology     string `json:"methodology"`
	ExpectedResults string `json:"expectedResults"`
	Significance    string `json:"significance"`
}

// AbstractSynthesisResult is a drafted abstract with its metadata.
// The fallback chain guarantees Abstract is non-empty and at least 50
// characters long.
type AbstractSynthesisResult struct {
	Abstract         string            `json:"abstract"`
	WordCount        int               `json:"wordCount"`
	Structure        AbstractStructure `json:"structure"`
	Confidence       int               `json:"confidence"`
	Suggestions      []string          `json:"suggestions"`
	ReferencedPapers []string          `json:"referencedPapers"`
}
