package arxiv

import (
	"regexp"
	"strings"
	"time"

	"github.com/papermind/paper-search-service/internal/domain"
)

// abstractURLPrefix is the canonical abstract-page URL template, used to
// synthesize a landing link when the entry carries none.
const abstractURLPrefix = "https://arxiv.org/abs/"

var (
	// versionSuffixRegex matches a trailing version suffix like "v2".
	versionSuffixRegex = regexp.MustCompile(`v\d+$`)

	// markupTagRegex matches HTML/XML markup tags embedded in feed text.
	markupTagRegex = regexp.MustCompile(`<[^>]*>`)
)

// entryToRecord converts one Atom entry into a canonical PaperRecord.
// A malformed entry must not abort the batch: any panic during
// normalization is recovered and a placeholder record is substituted.
func entryToRecord(entry *Entry) (record *domain.PaperRecord) {
	defer func() {
		if r := recover(); r != nil {
			record = domain.NewParseErrorRecord()
		}
	}()

	id := extractID(entry.ID)

	authors := make([]domain.Author, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			name = "Unknown"
		}
		authors = append(authors, domain.Author{Name: name})
	}

	categories := make([]string, 0, len(entry.Categories))
	for _, cat := range entry.Categories {
		if cat.Term != "" {
			categories = append(categories, cat.Term)
		}
	}
	primaryCategory := domain.UnknownCategory
	if len(categories) > 0 {
		primaryCategory = categories[0]
	}

	pdfURL, abstractURL := classifyLinks(entry.Links)
	if abstractURL == "" {
		abstractURL = abstractURLPrefix + id
	}

	title := cleanText(entry.Title)
	if title == "" {
		title = domain.NoTitle
	}
	summary := cleanText(entry.Summary)
	if summary == "" {
		summary = domain.NoAbstract
	}

	return &domain.PaperRecord{
		ID:              id,
		Title:           title,
		Authors:         authors,
		Summary:         summary,
		Categories:      categories,
		PrimaryCategory: primaryCategory,
		Published:       formatDate(entry.Published),
		Updated:         formatDate(entry.Updated),
		PDFURL:          pdfURL,
		AbstractURL:     abstractURL,
	}
}

// extractID takes the trailing path segment of the entry identifier URI
// and strips any trailing version suffix.
// "http://arxiv.org/abs/2301.12345v1" becomes "2301.12345".
func extractID(entryURL string) string {
	entryURL = strings.TrimSpace(entryURL)
	if entryURL == "" {
		return domain.UnknownID
	}

	segments := strings.Split(entryURL, "/")
	id := segments[len(segments)-1]
	id = versionSuffixRegex.ReplaceAllString(id, "")
	if id == "" {
		return domain.UnknownID
	}
	return id
}

// classifyLinks scans the entry links and picks out the document (PDF)
// link and the landing-page link.
func classifyLinks(links []Link) (pdfURL, abstractURL string) {
	for _, link := range links {
		switch {
		case link.Type == "application/pdf" || strings.HasSuffix(link.Href, ".pdf"):
			pdfURL = link.Href
		case link.Type == "text/html" || link.Rel == "alternate":
			abstractURL = link.Href
		}
	}
	return pdfURL, abstractURL
}

// cleanText strips markup tags, collapses runs of whitespace and
// newlines into single spaces, and trims the ends.
func cleanText(text string) string {
	text = markupTagRegex.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// formatDate parses a feed timestamp into a date-only string.
// Absent or unparseable timestamps become "Unknown" rather than an error.
func formatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.UnknownDate
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return domain.UnknownDate
	}
	return t.Format("2006-01-02")
}
