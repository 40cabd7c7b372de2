package httpserver

import (
	"net/http"
	"time"
)

// Error codes returned in the error envelope.
const (
	codeInvalidBody             = "INVALID_BODY"
	codeMissingQuery            = "MISSING_QUERY"
	codeMissingSearchTerm       = "MISSING_SEARCH_TERM"
	codeMissingTitle            = "MISSING_TITLE"
	codeMissingPapers           = "MISSING_PAPERS"
	codeMissingKeyword          = "MISSING_KEYWORD"
	codeSearchTimeout           = "SEARCH_TIMEOUT"
	codeSmartSearchFailed       = "SMART_SEARCH_FAILED"
	codeKeywordValidationFailed = "KEYWORD_VALIDATION_FAILED"
)

// dataEnvelope wraps successful API responses.
type dataEnvelope struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

// errorEnvelope wraps failed API responses.
type errorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// validateKeywordResponse is the flat response of the keyword probe.
type validateKeywordResponse struct {
	Success     bool   `json:"success"`
	Keyword     string `json:"keyword"`
	ResultCount int    `json:"resultCount"`
	Valid       bool   `json:"valid"`
	Message     string `json:"message"`
}

// writeData writes a successful response in the standard envelope.
func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, dataEnvelope{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
}

// writeError writes an error response in the standard envelope.
func writeError(w http.ResponseWriter, statusCode int, code, errMsg, detail string) {
	writeJSON(w, statusCode, errorEnvelope{
		Error:   errMsg,
		Code:    code,
		Message: detail,
	})
}
