package formatter

import (
	"encoding/json"
)

// JSONFormatter outputs diffs and results as pretty-printed JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatDiff returns the DiffView as indented JSON.
func (f *JSONFormatter) FormatDiff(v DiffView) string {
	return marshal(v)
}

// FormatResult returns the Result as indented JSON.
func (f *JSONFormatter) FormatResult(r Result) string {
	return marshal(r)
}

func marshal(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		// Fallback: should never happen since views are fully serializable.
		return `{"error": "failed to marshal result"}`
	}
	return string(data) + "\n"
}
