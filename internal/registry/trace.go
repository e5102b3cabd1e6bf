// Package registry provides tracing interfaces for parser debugging.
package registry

import (
	"time"

	"itinerary_parser/internal/leg"
)

// TraceResult contains trace information from classifying and parsing one text.
type TraceResult struct {
	Tag        leg.FormatTag `json:"format"`
	ParserName string        `json:"parser"`
	Checks     []QuickCheck  `json:"checks"`     // Classifier rules tried, in order.
	Extractors []Extractor   `json:"extractors"` // One entry per draft field the parser looks for.
}

// QuickCheck contains the result of one classifier rule.
type QuickCheck struct {
	Parser string `json:"parser"`
	Passed bool   `json:"passed"`
}

// Extractor contains debug information about a field extractor.
type Extractor struct {
	Name    string `json:"name"`              // Draft field, e.g. "carrier".
	Pattern string `json:"pattern,omitempty"` // The regex or label used to locate it.
	Matched bool   `json:"matched"`
	Value   string `json:"value,omitempty"`
}

// Missing returns the names of extractors that did not match. These fields
// carry their default in the draft.
func (t *TraceResult) Missing() []string {
	if t == nil {
		return nil
	}
	var missing []string
	for _, e := range t.Extractors {
		if !e.Matched {
			missing = append(missing, e.Name)
		}
	}
	return missing
}

// Traceable is implemented by parsers that support debug tracing.
// This allows callers to see which fields fell back to their default.
type Traceable interface {
	ParseWithTrace(text string, ctx leg.Context) (leg.Draft, *TraceResult)
}

// Extractors accumulates extractor results while a parser runs.
type Extractors []Extractor

// Add records one field lookup and returns matched.
func (e *Extractors) Add(name, pattern, value string, matched bool) bool {
	*e = append(*e, Extractor{Name: name, Pattern: pattern, Matched: matched, Value: value})
	return matched
}

// AddTime is Add for an instant field; the value is RFC 3339 when matched.
func (e *Extractors) AddTime(name, pattern string, t time.Time, matched bool) bool {
	value := ""
	if matched {
		value = t.UTC().Format(time.RFC3339)
	}
	return e.Add(name, pattern, value, matched)
}
