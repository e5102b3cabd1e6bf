// Package interpret is the entry point that turns pasted itinerary text into
// a leg draft. It wires the registered format parsers to their callers.
package interpret

import (
	"itinerary_parser/internal/leg"
	_ "itinerary_parser/internal/parsers" // register all format parsers
	"itinerary_parser/internal/registry"
)

// Result is the outcome of interpreting one pasted block.
type Result struct {
	Format  leg.FormatTag `json:"format"`
	Draft   leg.Draft     `json:"draft"`
	Missing []string      `json:"missing"` // Draft fields left at their default.
}

// ParseLeg classifies text and parses it with the matching parser. It never
// fails; fields that cannot be found carry their default.
func ParseLeg(text, defaultTimezone, tripID string) leg.Draft {
	_, d := registry.Dispatch(text, leg.Context{DefaultTimezone: defaultTimezone, TripID: tripID})
	return d
}

// Classify returns the source format of text.
func Classify(text string) leg.FormatTag {
	return registry.Classify(text)
}

// Interpret parses text and reports which fields fell back to defaults.
func Interpret(text string, ctx leg.Context) Result {
	res, _ := Trace(text, ctx)
	return res
}

// Trace is Interpret that also returns the classifier and extractor trace.
func Trace(text string, ctx leg.Context) (Result, *registry.TraceResult) {
	tag, d, trace := registry.Default().DispatchWithTrace(text, ctx)
	missing := trace.Missing()
	if missing == nil {
		missing = []string{}
	}
	return Result{Format: tag, Draft: d, Missing: missing}, trace
}
