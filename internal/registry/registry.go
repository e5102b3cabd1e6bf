// Package registry provides the format parser registry that classifies pasted
// itinerary text and dispatches it to the matching parser.
package registry

import (
	"sort"
	"sync"

	"itinerary_parser/internal/leg"
)

// Parser is implemented by each format parser.
type Parser interface {
	// Name returns the parser's unique identifier.
	Name() string

	// Tag returns the source format this parser handles.
	Tag() leg.FormatTag

	// QuickCheck is the classifier rule for this format. It reports whether
	// the text is written in the parser's layout.
	QuickCheck(text string) bool

	// Priority determines the classifier precedence.
	// Lower number = checked first. More specific layouts go first.
	Priority() int

	// Parse extracts a draft. It never fails: fields that cannot be located
	// take their default.
	Parse(text string, ctx leg.Context) leg.Draft
}

// Registry holds all registered parsers organised for classification.
type Registry struct {
	mu sync.RWMutex

	// rules holds classifying parsers, sorted by Priority (ascending)
	rules []Parser

	// byTag maps each format tag to its parser
	byTag map[leg.FormatTag]Parser

	// catchAll handles text no rule claims
	catchAll Parser

	// sorted tracks whether rules have been sorted
	sorted bool
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		byTag: make(map[leg.FormatTag]Parser),
	}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a parser to the default registry.
// Called during init() in each parser package.
func Register(p Parser) {
	defaultRegistry.Register(p)
}

// RegisterCatchAll sets the default registry's fallback parser.
func RegisterCatchAll(p Parser) {
	defaultRegistry.RegisterCatchAll(p)
}

// Register adds a parser to the registry. A later registration for the same
// tag replaces the earlier one.
func (r *Registry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byTag[p.Tag()]; ok {
		for i, q := range r.rules {
			if q == old {
				r.rules = append(r.rules[:i], r.rules[i+1:]...)
				break
			}
		}
	}
	r.byTag[p.Tag()] = p
	r.rules = append(r.rules, p)
	r.sorted = false
}

// RegisterCatchAll sets the fallback parser used when no rule matches.
func (r *Registry) RegisterCatchAll(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catchAll = p
	r.byTag[p.Tag()] = p
}

// Sort sorts the rules by priority. Call before dispatching.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].Priority() < r.rules[j].Priority()
	})
	r.sorted = true
}

// ensureSorted sorts lazily so callers that forget Sort still get precedence.
func (r *Registry) ensureSorted() {
	r.mu.RLock()
	sorted := r.sorted
	r.mu.RUnlock()
	if !sorted {
		r.Sort()
	}
}

// Classify returns the format tag of the first rule whose QuickCheck accepts
// the text. It is total: text no rule claims is leg.Unknown.
func (r *Registry) Classify(text string) leg.FormatTag {
	if p := r.classifier(text); p != nil {
		return p.Tag()
	}
	return leg.Unknown
}

func (r *Registry) classifier(text string) Parser {
	r.ensureSorted()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.rules {
		if p.QuickCheck(text) {
			return p
		}
	}
	return nil
}

// Lookup returns the parser for a tag, falling back to the catch-all parser.
// It returns nil only if neither exists.
func (r *Registry) Lookup(tag leg.FormatTag) Parser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.byTag[tag]; ok {
		return p
	}
	return r.catchAll
}

// Dispatch classifies the text and parses it with the selected parser.
// If no parser is available at all, the draft is leg.Defaults.
func (r *Registry) Dispatch(text string, ctx leg.Context) (leg.FormatTag, leg.Draft) {
	tag := r.Classify(text)
	p := r.Lookup(tag)
	if p == nil {
		return tag, leg.Defaults("", ctx)
	}
	return tag, p.Parse(text, ctx)
}

// DispatchWithTrace is Dispatch that also reports how the text was classified
// and which fields the parser extracted.
func (r *Registry) DispatchWithTrace(text string, ctx leg.Context) (leg.FormatTag, leg.Draft, *TraceResult) {
	r.ensureSorted()

	r.mu.RLock()
	rules := append([]Parser(nil), r.rules...)
	r.mu.RUnlock()

	var checks []QuickCheck
	tag := leg.Unknown
	for _, p := range rules {
		passed := p.QuickCheck(text)
		checks = append(checks, QuickCheck{Parser: p.Name(), Passed: passed})
		if passed {
			tag = p.Tag()
			break
		}
	}

	p := r.Lookup(tag)
	if p == nil {
		return tag, leg.Defaults("", ctx), &TraceResult{Tag: tag, Checks: checks}
	}

	var draft leg.Draft
	trace := &TraceResult{ParserName: p.Name()}
	if tp, ok := p.(Traceable); ok {
		draft, trace = tp.ParseWithTrace(text, ctx)
	} else {
		draft = p.Parse(text, ctx)
	}
	trace.Tag = tag
	trace.Checks = checks
	return tag, draft, trace
}

// AllParsers returns the catch-all parser (if any) followed by every rule in
// precedence order.
func (r *Registry) AllParsers() []Parser {
	r.ensureSorted()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Parser
	if r.catchAll != nil {
		result = append(result, r.catchAll)
	}
	return append(result, r.rules...)
}

// ParserCount returns the total number of registered parsers.
func (r *Registry) ParserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTag)
}

// Classify classifies text using the default registry.
func Classify(text string) leg.FormatTag {
	return defaultRegistry.Classify(text)
}

// Dispatch parses text using the default registry.
func Dispatch(text string, ctx leg.Context) (leg.FormatTag, leg.Draft) {
	return defaultRegistry.Dispatch(text, ctx)
}
