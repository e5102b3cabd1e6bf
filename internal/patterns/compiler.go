package patterns

import (
	"fmt"
	"regexp"
)

// Layout is one accepted spelling of a token. Pattern is a regex that may
// reference BasePatterns as {NAME} and names its fields with (?P<name>...).
type Layout struct {
	Name    string
	Pattern string
}

// Layouts is an ordered, compiled set of layouts for one kind of token.
// Matching is case-insensitive and the first matching layout wins.
type Layouts struct {
	names    []string
	expanded []string
	res      []*regexp.Regexp
}

var placeholder = regexp.MustCompile(`\{([A-Z]+)\}`)

// Expand substitutes {NAME} placeholders from vocab, then BasePatterns.
// Unknown placeholders are left as written.
func Expand(pattern string, vocab map[string]string) string {
	return placeholder.ReplaceAllStringFunc(pattern, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if v, ok := vocab[name]; ok {
			return v
		}
		if v, ok := BasePatterns[name]; ok {
			return v
		}
		return ref
	})
}

// CompileLayouts expands and compiles layouts. overrides takes precedence
// over BasePatterns for this set only.
func CompileLayouts(layouts []Layout, overrides map[string]string) (*Layouts, error) {
	l := &Layouts{
		names:    make([]string, 0, len(layouts)),
		expanded: make([]string, 0, len(layouts)),
		res:      make([]*regexp.Regexp, 0, len(layouts)),
	}
	for _, layout := range layouts {
		expanded := Expand(layout.Pattern, overrides)
		re, err := regexp.Compile("(?i)" + expanded)
		if err != nil {
			return nil, fmt.Errorf("layout %s: %w", layout.Name, err)
		}
		l.names = append(l.names, layout.Name)
		l.expanded = append(l.expanded, expanded)
		l.res = append(l.res, re)
	}
	return l, nil
}

// MustCompileLayouts is CompileLayouts for package-level tables.
func MustCompileLayouts(layouts []Layout, overrides map[string]string) *Layouts {
	l, err := CompileLayouts(layouts, overrides)
	if err != nil {
		panic("patterns: " + err.Error())
	}
	return l
}

// Captures maps field names to the text they matched.
type Captures map[string]string

// Get returns the captured text for name, or "" when it did not participate.
func (c Captures) Get(name string) string {
	return c[name]
}

// Match is the result of a successful Layouts.Match.
type Match struct {
	Layout   string
	Captures Captures
}

// Match tries each layout against text in order.
func (l *Layouts) Match(text string) (Match, bool) {
	for i, re := range l.res {
		if c, ok := capture(re, text); ok {
			return Match{Layout: l.names[i], Captures: c}, true
		}
	}
	return Match{}, false
}

// Attempt records one layout tried by Explain.
type Attempt struct {
	Layout   string   `json:"layout"`
	Regexp   string   `json:"regexp"`
	Matched  bool     `json:"matched"`
	Captures Captures `json:"captures,omitempty"`
}

// Explain tries every layout against text and reports each outcome. It is
// the debugging counterpart of Match.
func (l *Layouts) Explain(text string) []Attempt {
	out := make([]Attempt, 0, len(l.res))
	for i, re := range l.res {
		c, ok := capture(re, text)
		out = append(out, Attempt{Layout: l.names[i], Regexp: l.expanded[i], Matched: ok, Captures: c})
	}
	return out
}

func capture(re *regexp.Regexp, text string) (Captures, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	c := make(Captures, len(m))
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" {
			c[name] = m[i]
		}
	}
	return c, true
}
