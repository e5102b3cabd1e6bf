package registry

import (
	"strings"
	"testing"
	"time"

	"itinerary_parser/internal/leg"
)

type fakeParser struct {
	name     string
	tag      leg.FormatTag
	priority int
	prefix   string
}

func (p *fakeParser) Name() string            { return p.name }
func (p *fakeParser) Tag() leg.FormatTag       { return p.tag }
func (p *fakeParser) Priority() int            { return p.priority }
func (p *fakeParser) QuickCheck(t string) bool { return strings.HasPrefix(t, p.prefix) }
func (p *fakeParser) Parse(text string, ctx leg.Context) leg.Draft {
	d := leg.Defaults(p.name, ctx)
	d.Carrier = text
	return d
}

type tracingParser struct{ fakeParser }

func (p *tracingParser) ParseWithTrace(text string, ctx leg.Context) (leg.Draft, *TraceResult) {
	return p.Parse(text, ctx), &TraceResult{
		ParserName: p.name,
		Extractors: []Extractor{
			{Name: "carrier", Matched: true, Value: text},
			{Name: "confirmation", Matched: false},
		},
	}
}

func fixedContext() leg.Context {
	now := time.Date(2025, time.August, 1, 12, 0, 0, 0, time.UTC)
	return leg.Context{DefaultTimezone: "America/New_York", TripID: "t1", Clock: func() time.Time { return now }}
}

func TestClassifyPrecedence(t *testing.T) {
	r := New()
	// Registered in the wrong order on purpose: priority must win.
	r.Register(&fakeParser{name: "loose", tag: leg.DemoFlight, priority: 50, prefix: "Flight"})
	r.Register(&fakeParser{name: "specific", tag: leg.UnitedEmail2, priority: 30, prefix: "Flight 1 of"})
	r.RegisterCatchAll(&fakeParser{name: "unknown", tag: leg.Unknown})
	r.Sort()

	tests := []struct {
		text string
		want leg.FormatTag
	}{
		{"Flight 1 of 2 UA 1234", leg.UnitedEmail2},
		{"Flight UA 1234", leg.DemoFlight},
		{"something else", leg.Unknown},
		{"", leg.Unknown},
	}
	for _, tt := range tests {
		if got := r.Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestClassifyWithoutSort(t *testing.T) {
	r := New()
	r.Register(&fakeParser{name: "loose", tag: leg.DemoFlight, priority: 50, prefix: "F"})
	r.Register(&fakeParser{name: "specific", tag: leg.UnitedEmail, priority: 20, prefix: "Flight to"})
	if got := r.Classify("Flight to Orlando"); got != leg.UnitedEmail {
		t.Errorf("Classify = %v, want UnitedEmail", got)
	}
}

func TestDispatch(t *testing.T) {
	r := New()
	r.Register(&fakeParser{name: "demo", tag: leg.DemoFlight, priority: 50, prefix: "Flight"})
	r.RegisterCatchAll(&fakeParser{name: "unknown", tag: leg.Unknown})

	tag, d := r.Dispatch("Flight UA1", fixedContext())
	if tag != leg.DemoFlight || d.Name != "demo" || d.Carrier != "Flight UA1" {
		t.Errorf("Dispatch = %v %+v", tag, d)
	}

	tag, d = r.Dispatch("garbage", fixedContext())
	if tag != leg.Unknown || d.Name != "unknown" {
		t.Errorf("Dispatch fallback = %v %+v", tag, d)
	}
	if d.TripID != "t1" || d.DepartureTimezone != "America/New_York" {
		t.Errorf("context not applied: %+v", d)
	}
}

func TestDispatchEmptyRegistry(t *testing.T) {
	tag, d := New().Dispatch("anything", fixedContext())
	if tag != leg.Unknown {
		t.Errorf("tag = %v", tag)
	}
	if d.ArrivalTimezone != "America/New_York" || d.Confirmation != nil {
		t.Errorf("draft = %+v", d)
	}
}

func TestRegisterReplacesTag(t *testing.T) {
	r := New()
	r.Register(&fakeParser{name: "old", tag: leg.Gmail, priority: 10, prefix: "x"})
	r.Register(&fakeParser{name: "new", tag: leg.Gmail, priority: 10, prefix: "x"})
	if n := r.ParserCount(); n != 1 {
		t.Errorf("ParserCount = %d, want 1", n)
	}
	if got := r.Lookup(leg.Gmail).Name(); got != "new" {
		t.Errorf("Lookup = %q", got)
	}
	if n := len(r.AllParsers()); n != 1 {
		t.Errorf("AllParsers = %d entries", n)
	}
}

func TestDispatchWithTrace(t *testing.T) {
	r := New()
	r.Register(&fakeParser{name: "first", tag: leg.Gmail, priority: 10, prefix: "G"})
	r.Register(&tracingParser{fakeParser{name: "second", tag: leg.UnitedWeb, priority: 40, prefix: "Depart"}})
	r.RegisterCatchAll(&fakeParser{name: "unknown", tag: leg.Unknown})

	tag, d, trace := r.DispatchWithTrace("Depart now", fixedContext())
	if tag != leg.UnitedWeb || d.Name != "second" {
		t.Fatalf("DispatchWithTrace = %v %+v", tag, d)
	}
	if len(trace.Checks) != 2 || trace.Checks[0].Passed || !trace.Checks[1].Passed {
		t.Errorf("checks = %+v", trace.Checks)
	}
	if trace.Tag != leg.UnitedWeb || trace.ParserName != "second" {
		t.Errorf("trace header = %+v", trace)
	}
	if missing := trace.Missing(); len(missing) != 1 || missing[0] != "confirmation" {
		t.Errorf("Missing() = %v", missing)
	}

	tag, _, trace = r.DispatchWithTrace("zzz", fixedContext())
	if tag != leg.Unknown || trace.ParserName != "unknown" || len(trace.Extractors) != 0 {
		t.Errorf("fallback trace = %v %+v", tag, trace)
	}
}

func TestNilTraceMissing(t *testing.T) {
	var tr *TraceResult
	if tr.Missing() != nil {
		t.Error("nil trace should report nothing missing")
	}
}

func TestExtractorsAdd(t *testing.T) {
	var ex Extractors
	if !ex.Add("carrier", `^Flight\b`, "UA 1", true) {
		t.Error("Add should return matched")
	}
	ex.Add("confirmation", "", "", false)
	tr := &TraceResult{Extractors: ex}
	if got := tr.Missing(); len(got) != 1 || got[0] != "confirmation" {
		t.Errorf("Missing() = %v", got)
	}
}
