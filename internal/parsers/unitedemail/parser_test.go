package unitedemail

import (
	"testing"
	"time"

	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/tz"
)

const sample = `Flight to Orlando
Jul 29, 2025

Departing
8:15 AM 10:33 AM
IAD
MCO
Washington, DC to Orlando, FL
Duration
UA 1234
`

func fixedContext(zone string) leg.Context {
	now := time.Date(2025, time.February, 10, 18, 0, 0, 0, time.UTC)
	return leg.Context{DefaultTimezone: zone, TripID: "t", Clock: func() time.Time { return now }}
}

func TestQuickCheck(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{sample, true},
		{"Your trip\n  Flight to Denver", true},
		{"flight to Denver", false},
		{"Flight 1 of 2 UA 1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := (&Parser{}).QuickCheck(tt.text); got != tt.want {
			t.Errorf("QuickCheck(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	if !tz.Valid("America/New_York") {
		t.Skip("zoneinfo database unavailable")
	}

	d := (&Parser{}).Parse(sample, fixedContext("America/New_York"))

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"Name", d.Name, "Flight to Orlando"},
		{"DepartureLocation", d.DepartureLocation, "IAD"},
		{"ArrivalLocation", d.ArrivalLocation, "MCO"},
		{"Carrier", d.Carrier, "UA 1234"},
		{"DepartureTimezone", d.DepartureTimezone, "America/New_York"},
		{"ArrivalTimezone", d.ArrivalTimezone, "America/New_York"},
		{"DepartureInstant", d.DepartureInstant.Format(time.RFC3339), "2025-07-29T12:15:00Z"},
		{"ArrivalInstant", d.ArrivalInstant.Format(time.RFC3339), "2025-07-29T14:33:00Z"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
	if d.Confirmation != nil {
		t.Errorf("Confirmation = %q, want nil", *d.Confirmation)
	}
}

func TestParseWithoutDate(t *testing.T) {
	if !tz.Valid("America/Los_Angeles") {
		t.Skip("zoneinfo database unavailable")
	}

	// Missing date line: the times land on today in the default zone.
	text := "Flight to Seattle\n\n6:00 PM 8:10 PM\nSFO\nSEA"
	d, trace := (&Parser{}).ParseWithTrace(text, fixedContext("America/Los_Angeles"))

	// 2025-02-10 18:00Z is 10:00 PST on Feb 10.
	if got := d.DepartureInstant.Format(time.RFC3339); got != "2025-02-11T02:00:00Z" {
		t.Errorf("DepartureInstant = %s", got)
	}
	if d.DepartureLocation != "SFO" || d.ArrivalLocation != "SEA" {
		t.Errorf("locations = %q, %q", d.DepartureLocation, d.ArrivalLocation)
	}
	if d.Carrier != "" {
		t.Errorf("Carrier = %q, want empty", d.Carrier)
	}

	missing := map[string]bool{}
	for _, name := range trace.Missing() {
		missing[name] = true
	}
	if !missing["date"] || !missing["carrier"] || missing["departure_location"] {
		t.Errorf("Missing() = %v", trace.Missing())
	}
}

func TestParseWithoutTimes(t *testing.T) {
	ctx := fixedContext("UTC")
	d := (&Parser{}).Parse("Flight to Nowhere\nJan 1, 2026\nDuration\nUA 9", ctx)
	if !d.DepartureInstant.Equal(ctx.Now()) || !d.ArrivalInstant.Equal(ctx.Now()) {
		t.Errorf("instants should default to now: %v, %v", d.DepartureInstant, d.ArrivalInstant)
	}
	if d.Carrier != "UA 9" || d.Name != "Flight to Nowhere" {
		t.Errorf("draft = %+v", d)
	}
}

func TestParseAirportsOnlyAfterTimes(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"codes missing after times", "Flight to Orlando\nJul 29, 2025\nNonstop\nEcon\n8:15 AM 10:33 AM\nDuration\nUA 1234"},
		{"no times line", "Flight to Nowhere\nJan 1, 2026\nEcon\nMCO\nDuration\nUA 9"},
	}
	for _, tt := range tests {
		d, trace := (&Parser{}).ParseWithTrace(tt.text, fixedContext("UTC"))
		if d.DepartureLocation != "" || d.ArrivalLocation != "" {
			t.Errorf("%s: locations = %q, %q, want empty", tt.name, d.DepartureLocation, d.ArrivalLocation)
		}
		missing := map[string]bool{}
		for _, name := range trace.Missing() {
			missing[name] = true
		}
		if !missing["departure_location"] || !missing["arrival_location"] {
			t.Errorf("%s: Missing() = %v", tt.name, trace.Missing())
		}
	}
}
