package main

import (
	"bytes"
	"strings"
	"testing"

	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/service"
)

func TestRunZone(t *testing.T) {
	var buf bytes.Buffer
	status := runZone([]string{"iad", "ZZZ", " LHR "}, &buf)
	if status != 1 {
		t.Errorf("status = %d, want 1", status)
	}
	want := "IAD\tAmerica/New_York\nZZZ\tunknown\nLHR\tEurope/London\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	buf.Reset()
	if status := runZone([]string{"ORD"}, &buf); status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
}

func TestParseBatch(t *testing.T) {
	input := strings.Join([]string{
		`{"text":"Flight UA 1","trip_id":"a"}`,
		``,
		`Flight DL 2`,
		`{"text":"nothing to see"}`,
		`{"text":`,
	}, "\n")

	out, st, err := parseBatch(strings.NewReader(input), "UTC", false)
	if err != nil {
		t.Fatalf("parseBatch: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("got %d results, want 4", len(out))
	}
	if st.Lines != 5 || st.Parsed != 4 || st.Unknown != 2 {
		t.Errorf("stats = %+v", st)
	}
	if out[0].Format != leg.DemoFlight || out[0].Draft.TripID != "a" {
		t.Errorf("first = %+v", out[0].Result)
	}
	if out[1].Draft.Carrier != "DL" {
		t.Errorf("second carrier = %q, want DL", out[1].Draft.Carrier)
	}
	if out[0].Trace != nil {
		t.Error("trace included without -trace")
	}
	if got := formatCounts(st.Formats); got != "DemoFlight:2,Unknown:2" {
		t.Errorf("formatCounts = %q", got)
	}
}

func TestParseOneTrace(t *testing.T) {
	po := parseOne(service.Request{Text: "Flight UA 1"}, "UTC", true)
	if po.Trace == nil {
		t.Fatal("Trace = nil, want trace")
	}
	if po.Trace.Tag != leg.DemoFlight {
		t.Errorf("Trace.Tag = %v, want DemoFlight", po.Trace.Tag)
	}
}

func TestDecodeLegs(t *testing.T) {
	input := `[
		{"name":"bare","departure_datetime":"2025-08-12T12:15:00Z","arrival_datetime":"2025-08-12T14:33:00Z","departure_timezone":"America/Chicago"},
		{"format":"Gmail","draft":{"name":"wrapped","departure_datetime":"2025-08-12T12:15:00Z","arrival_datetime":"2025-08-12T14:33:00Z"},"missing":[]}
	]`
	legs, err := decodeLegs(strings.NewReader(input), "Europe/London")
	if err != nil {
		t.Fatalf("decodeLegs: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("got %d legs, want 2", len(legs))
	}
	if legs[0].Name != "bare" || legs[0].DepartureTimezone != "America/Chicago" || legs[0].ArrivalTimezone != "Europe/London" {
		t.Errorf("first = %+v", legs[0])
	}
	if legs[1].Name != "wrapped" || legs[1].DepartureTimezone != "Europe/London" {
		t.Errorf("second = %+v", legs[1])
	}

	if _, err := decodeLegs(strings.NewReader(`{"not":"an array"}`), "UTC"); err == nil {
		t.Error("decodeLegs of an object should fail")
	}
}
