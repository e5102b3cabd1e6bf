// Package unitedemail2 parses the two-column flight table of newer United
// emails.
//
// Layout (columns separated by runs of spaces or tabs):
//
//	Confirmation Number:
//	ABC123
//	Flight 1 of 2 UA 1234
//	Tue, Aug 12, 2025          Tue, Aug 12, 2025
//	8:15 AM                    10:33 AM
//	Washington, DC, US (IAD)   Orlando, FL, US (MCO)
package unitedemail2

import (
	"time"

	"itinerary_parser/internal/airports"
	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/patterns"
	"itinerary_parser/internal/registry"
	"itinerary_parser/internal/tz"
)

const fallbackName = "United-Email-Parsed"

// Parser parses the United "Flight n of m" table.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string       { return "united_email2" }
func (p *Parser) Tag() leg.FormatTag { return leg.UnitedEmail2 }
func (p *Parser) Priority() int      { return 30 }

// QuickCheck matches when any line reads "Flight <n> of <m> ...".
func (p *Parser) QuickCheck(text string) bool {
	return patterns.IndexOf(patterns.Lines(text), 0, patterns.FlightNofMPattern) >= 0
}

func (p *Parser) Parse(text string, ctx leg.Context) leg.Draft {
	d, _ := p.parse(text, ctx)
	return d
}

func (p *Parser) ParseWithTrace(text string, ctx leg.Context) (leg.Draft, *registry.TraceResult) {
	d, ex := p.parse(text, ctx)
	return d, &registry.TraceResult{ParserName: p.Name(), Extractors: ex}
}

// column returns the i-th column of a split line, or "".
func column(cols []string, i int) string {
	if i < len(cols) {
		return cols[i]
	}
	return ""
}

func (p *Parser) parse(text string, ctx leg.Context) (leg.Draft, registry.Extractors) {
	var ex registry.Extractors
	d := leg.Defaults(fallbackName, ctx)
	lines := patterns.Lines(text)

	// The value shares the label's line or sits on the one directly below.
	// A flight header there means the value was left empty.
	if idx := patterns.IndexOf(lines, 0, patterns.ConfirmationColonPattern); idx >= 0 {
		value := patterns.ConfirmationColonPattern.FindStringSubmatch(lines[idx])[1]
		if next := patterns.LineAfter(lines, idx, 1); value == "" && !patterns.FlightNofMPattern.MatchString(next) {
			value = next
		}
		if value = patterns.NormalizeWhitespace(value); value != "" {
			d.Confirmation = leg.StringPtr(value)
		}
	}
	ex.Add("confirmation", patterns.ConfirmationColonPattern.String(), d.ConfirmationValue(), d.Confirmation != nil)

	idxHeader := patterns.IndexOf(lines, 0, patterns.FlightNofMPattern)
	var rows [][]string
	if idxHeader >= 0 {
		m := patterns.FlightNofMPattern.FindStringSubmatch(lines[idxHeader])
		d.Carrier = patterns.NormalizeWhitespace(m[3])
		for i := idxHeader + 1; i < len(lines) && len(rows) < 3; i++ {
			if lines[i] != "" {
				rows = append(rows, patterns.SplitColumns(lines[i]))
			}
		}
	}
	ex.Add("carrier", patterns.FlightNofMPattern.String(), d.Carrier, d.Carrier != "")
	for len(rows) < 3 {
		rows = append(rows, nil)
	}
	dates, times, places := rows[0], rows[1], rows[2]

	depCity := patterns.CityDescription(column(places, 0))
	arrCity := patterns.CityDescription(column(places, 1))
	d.DepartureLocation = patterns.AirportCodeParenthesized(column(places, 0))
	d.ArrivalLocation = patterns.AirportCodeParenthesized(column(places, 1))
	ex.Add("departure_location", "(XXX)", d.DepartureLocation, d.DepartureLocation != "")
	ex.Add("arrival_location", "(XXX)", d.ArrivalLocation, d.ArrivalLocation != "")

	depZone, depKnown := airports.LookupZone(d.DepartureLocation)
	arrZone, arrKnown := airports.LookupZone(d.ArrivalLocation)
	if depKnown {
		d.DepartureTimezone = depZone
	}
	if arrKnown {
		d.ArrivalTimezone = arrZone
	}
	ex.Add("departure_timezone", "airport table", d.DepartureTimezone, depKnown)
	ex.Add("arrival_timezone", "airport table", d.ArrivalTimezone, arrKnown)

	depInstant, depOK := resolve(d.DepartureTimezone, column(dates, 0), column(times, 0))
	if ex.AddTime("departure_datetime", dateTimeCells, depInstant, depOK) {
		d.DepartureInstant = depInstant
	}
	arrInstant, arrOK := resolve(d.ArrivalTimezone, column(dates, 1), column(times, 1))
	if ex.AddTime("arrival_datetime", dateTimeCells, arrInstant, arrOK) {
		d.ArrivalInstant = arrInstant
	}

	if depCity != "" && arrCity != "" {
		d.Name = depCity + " to " + arrCity
	}
	ex.Add("name", "<city> to <city>", d.Name, depCity != "" && arrCity != "")

	return d, ex
}

const dateTimeCells = "Dow, Mon D, YYYY / H:MM AM"

// resolve combines a date cell and a time cell into an instant in zone.
func resolve(zone, dateCell, timeCell string) (time.Time, bool) {
	date, ok := patterns.CalendarDate(dateCell)
	if !ok {
		return time.Time{}, false
	}
	clock, ok := patterns.ClockTime12h(timeCell)
	if !ok {
		return time.Time{}, false
	}
	return tz.ResolveToUTC(zone, date.Year, date.Month, date.Day, clock.Hour, clock.Minute), true
}
