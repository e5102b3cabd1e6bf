// Package unitedweb parses flight details copied from the united.com trip page.
//
// Layout (blank lines ignored):
//
//	Depart
//	Tue, Aug 12, 2025
//	8:15 AM
//	I,A,DIAD
//	Washington, DC, US
//	Arrive
//	Tue, Aug 12, 2025
//	10:33 AM
//	M,C,OMCO
//	Orlando, FL, US
//	Flight UA 1234
//	Flight Info
//
// The code line is the screen-reader spelling of the airport code followed
// by the code itself.
package unitedweb

import (
	"time"

	"itinerary_parser/internal/airports"
	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/patterns"
	"itinerary_parser/internal/registry"
	"itinerary_parser/internal/tz"
)

const fallbackName = "United-Web-Parsed"

// Parser parses the united.com trip page.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string       { return "united_web" }
func (p *Parser) Tag() leg.FormatTag { return leg.UnitedWeb }
func (p *Parser) Priority() int      { return 40 }

// QuickCheck matches when any line begins with "Depart".
func (p *Parser) QuickCheck(text string) bool {
	return patterns.IndexOf(patterns.Lines(text), 0, patterns.DepartLabelPattern) >= 0
}

func (p *Parser) Parse(text string, ctx leg.Context) leg.Draft {
	d, _ := p.parse(text, ctx)
	return d
}

func (p *Parser) ParseWithTrace(text string, ctx leg.Context) (leg.Draft, *registry.TraceResult) {
	d, ex := p.parse(text, ctx)
	return d, &registry.TraceResult{ParserName: p.Name(), Extractors: ex}
}

// endpoint is one side of the leg as laid out under its label.
type endpoint struct {
	code    string
	city    string
	zone    string
	known   bool
	instant time.Time
	timed   bool
}

// readEndpoint reads the four lines after the label at idx.
func readEndpoint(lines []string, idx int, fallbackZone string) endpoint {
	e := endpoint{
		code: patterns.AirportCodeFromCSVLine(patterns.LineAfter(lines, idx, 3)),
		city: patterns.CityDescription(patterns.LineAfter(lines, idx, 4)),
		zone: fallbackZone,
	}
	if zone, ok := airports.LookupZone(e.code); ok {
		e.zone, e.known = zone, true
	}

	date, dated := patterns.CalendarDate(patterns.LineAfter(lines, idx, 1))
	clock, _ := patterns.ClockTime12h(patterns.LineAfter(lines, idx, 2))
	// Hour 0 counts as unparsed: the page never shows midnight departures.
	if dated && clock.Hour != 0 {
		e.instant = tz.ResolveToUTC(e.zone, date.Year, date.Month, date.Day, clock.Hour, clock.Minute)
		e.timed = true
	}
	return e
}

func (p *Parser) parse(text string, ctx leg.Context) (leg.Draft, registry.Extractors) {
	var ex registry.Extractors
	d := leg.Defaults(fallbackName, ctx)
	lines := patterns.NonEmptyLines(text)

	dep := readEndpoint(lines, patterns.IndexOf(lines, 0, patterns.DepartLabelPattern), ctx.DefaultTimezone)
	arr := readEndpoint(lines, patterns.IndexOf(lines, 0, patterns.ArriveLabelPattern), ctx.DefaultTimezone)

	d.DepartureLocation, d.ArrivalLocation = dep.code, arr.code
	d.DepartureTimezone, d.ArrivalTimezone = dep.zone, arr.zone
	if dep.timed {
		d.DepartureInstant = dep.instant
	}
	if arr.timed {
		d.ArrivalInstant = arr.instant
	}
	ex.Add("departure_location", "X,Y,ZXYZ", dep.code, dep.code != "")
	ex.Add("arrival_location", "X,Y,ZXYZ", arr.code, arr.code != "")
	ex.Add("departure_timezone", "airport table", dep.zone, dep.known)
	ex.Add("arrival_timezone", "airport table", arr.zone, arr.known)
	ex.AddTime("departure_datetime", patterns.DepartLabelPattern.String(), dep.instant, dep.timed)
	ex.AddTime("arrival_datetime", patterns.ArriveLabelPattern.String(), arr.instant, arr.timed)

	for _, line := range lines {
		if patterns.FlightLinePattern.MatchString(line) && !patterns.FlightInfoPattern.MatchString(line) {
			d.Carrier = patterns.StripFlightLabel(line)
			break
		}
	}
	ex.Add("carrier", patterns.FlightLinePattern.String(), d.Carrier, d.Carrier != "")

	if dep.city != "" && arr.city != "" {
		d.Name = dep.city + " to " + arr.city
	}
	ex.Add("name", "<city> to <city>", d.Name, dep.city != "" && arr.city != "")

	return d, ex
}
