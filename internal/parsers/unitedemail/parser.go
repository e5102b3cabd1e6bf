// Package unitedemail parses the itinerary block of United confirmation emails.
//
// Layout:
//
//	Flight to Orlando
//	Jul 29, 2025
//	...
//	8:15 AM 10:33 AM
//	IAD
//	MCO
//	Duration
//	UA 1234
package unitedemail

import (
	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/patterns"
	"itinerary_parser/internal/registry"
	"itinerary_parser/internal/tz"
)

const fallbackName = "United-Parsed"

// Parser parses United confirmation emails.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string       { return "united_email" }
func (p *Parser) Tag() leg.FormatTag { return leg.UnitedEmail }
func (p *Parser) Priority() int      { return 20 }

// QuickCheck matches when any line begins with "Flight to".
func (p *Parser) QuickCheck(text string) bool {
	return patterns.IndexOf(patterns.Lines(text), 0, patterns.FlightToPattern) >= 0
}

func (p *Parser) Parse(text string, ctx leg.Context) leg.Draft {
	d, _ := p.parse(text, ctx)
	return d
}

func (p *Parser) ParseWithTrace(text string, ctx leg.Context) (leg.Draft, *registry.TraceResult) {
	d, ex := p.parse(text, ctx)
	return d, &registry.TraceResult{ParserName: p.Name(), Extractors: ex}
}

func (p *Parser) parse(text string, ctx leg.Context) (leg.Draft, registry.Extractors) {
	var ex registry.Extractors
	d := leg.Defaults(fallbackName, ctx)
	zone := ctx.DefaultTimezone
	lines := patterns.Lines(text)

	idxName := patterns.IndexOf(lines, 0, patterns.FlightToPattern)
	if ex.Add("name", patterns.FlightToPattern.String(), patterns.LineAfter(lines, idxName, 0), idxName >= 0) {
		d.Name = lines[idxName]
	}

	// Shared date for both legs; today in the default zone when absent.
	date, dated := patterns.MonthDayYear(patterns.LineAfter(lines, idxName, 1))
	if !dated {
		today := tz.WallClock(ctx.Now(), zone)
		date = patterns.Date{Year: today.Year(), Month: today.Month(), Day: today.Day()}
	}
	ex.Add("date", "Mon D, YYYY", patterns.LineAfter(lines, idxName, 1), dated)

	start := 0
	if idxName >= 0 {
		start = idxName + 2
	}
	idxTimes := patterns.IndexOf(lines, start, patterns.ClockPairPattern)
	if idxTimes >= 0 {
		m := patterns.ClockPairPattern.FindStringSubmatch(lines[idxTimes])
		dep, depOK := patterns.ClockTime12h(m[1])
		arr, arrOK := patterns.ClockTime12h(m[2])
		if depOK {
			d.DepartureInstant = tz.ResolveToUTC(zone, date.Year, date.Month, date.Day, dep.Hour, dep.Minute)
		}
		if arrOK {
			d.ArrivalInstant = tz.ResolveToUTC(zone, date.Year, date.Month, date.Day, arr.Hour, arr.Minute)
		}
		ex.AddTime("departure_datetime", patterns.ClockPairPattern.String(), d.DepartureInstant, depOK)
		ex.AddTime("arrival_datetime", patterns.ClockPairPattern.String(), d.ArrivalInstant, arrOK)
	} else {
		ex.AddTime("departure_datetime", patterns.ClockPairPattern.String(), d.DepartureInstant, false)
		ex.AddTime("arrival_datetime", patterns.ClockPairPattern.String(), d.ArrivalInstant, false)
	}

	// The two airport codes follow the times line, each on its own line.
	// Without a times line there is nothing to anchor them to.
	idxDep, idxArr := -1, -1
	if idxTimes >= 0 {
		idxDep = patterns.IndexOf(lines, idxTimes+1, patterns.ShortAlphaTokenPattern)
		idxArr = patterns.IndexOf(lines, max(idxDep, idxTimes)+1, patterns.ShortAlphaTokenPattern)
	}
	if ex.Add("departure_location", patterns.ShortAlphaTokenPattern.String(), patterns.LineAfter(lines, idxDep, 0), idxDep >= 0) {
		d.DepartureLocation = lines[idxDep]
	}
	if ex.Add("arrival_location", patterns.ShortAlphaTokenPattern.String(), patterns.LineAfter(lines, idxArr, 0), idxArr >= 0) {
		d.ArrivalLocation = lines[idxArr]
	}

	idxDuration := patterns.IndexOf(lines, 0, patterns.DurationPattern)
	d.Carrier = patterns.LineAfter(lines, idxDuration, 1)
	ex.Add("carrier", patterns.DurationPattern.String(), d.Carrier, d.Carrier != "")

	return d, ex
}
