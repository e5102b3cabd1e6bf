// Package gmail parses flight cards pasted from Gmail.
//
// Layout:
//
//	United Airlines – UA 237
//	Take-off
//	Jul 29, 8:15 AM
//	Landing
//	Jul 29, 10:33 AM
//	Confirmation number
//	ABC123
//
// The card carries no zone, so both legs use the caller's default zone.
package gmail

import (
	"strings"

	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/patterns"
	"itinerary_parser/internal/registry"
	"itinerary_parser/internal/tz"
)

const fallbackName = "Gmail-Parsed"

// Parser parses Gmail flight cards.
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string       { return "gmail" }
func (p *Parser) Tag() leg.FormatTag { return leg.Gmail }
func (p *Parser) Priority() int      { return 10 }

// QuickCheck matches when the first non-empty line ends in "– XX 123".
func (p *Parser) QuickCheck(text string) bool {
	if !strings.ContainsAny(text, "–—") {
		return false
	}
	return patterns.GmailHeaderPattern.MatchString(patterns.FirstNonEmptyLine(text))
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

	header := patterns.FirstNonEmptyLine(text)
	if name := strings.TrimSpace(patterns.DashPattern.Split(header, 2)[0]); name != "" && name != header {
		d.Name = name
		ex.Add("name", patterns.DashPattern.String(), name, true)
	} else {
		ex.Add("name", patterns.DashPattern.String(), "", false)
	}

	if m := patterns.GmailCarrierPattern.FindStringSubmatch(header); m != nil {
		d.Carrier = patterns.NormalizeWhitespace(m[1])
	}
	ex.Add("carrier", patterns.GmailCarrierPattern.String(), d.Carrier, d.Carrier != "")

	// Year-less dates belong to the current year as seen in the default zone.
	year := tz.WallClock(ctx.Now(), zone).Year()

	var departed, landed, confirmed bool
	lines := patterns.Lines(text)
	for i := 0; i < len(lines)-1; i++ {
		next := lines[i+1]
		switch {
		case patterns.TakeoffLabelPattern.MatchString(lines[i]):
			if date, clock, ok := patterns.DateTime(next, year); ok {
				d.DepartureInstant = tz.ResolveToUTC(zone, date.Year, date.Month, date.Day, clock.Hour, clock.Minute)
				departed = true
			}
		case patterns.LandingLabelPattern.MatchString(lines[i]):
			if date, clock, ok := patterns.DateTime(next, year); ok {
				d.ArrivalInstant = tz.ResolveToUTC(zone, date.Year, date.Month, date.Day, clock.Hour, clock.Minute)
				landed = true
			}
		case patterns.ConfirmationLabelPattern.MatchString(lines[i]):
			d.Confirmation = leg.StringPtr(patterns.NormalizeWhitespace(next))
			confirmed = true
		}
	}

	ex.AddTime("departure_datetime", patterns.TakeoffLabelPattern.String(), d.DepartureInstant, departed)
	ex.AddTime("arrival_datetime", patterns.LandingLabelPattern.String(), d.ArrivalInstant, landed)
	ex.Add("confirmation", patterns.ConfirmationLabelPattern.String(), d.ConfirmationValue(), confirmed)

	return d, ex
}
