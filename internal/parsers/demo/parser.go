// Package demo parses the single-line synthetic "Flight <carrier> ..." format.
package demo

import (
	"strings"

	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/registry"
)

const fallbackName = "Demo-Parsed"

// Parser handles one-liners such as "Flight UA1234 to Orlando".
type Parser struct{}

func init() {
	registry.Register(&Parser{})
}

func (p *Parser) Name() string       { return "demo" }
func (p *Parser) Tag() leg.FormatTag { return leg.DemoFlight }

// Priority is last among the rules: "Flight" also opens the United layouts.
func (p *Parser) Priority() int { return 50 }

func (p *Parser) QuickCheck(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 0 && strings.EqualFold(fields[0], "Flight")
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

	fields := strings.Fields(text)
	if len(fields) >= 2 {
		d.Carrier = fields[1]
	}
	ex.Add("carrier", "second token", d.Carrier, d.Carrier != "")

	// The whole paste is kept as the confirmation.
	d.Confirmation = leg.StringPtr(text)
	ex.Add("confirmation", "raw text", text, true)

	return d, ex
}
