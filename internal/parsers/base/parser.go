// Package base provides the fallback parser for text in no known layout.
package base

import (
	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/registry"
)

// Name is the draft name given to unrecognised text.
const Name = "Unknown Leg"

// Parser returns an all-defaults draft. It is registered as the catch-all.
type Parser struct{}

func init() {
	registry.RegisterCatchAll(&Parser{})
}

func (p *Parser) Name() string           { return "unknown" }
func (p *Parser) Tag() leg.FormatTag     { return leg.Unknown }
func (p *Parser) Priority() int          { return 1000 }
func (p *Parser) QuickCheck(string) bool { return true }

// Parse ignores the text: both instants are now, locations and carrier are
// empty, both zones are the context default and there is no confirmation.
func (p *Parser) Parse(_ string, ctx leg.Context) leg.Draft {
	return leg.Defaults(Name, ctx)
}
