// Package parsers imports all parser packages to trigger their init() registration.
// Import this package for side effects only.
package parsers

import (
	// Import all parser packages to register them with the registry.
	_ "itinerary_parser/internal/parsers/base"
	_ "itinerary_parser/internal/parsers/demo"
	_ "itinerary_parser/internal/parsers/gmail"
	_ "itinerary_parser/internal/parsers/unitedemail"
	_ "itinerary_parser/internal/parsers/unitedemail2"
	_ "itinerary_parser/internal/parsers/unitedweb"
)
