// Package airports holds the compiled-in airport and city timezone tables.
//
// The tables are plain map literals and are never written after package
// initialisation, so lookups are safe from any goroutine without locking.
package airports

import (
	"sort"
	"strings"
)

// LookupZone returns the IANA zone for an airport code. The code is trimmed
// and uppercased first. Unknown codes report false.
func LookupZone(code string) (string, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", false
	}
	zone, ok := airportZones[code]
	return zone, ok
}

// HasZone reports whether the airport code has a known zone.
func HasZone(code string) bool {
	_, ok := LookupZone(code)
	return ok
}

// ZoneOr returns the zone for code, or fallback when the code is unknown.
func ZoneOr(code, fallback string) string {
	if zone, ok := LookupZone(code); ok {
		return zone
	}
	return fallback
}

// LookupCity returns the representative airport code for an exact city name.
// Only surrounding whitespace is ignored; the match is case-sensitive.
func LookupCity(city string) (string, bool) {
	code, ok := cityAirports[strings.TrimSpace(city)]
	return code, ok
}

// Codes returns every known airport code in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(airportZones))
	for code := range airportZones {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Cities returns every known city name in sorted order.
func Cities() []string {
	cities := make([]string, 0, len(cityAirports))
	for city := range cityAirports {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}
