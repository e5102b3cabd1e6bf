// Package tz converts wall-clock components in a named IANA zone to absolute
// instants and back.
//
// The zone rules come from the platform's zoneinfo database via time.LoadLocation.
// The package only asks that database to render an instant in a zone; offsets are
// derived by comparing the rendered wall clock with the naive one.
package tz

import (
	"sync"
	"time"
)

// locations caches loaded zones. time.LoadLocation reads from disk on each call.
var locations sync.Map // map[string]*time.Location

// Location returns the *time.Location for an IANA zone identifier.
// Empty, unknown or malformed identifiers resolve to UTC.
func Location(zone string) *time.Location {
	if zone == "" {
		return time.UTC
	}
	if loc, ok := locations.Load(zone); ok {
		return loc.(*time.Location)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		loc = time.UTC
	}
	locations.Store(zone, loc)
	return loc
}

// Valid reports whether zone names a zone the platform database knows.
func Valid(zone string) bool {
	if zone == "" {
		return false
	}
	_, err := time.LoadLocation(zone)
	return err == nil
}

// naive treats wall-clock components as if they were already UTC.
func naive(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

// renderedOffset returns rendered-minus-naive for instant t in loc: the wall
// clock t shows in loc, read back as if it were UTC, minus t itself.
func renderedOffset(t time.Time, loc *time.Location) time.Duration {
	local := t.In(loc)
	rendered := naive(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute()).
		Add(time.Duration(local.Second()) * time.Second)
	return rendered.Sub(t.Truncate(time.Second))
}

// ResolveToUTC converts wall-clock components in zone to a UTC instant.
//
// The offset is sampled once, at the naive instant. Wall-clock values that
// fall inside a DST gap or overlap, or within the offset distance of a
// transition, may come back one hour off. ResolveToUTCExact iterates instead.
func ResolveToUTC(zone string, year int, month time.Month, day, hour, minute int) time.Time {
	n := naive(year, month, day, hour, minute)
	return n.Add(-renderedOffset(n, Location(zone)))
}

// ResolveToUTCExact is ResolveToUTC with the offset checked against the
// corrected instant. Wall-clock values that exist always round-trip. In a
// fall-back overlap one of the two valid instants is returned; in a
// spring-forward gap the pre-transition offset is applied.
func ResolveToUTCExact(zone string, year int, month time.Month, day, hour, minute int) time.Time {
	loc := Location(zone)
	n := naive(year, month, day, hour, minute)

	first := renderedOffset(n, loc)
	second := renderedOffset(n.Add(-first), loc)
	if first == second {
		return n.Add(-first)
	}
	if renderedOffset(n.Add(-second), loc) == second {
		return n.Add(-second)
	}

	// Gap: neither offset is self-consistent.
	earlier := n.Add(-first)
	if n.Add(-second).Before(earlier) {
		earlier = n.Add(-second)
	}
	return n.Add(-renderedOffset(earlier, loc))
}

// OffsetMinutesAt returns the signed number of minutes to add to UTC to get
// the wall clock in zone at instant t.
func OffsetMinutesAt(zone string, t time.Time) int {
	return int(renderedOffset(t.UTC(), Location(zone)) / time.Minute)
}

// LocalToUTC converts an already materialised local value, whose fields hold
// the wall clock in zone regardless of its own location, to UTC.
func LocalToUTC(local time.Time, zone string) time.Time {
	n := naive(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute()).
		Add(time.Duration(local.Second()) * time.Second)
	offset := OffsetMinutesAt(zone, n)
	return n.Add(-time.Duration(offset) * time.Minute)
}

// WallClock renders instant t in zone. It is the inverse of ResolveToUTC
// outside DST transition windows.
func WallClock(t time.Time, zone string) time.Time {
	return t.In(Location(zone))
}
