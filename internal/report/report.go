// Package report renders parsed legs as human-readable trip summaries.
package report

import (
	"fmt"
	"strings"
	"time"

	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/tz"
)

var zoneAbbreviations = map[string]string{
	"America/New_York":    "ET",
	"America/Chicago":     "CT",
	"America/Denver":      "MT",
	"America/Los_Angeles": "PT",
	"America/Anchorage":   "AKT",
	"Pacific/Honolulu":    "HT",
	"Europe/London":       "GMT",
	"Europe/Paris":        "CET",
	"Europe/Berlin":       "CET",
	"Asia/Tokyo":          "JST",
	"Asia/Shanghai":       "CST",
	"Australia/Sydney":    "AEST",
	"Pacific/Auckland":    "NZST",
}

// ZoneAbbreviation returns the short label for a zone, e.g. "ET". Zones
// outside the table use the first three letters of their last path segment.
func ZoneAbbreviation(zone string) string {
	if abbr, ok := zoneAbbreviations[zone]; ok {
		return abbr
	}
	last := zone[strings.LastIndex(zone, "/")+1:]
	if len(last) > 3 {
		last = last[:3]
	}
	return strings.ToUpper(last)
}

// FullDate formats an instant as "Tuesday, March 25th" in zone.
func FullDate(instant time.Time, zone string) string {
	if instant.IsZero() {
		return ""
	}
	local := tz.WallClock(instant, zone)
	return local.Format("Monday, January ") + ordinal(local.Day())
}

// ShortDate formats an instant as "Tue Mar 25" in zone.
func ShortDate(instant time.Time, zone string) string {
	if instant.IsZero() {
		return ""
	}
	return tz.WallClock(instant, zone).Format("Mon Jan 2")
}

// CompactDate formats an instant as "3/25 Tue" in zone.
func CompactDate(instant time.Time, zone string) string {
	if instant.IsZero() {
		return ""
	}
	return tz.WallClock(instant, zone).Format("1/2 Mon")
}

// TimeWithZone formats an instant as "7:23pm (ET)" in zone.
func TimeWithZone(instant time.Time, zone string) string {
	if instant.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", tz.WallClock(instant, zone).Format("3:04pm"), ZoneAbbreviation(zone))
}

func ordinal(day int) string {
	suffix := "th"
	if day < 11 || day > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

// Leg renders one detail line, e.g.
// "Tue Aug 12 8:15am (ET) IAD -> 10:33am (ET) MCO, UA 1234 [ABC123]".
func Leg(d leg.Draft) string {
	var b strings.Builder
	b.WriteString(ShortDate(d.DepartureInstant, d.DepartureTimezone))
	b.WriteString(" ")
	b.WriteString(TimeWithZone(d.DepartureInstant, d.DepartureTimezone))
	if d.DepartureLocation != "" {
		b.WriteString(" " + d.DepartureLocation)
	}
	b.WriteString(" -> ")
	if ShortDate(d.ArrivalInstant, d.ArrivalTimezone) != ShortDate(d.DepartureInstant, d.DepartureTimezone) {
		b.WriteString(ShortDate(d.ArrivalInstant, d.ArrivalTimezone) + " ")
	}
	b.WriteString(TimeWithZone(d.ArrivalInstant, d.ArrivalTimezone))
	if d.ArrivalLocation != "" {
		b.WriteString(" " + d.ArrivalLocation)
	}
	if d.Carrier != "" {
		b.WriteString(", " + d.Carrier)
	}
	if c := d.ConfirmationValue(); c != "" && len(c) <= 12 {
		b.WriteString(" [" + c + "]")
	}
	return b.String()
}

// Trip renders a numbered summary of a trip's legs.
func Trip(name string, legs []leg.Draft) string {
	var out []string
	if name != "" {
		out = append(out, name)
	}
	if len(legs) == 0 {
		out = append(out, "No legs found for this trip.")
		return strings.Join(out, "\n")
	}

	out = append(out, "Legs in this trip:")
	for i, d := range legs {
		out = append(out, fmt.Sprintf("%d. %s", i+1, d.Name))
		out = append(out, "   "+Leg(d))
	}
	return strings.Join(out, "\n")
}
