// Package leg provides the flight-leg draft produced by the itinerary parsers.
package leg

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FormatTag identifies which source layout a pasted text block was written in.
type FormatTag int

const (
	Unknown FormatTag = iota
	DemoFlight
	Gmail
	UnitedEmail
	UnitedEmail2
	UnitedWeb
)

var tagNames = map[FormatTag]string{
	Unknown:      "Unknown",
	DemoFlight:   "DemoFlight",
	Gmail:        "Gmail",
	UnitedEmail:  "UnitedEmail",
	UnitedEmail2: "UnitedEmail2",
	UnitedWeb:    "UnitedWeb",
}

func (t FormatTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FormatTag(%d)", int(t))
}

// ParseFormatTag returns the tag with the given name (case-insensitive).
// Unrecognised names map to Unknown.
func ParseFormatTag(name string) FormatTag {
	for tag, n := range tagNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return tag
		}
	}
	return Unknown
}

func (t FormatTag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *FormatTag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseFormatTag(s)
	return nil
}

// Context carries the per-call inputs every parser receives alongside the text.
type Context struct {
	DefaultTimezone string // IANA zone used when the text carries no zone signal.
	TripID          string // Opaque, copied to the draft unchanged.

	// Clock overrides the current time. Nil means time.Now.
	Clock func() time.Time
}

// Now returns the current instant in UTC.
func (c Context) Now() time.Time {
	if c.Clock != nil {
		return c.Clock().UTC()
	}
	return time.Now().UTC()
}

// Draft is one parsed flight leg. Every field is always populated: values
// that could not be extracted carry their documented default.
type Draft struct {
	Name              string    `json:"name"`
	DepartureInstant  time.Time `json:"departure_datetime"`
	DepartureLocation string    `json:"departure_location"`
	DepartureTimezone string    `json:"departure_timezone"`
	ArrivalInstant    time.Time `json:"arrival_datetime"`
	ArrivalLocation   string    `json:"arrival_location"`
	ArrivalTimezone   string    `json:"arrival_timezone"`
	Carrier           string    `json:"carrier"`
	Confirmation      *string   `json:"confirmation"` // nil when none was found.
	TripID            string    `json:"trip_id"`
}

// Defaults returns a draft with every field at its fallback value: both
// instants at now, empty locations and carrier, both zones set to the
// context's default zone and no confirmation.
func Defaults(name string, ctx Context) Draft {
	now := ctx.Now()
	return Draft{
		Name:              name,
		DepartureInstant:  now,
		DepartureTimezone: ctx.DefaultTimezone,
		ArrivalInstant:    now,
		ArrivalTimezone:   ctx.DefaultTimezone,
		TripID:            ctx.TripID,
	}
}

// ConfirmationValue returns the confirmation or "" when none is set.
func (d Draft) ConfirmationValue() string {
	if d.Confirmation == nil {
		return ""
	}
	return *d.Confirmation
}

// StringPtr is a small helper for optional string fields.
func StringPtr(s string) *string {
	return &s
}
