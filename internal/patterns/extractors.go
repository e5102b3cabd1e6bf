package patterns

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock is a 24-hour wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// Date is a calendar date without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

var clockPattern = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*([AP])M$`)

// Token layouts for dates. Tried in order; first match wins.
var (
	calendarDateLayouts = MustCompileLayouts([]Layout{
		// Tue, Aug 12, 2025
		{Name: "weekday_month_day_year", Pattern: `^{DOW},\s*(?P<month>{MON})\s+(?P<day>{DAY}),\s*(?P<year>{YEAR})$`},
	}, nil)
	monthDayYearLayouts = MustCompileLayouts([]Layout{
		// Jul 29, 2025
		{Name: "month_day_year", Pattern: `^(?P<month>{MON})\s+(?P<day>{DAY}),\s*(?P<year>{YEAR})$`},
	}, nil)
	dateTimeLayouts = MustCompileLayouts([]Layout{
		// Jul 29, 8:15 AM / Wed, Aug 6, 9:25 PM / Jun 15 2024, 6:30 AM
		{Name: "month_day_clock", Pattern: `^(?:{DOW},\s*)?(?P<month>{MON})\s+(?P<day>{DAY})(?:,?\s+(?P<year>{YEAR}))?,\s*(?P<clock>{CLOCK})$`},
	}, nil)
)

// ClockTime12h parses "H:MM AM/PM" into a 24-hour clock.
// Unparsable input yields the zero Clock and false.
func ClockTime12h(token string) (Clock, bool) {
	m := clockPattern.FindStringSubmatch(NormalizeWhitespace(token))
	if m == nil {
		return Clock{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	isPM := strings.EqualFold(m[3], "P")
	if isPM && hour < 12 {
		hour += 12
	}
	if !isPM && hour == 12 {
		hour = 0
	}
	if hour > 23 || minute > 59 {
		return Clock{}, false
	}
	return Clock{Hour: hour, Minute: minute}, true
}

// CalendarDate parses "Dow, Mon D, YYYY".
func CalendarDate(token string) (Date, bool) {
	m, ok := calendarDateLayouts.Match(NormalizeWhitespace(token))
	if !ok {
		return Date{}, false
	}
	return dateFromCaptures(m.Captures, 0)
}

// MonthDayYear parses "Mon D, YYYY".
func MonthDayYear(token string) (Date, bool) {
	m, ok := monthDayYearLayouts.Match(NormalizeWhitespace(token))
	if !ok {
		return Date{}, false
	}
	return dateFromCaptures(m.Captures, 0)
}

// DateTime parses "[Dow, ]Mon D[ YYYY], H:MM AM/PM". When the token has no
// year, defaultYear is used.
func DateTime(token string, defaultYear int) (Date, Clock, bool) {
	m, ok := dateTimeLayouts.Match(NormalizeWhitespace(token))
	if !ok {
		return Date{}, Clock{}, false
	}
	date, ok := dateFromCaptures(m.Captures, defaultYear)
	if !ok {
		return Date{}, Clock{}, false
	}
	clock, ok := ClockTime12h(m.Captures.Get("clock"))
	if !ok {
		return Date{}, Clock{}, false
	}
	return date, clock, true
}

func dateFromCaptures(c Captures, defaultYear int) (Date, bool) {
	month, ok := MonthFromAbbrev(c.Get("month"))
	if !ok {
		return Date{}, false
	}
	day, err := strconv.Atoi(c.Get("day"))
	if err != nil || day < 1 || day > 31 {
		return Date{}, false
	}
	year := defaultYear
	if y := c.Get("year"); y != "" {
		year, _ = strconv.Atoi(y)
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// AirportCodeParenthesized returns the three-letter code inside trailing
// parentheses, e.g. "Orlando, FL, US (MCO)" -> "MCO". Empty when absent.
func AirportCodeParenthesized(token string) string {
	if m := parenthesizedCodePattern.FindStringSubmatch(strings.TrimSpace(token)); m != nil {
		return m[1]
	}
	return ""
}

// AirportCodeFromCSVLine extracts the code that follows a comma-spelled
// prefix, e.g. "M,C,OMCO" -> "MCO". The four-letter layout is tried first.
func AirportCodeFromCSVLine(token string) string {
	token = strings.TrimSpace(token)
	if m := csvCodeFourLetterPattern.FindStringSubmatch(token); m != nil {
		return m[1]
	}
	if m := csvCodeThreeLetterPattern.FindStringSubmatch(token); m != nil {
		return m[1]
	}
	return ""
}

// CityDescription returns the text before the first comma.
func CityDescription(token string) string {
	city, _, _ := strings.Cut(token, ",")
	return strings.TrimSpace(city)
}
