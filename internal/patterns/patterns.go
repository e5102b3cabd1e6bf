// Package patterns provides shared regex patterns and token parsers for itinerary text.
package patterns

import (
	"regexp"
	"strings"
	"time"
)

// Line-level markers used by the source classifier and the format parsers.
var (
	// GmailHeaderPattern matches a header line ending in "– UA 237".
	GmailHeaderPattern = regexp.MustCompile(`[–—]\s+[A-Za-z]{2,4}\s+\d{1,5}$`)
	// GmailCarrierPattern captures the carrier code and number after the dash.
	GmailCarrierPattern = regexp.MustCompile(`[–—]\s+([A-Za-z]{2,4}\s+\d{1,5})`)
	// DashPattern splits a header line at its first en or em dash.
	DashPattern = regexp.MustCompile(`[–—]`)

	FlightToPattern     = regexp.MustCompile(`^Flight to\b`)
	FlightNofMPattern   = regexp.MustCompile(`(?i)^Flight\s+(\d+)\s+of\s+(\d+)\b\s*(.*)$`)
	DepartLabelPattern  = regexp.MustCompile(`(?i)^Depart\b`)
	ArriveLabelPattern  = regexp.MustCompile(`(?i)^Arrive\b`)
	FlightLinePattern   = regexp.MustCompile(`(?i)^Flight\b`)
	FlightInfoPattern   = regexp.MustCompile(`(?i)^Flight Info\b`)
	flightLabelPrefix   = regexp.MustCompile(`(?i)^Flight\s+`)
	TakeoffLabelPattern = regexp.MustCompile(`(?i)^Take-off\b`)
	LandingLabelPattern = regexp.MustCompile(`(?i)^Landing\b`)
	DurationPattern     = regexp.MustCompile(`(?i)^Duration\b`)

	ConfirmationLabelPattern  = regexp.MustCompile(`(?i)^Confirmation number\b`)
	ConfirmationColonPattern  = regexp.MustCompile(`(?i)^Confirmation Number:\s*(.*)$`)
	ClockPairPattern          = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*[AP]M)\s+(\d{1,2}:\d{2}\s*[AP]M)`)
	ShortAlphaTokenPattern    = regexp.MustCompile(`^[A-Za-z]{3,4}$`)
	columnSeparatorPattern    = regexp.MustCompile(`\t+|[ \x{00A0}\x{202F}]{2,}`)
	lineBreakPattern          = regexp.MustCompile(`\r?\n`)
	spaceRunPattern           = regexp.MustCompile(`\s+`)
	parenthesizedCodePattern  = regexp.MustCompile(`\(([A-Za-z]{3})\)$`)
	csvCodeFourLetterPattern  = regexp.MustCompile(`[A-Za-z],\s*[A-Za-z],\s*[A-Za-z],\s*[A-Za-z]\s*([A-Za-z]{4})`)
	csvCodeThreeLetterPattern = regexp.MustCompile(`[A-Za-z],\s*[A-Za-z],\s*[A-Za-z]\s*([A-Za-z]{3})`)
)

// monthLookup maps three-letter month abbreviations to months.
var monthLookup = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// MonthFromAbbrev returns the month for a three-letter abbreviation.
func MonthFromAbbrev(abbrev string) (time.Month, bool) {
	m, ok := monthLookup[strings.ToUpper(strings.TrimSpace(abbrev))]
	return m, ok
}

// spaceReplacer turns non-breaking and narrow no-break spaces into plain spaces.
var spaceReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ")

// NormalizeWhitespace collapses exotic spaces and whitespace runs to one space.
func NormalizeWhitespace(s string) string {
	s = spaceReplacer.Replace(s)
	return strings.TrimSpace(spaceRunPattern.ReplaceAllString(s, " "))
}

// Lines splits text into trimmed lines, keeping empty ones so that
// "label followed by value" positions stay meaningful.
func Lines(text string) []string {
	raw := lineBreakPattern.Split(text, -1)
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(spaceReplacer.Replace(l))
	}
	return lines
}

// NonEmptyLines is Lines with blank lines removed.
func NonEmptyLines(text string) []string {
	var out []string
	for _, l := range Lines(text) {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// FirstNonEmptyLine returns the first line with content, or "".
func FirstNonEmptyLine(text string) string {
	for _, l := range Lines(text) {
		if l != "" {
			return l
		}
	}
	return ""
}

// IndexOf returns the index of the first line at or after start matching re, or -1.
func IndexOf(lines []string, start int, re *regexp.Regexp) int {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(lines); i++ {
		if re.MatchString(lines[i]) {
			return i
		}
	}
	return -1
}

// LineAfter returns the line at idx+offset, or "" when idx is -1 or out of range.
func LineAfter(lines []string, idx, offset int) string {
	if idx < 0 || idx+offset >= len(lines) {
		return ""
	}
	return lines[idx+offset]
}

// SplitColumns splits a two-column line on tabs or runs of two or more spaces.
// Single spaces inside a column are preserved.
func SplitColumns(line string) []string {
	var cols []string
	for _, c := range columnSeparatorPattern.Split(strings.TrimSpace(line), -1) {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// StripFlightLabel removes a leading "Flight " label.
func StripFlightLabel(line string) string {
	return strings.TrimSpace(flightLabelPrefix.ReplaceAllString(line, ""))
}
