package patterns

// BasePatterns is the shared vocabulary for Layout patterns, referenced as {NAME}.
var BasePatterns = map[string]string{
	// Calendar.
	"DOW":   `[A-Za-z]{3}`,  // Tue
	"MON":   `[A-Za-z]{3}`,  // Aug
	"DAY":   `\d{1,2}`,      // 6, 29
	"YEAR":  `\d{4}`,        // 2025
	"CLOCK": `\d{1,2}:\d{2}\s*[AaPp][Mm]`, // 8:15 AM, 9:25PM

	// Flight identifiers.
	"CARRIER":   `[A-Za-z]{2,4}`, // UA, DAL
	"FLIGHTNUM": `\d{1,5}`,
	"DASH":      `[–—]`, // en or em dash, as pasted from webmail headers

	// Airport codes as printed on confirmations.
	"IATA": `[A-Za-z]{3}`,
	"CODE": `[A-Za-z]{3,4}`,
}
