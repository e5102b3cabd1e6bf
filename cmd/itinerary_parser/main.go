// Command-line entry point for the itinerary parser.
//
// Input formats
// -------------
// parse reads one pasted block (an airline confirmation email, a booking page
// copied from a browser, a Gmail flight card) from a file or stdin and prints
// the flight leg it describes as JSON. With -batch the input is JSONL instead,
// one request per line:
//
//	{"text": "...", "timezone": "America/Chicago", "trip_id": "7"}
//
// Lines that are not JSON objects are treated as the text itself, with "\n"
// escapes left to the caller.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"itinerary_parser/internal/airports"
	"itinerary_parser/internal/interpret"
	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/registry"
	"itinerary_parser/internal/report"
	"itinerary_parser/internal/service"
	"itinerary_parser/internal/tz"
)

const defaultZone = "America/New_York"

type ParseOut struct {
	interpret.Result
	Trace *registry.TraceResult `json:"trace,omitempty"`
}

type Stats struct {
	Lines   int
	Parsed  int
	Unknown int
	Formats map[string]int
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "itinerary_parser - commands:")
	fmt.Fprintln(w, "  parse     - parse pasted itinerary text and output a leg as JSON")
	fmt.Fprintln(w, "  classify  - print the detected source format")
	fmt.Fprintln(w, "  zone      - print the IANA zone for airport codes")
	fmt.Fprintln(w, "  report    - summarise a JSON array of legs")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  itinerary_parser parse [-input file] [-tz ZONE] [-trip ID] [-pretty] [-trace]")
	fmt.Fprintln(w, "  itinerary_parser parse -batch [-input requests.jsonl] [-tz ZONE] [-stats]")
	fmt.Fprintln(w, "  itinerary_parser classify [-input file]")
	fmt.Fprintln(w, "  itinerary_parser zone CODE...")
	fmt.Fprintln(w, "  itinerary_parser report [-input legs.json] [-tz ZONE] [-name NAME]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Input defaults to stdin.")
	fmt.Fprintln(w, "  - -tz is the zone used when the text names no airport (default America/New_York).")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "parse":
		runParse(os.Args[2:])
	case "classify":
		runClassify(os.Args[2:])
	case "zone":
		os.Exit(runZone(os.Args[2:], os.Stdout))
	case "report":
		runReport(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file (default: stdin)")
	zone := fs.String("tz", defaultZone, "Default IANA timezone")
	tripID := fs.String("trip", "", "Trip id copied to the leg")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	withTrace := fs.Bool("trace", false, "Include classifier and extractor trace")
	batch := fs.Bool("batch", false, "Input is JSONL, one request per line")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr (with -batch)")
	_ = fs.Parse(args)

	if !tz.Valid(*zone) {
		fmt.Fprintf(os.Stderr, "Unknown timezone: %s\n", *zone)
		os.Exit(1)
	}

	r, closeInput := openInput(*inPath)
	defer closeInput()

	var out any
	if *batch {
		results, st, err := parseBatch(r, *zone, *withTrace)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
			os.Exit(1)
		}
		out = results
		if *showStats {
			fmt.Fprintf(os.Stderr, "stats: lines=%d parsed=%d unknown=%d formats=%s\n",
				st.Lines, st.Parsed, st.Unknown, formatCounts(st.Formats))
		}
	} else {
		text, err := io.ReadAll(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
			os.Exit(1)
		}
		out = parseOne(service.Request{Text: string(text), TripID: *tripID}, *zone, *withTrace)
	}

	enc, err := marshalJSON(out, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}
	_, _ = os.Stdout.Write(append(enc, '\n'))
}

func parseOne(req service.Request, zone string, withTrace bool) ParseOut {
	if req.Timezone != "" && tz.Valid(req.Timezone) {
		zone = req.Timezone
	}
	res, trace := interpret.Trace(req.Text, leg.Context{DefaultTimezone: zone, TripID: req.TripID})
	out := ParseOut{Result: res}
	if withTrace {
		out.Trace = trace
	}
	return out
}

func parseBatch(r io.Reader, zone string, withTrace bool) ([]ParseOut, *Stats, error) {
	scanner := bufio.NewScanner(r)
	// Pasted emails can be long; bump buffer.
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, 16*1024*1024)

	out := make([]ParseOut, 0, 64)
	st := &Stats{Formats: map[string]int{}}

	for scanner.Scan() {
		st.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		req := service.Request{Text: line}
		if strings.HasPrefix(line, "{") {
			var decoded service.Request
			if err := json.Unmarshal([]byte(line), &decoded); err == nil {
				req = decoded
			}
		}

		po := parseOne(req, zone, withTrace)
		out = append(out, po)
		st.Parsed++
		st.Formats[po.Format.String()]++
		if po.Format == leg.Unknown {
			st.Unknown++
		}
	}
	return out, st, scanner.Err()
}

func runClassify(args []string) {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	inPath := fs.String("input", "", "Input file (default: stdin)")
	_ = fs.Parse(args)

	r, closeInput := openInput(*inPath)
	defer closeInput()

	text, err := io.ReadAll(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(interpret.Classify(string(text)))
}

// runZone prints one line per code and returns 1 if any code is unknown.
func runZone(codes []string, w io.Writer) int {
	if len(codes) == 0 {
		fmt.Fprintln(os.Stderr, "zone: at least one airport code is required")
		return 2
	}
	status := 0
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if zone, ok := airports.LookupZone(code); ok {
			fmt.Fprintf(w, "%s\t%s\n", code, zone)
			continue
		}
		fmt.Fprintf(w, "%s\tunknown\n", code)
		status = 1
	}
	return status
}

func runReport(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	inPath := fs.String("input", "", "JSON array of legs (default: stdin)")
	zone := fs.String("tz", defaultZone, "Zone for legs that carry none")
	name := fs.String("name", "", "Trip name printed above the summary")
	_ = fs.Parse(args)

	r, closeInput := openInput(*inPath)
	defer closeInput()

	legs, err := decodeLegs(r, *zone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON decode error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(report.Trip(*name, legs))
}

// decodeLegs accepts either bare drafts or parse output ({"draft": {...}}).
func decodeLegs(r io.Reader, zone string) ([]leg.Draft, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	legs := make([]leg.Draft, 0, len(raw))
	for i, item := range raw {
		var wrapped struct {
			Draft *leg.Draft `json:"draft"`
		}
		var d leg.Draft
		if err := json.Unmarshal(item, &wrapped); err == nil && wrapped.Draft != nil {
			d = *wrapped.Draft
		} else if err := json.Unmarshal(item, &d); err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		if d.DepartureTimezone == "" {
			d.DepartureTimezone = zone
		}
		if d.ArrivalTimezone == "" {
			d.ArrivalTimezone = zone
		}
		legs = append(legs, d)
	}
	return legs, nil
}

func openInput(path string) (io.Reader, func()) {
	if path == "" {
		return os.Stdin, func() {}
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open input: %v\n", err)
		os.Exit(1)
	}
	return f, func() { _ = f.Close() }
}

func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, m[k]))
	}
	return strings.Join(parts, ",")
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
