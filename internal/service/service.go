// Package service runs leg interpretation for the network front ends and
// records what happened: metrics, audit rows and logs.
package service

import (
	"context"
	"fmt"
	"time"

	"itinerary_parser/internal/interpret"
	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/logging"
	"itinerary_parser/internal/metrics"
	"itinerary_parser/internal/storage"
	"itinerary_parser/internal/tz"
)

// Request is a block of pasted text plus its per-call context.
type Request struct {
	Text       string `json:"text"`
	Timezone   string `json:"timezone,omitempty"`
	TripID     string `json:"trip_id,omitempty"`
	OrderIndex *int   `json:"order_index,omitempty"`
}

// Parser interprets requests on behalf of the api and ingest packages.
type Parser struct {
	DefaultTimezone string
	Audit           storage.Auditor  // Optional.
	Metrics         *metrics.Metrics // Optional.
	Log             logging.Logger   // Optional.

	// Clock overrides the parsers' notion of now. Nil means time.Now.
	Clock func() time.Time
}

// Zone returns the zone a request should be parsed in. An explicit zone the
// platform database does not know is an error.
func (p *Parser) Zone(req Request) (string, error) {
	if req.Timezone == "" {
		return p.DefaultTimezone, nil
	}
	if !tz.Valid(req.Timezone) {
		return "", fmt.Errorf("unknown timezone %q", req.Timezone)
	}
	return req.Timezone, nil
}

// Parse interprets req. Source names the front end ("api", "nats", "cli")
// for logs and the audit table. Audit failures are logged, not returned.
func (p *Parser) Parse(ctx context.Context, source string, req Request) interpret.Result {
	zone, err := p.Zone(req)
	if err != nil {
		p.logger().Warn("falling back to default timezone", "source", source, "error", err)
		zone = p.DefaultTimezone
	}

	start := time.Now()
	res, trace := interpret.Trace(req.Text, leg.Context{
		DefaultTimezone: zone,
		TripID:          req.TripID,
		Clock:           p.Clock,
	})
	took := time.Since(start)

	format := res.Format.String()
	p.Metrics.ObserveParse(format, res.Missing, took)
	p.logger().Debug("leg parsed",
		"source", source,
		"format", format,
		"parser", trace.ParserName,
		"missing", res.Missing,
		"took", took,
	)

	if p.Audit != nil {
		err := p.Audit.Record(ctx, storage.AuditEntry{
			Source:          source,
			Format:          format,
			TripID:          req.TripID,
			DefaultTimezone: zone,
			RawText:         req.Text,
			MissingFields:   res.Missing,
		})
		if err != nil {
			p.Metrics.ObserveError("audit")
			p.logger().Warn("audit record failed", "error", err)
		}
	}

	return res
}

func (p *Parser) logger() logging.Logger {
	if p.Log == nil {
		return logging.Nop()
	}
	return p.Log
}
