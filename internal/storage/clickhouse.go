package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
)

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// AuditEntry records one interpretation of pasted text.
type AuditEntry struct {
	ID              uuid.UUID
	Timestamp       time.Time
	Source          string // "api", "nats" or "cli".
	Format          string
	TripID          string
	DefaultTimezone string
	RawText         string
	MissingFields   []string
}

// AuditLog is an append-only ClickHouse table of every parse, used to find
// layouts whose fields keep falling back to defaults.
type AuditLog struct {
	conn driver.Conn
}

// OpenAuditLog opens a connection to ClickHouse.
func OpenAuditLog(ctx context.Context, cfg ClickHouseConfig) (*AuditLog, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("open clickhouse: %w", err)
	}

	// Test the connection.
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	return &AuditLog{conn: conn}, nil
}

// Close closes the ClickHouse connection.
func (a *AuditLog) Close() error {
	return a.conn.Close()
}

// CreateSchema creates the audit table.
func (a *AuditLog) CreateSchema(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS leg_parse_audit (
		id                UUID,
		timestamp         DateTime64(3),
		source            LowCardinality(String),
		format            LowCardinality(String),
		trip_id           String,
		default_timezone  LowCardinality(String),
		raw_text          String,
		missing_fields    String
	)
	ENGINE = MergeTree()
	PARTITION BY toYYYYMM(timestamp)
	ORDER BY (format, timestamp, id)`

	if err := a.conn.Exec(ctx, q); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Record appends an entry. A zero ID or Timestamp is filled in.
func (a *AuditLog) Record(ctx context.Context, e AuditEntry) error {
	e = e.withDefaults()
	err := a.conn.Exec(ctx, `
		INSERT INTO leg_parse_audit (id, timestamp, source, format, trip_id, default_timezone, raw_text, missing_fields)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Timestamp, e.Source, e.Format, e.TripID, e.DefaultTimezone, e.RawText, strings.Join(e.MissingFields, ","))
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// MissCount is how often a field fell back to its default for one format.
type MissCount struct {
	Format string `json:"format"`
	Field  string `json:"field"`
	Count  uint64 `json:"count"`
}

// MissCounts returns per-format counts of defaulted fields since the given time.
func (a *AuditLog) MissCounts(ctx context.Context, since time.Time) ([]MissCount, error) {
	rows, err := a.conn.Query(ctx, `
		SELECT format, field, count() AS n
		FROM leg_parse_audit
		ARRAY JOIN splitByChar(',', missing_fields) AS field
		WHERE timestamp >= ? AND missing_fields != ''
		GROUP BY format, field
		ORDER BY n DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query miss counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []MissCount
	for rows.Next() {
		var c MissCount
		if err := rows.Scan(&c.Format, &c.Field, &c.Count); err != nil {
			return nil, fmt.Errorf("scan miss count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (e AuditEntry) withDefaults() AuditEntry {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}

// Auditor records parses. *AuditLog implements it; callers without
// ClickHouse use NopAuditor.
type Auditor interface {
	Record(ctx context.Context, e AuditEntry) error
}

// NopAuditor discards entries.
type NopAuditor struct{}

func (NopAuditor) Record(context.Context, AuditEntry) error { return nil }
