// Package main provides the leg-api server.
//
// leg-api turns pasted itinerary text (airline emails, booking pages, Gmail
// flight cards) into flight legs and stores them in trips. It serves a REST
// API and, when NATS_URL is set, answers parse requests published on NATS.
//
// Usage:
//
//	leg-api [options]
//
// Options (flags override environment and .env):
//
//	-port N             HTTP port (default: 8080, env: PORT)
//	-tz ZONE            Default IANA zone for texts without one (env: LEG_DEFAULT_TIMEZONE)
//	-store DRIVER       sqlite or postgres (default: sqlite, env: STORE_DRIVER)
//	-sqlite PATH        SQLite database file (default: legs.db, env: SQLITE_PATH)
//	-auth               Enable API key authentication (env: API_AUTH)
//	-api-keys KEYS      Comma-separated list of valid API keys (env: API_KEYS)
//	-log-level LEVEL    debug, info, warn or error (env: LOG_LEVEL)
//
// PostgreSQL, ClickHouse and NATS settings are read from the environment
// only; see internal/config.
//
// API Endpoints:
//
//	GET    /api/v1/health
//	POST   /api/v1/legs/parse                 {"text": ..., "timezone": ..., "trip_id": ...}
//	GET    /api/v1/legs
//	POST   /api/v1/legs                       {"trip_id": N, "order_index": N, "data": {...}}
//	GET    /api/v1/legs/{id}
//	PUT    /api/v1/legs/{id}                  {"data": {...}, "order_index": N}
//	DELETE /api/v1/legs/{id}
//	POST   /api/v1/trips                      {"name": ...}
//	GET    /api/v1/trips
//	GET    /api/v1/trips/{trip_id}
//	PUT    /api/v1/trips/{trip_id}            {"name": ..., "description": ..., "start_date": ..., "end_date": ...}
//	DELETE /api/v1/trips/{trip_id}
//	GET    /api/v1/trips/{trip_id}/legs
//	POST   /api/v1/trips/{trip_id}/legs/paste {"text": ..., "timezone": ..., "order_index": N}
//	GET    /api/v1/trips/{trip_id}/report
//	GET    /api/v1/airports/{code}/timezone
//	GET    /api/v1/audit/misses?since=72h     (requires CLICKHOUSE_HOST)
//	GET    /metrics
//
// Authentication:
//
//	When -auth is enabled, requests must include an API key via:
//	  - X-API-Key header
//	  - Authorization: Bearer <key> header
//	  - ?api_key=<key> query parameter
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"itinerary_parser/internal/api"
	"itinerary_parser/internal/config"
	"itinerary_parser/internal/ingest"
	"itinerary_parser/internal/logging"
	"itinerary_parser/internal/metrics"
	"itinerary_parser/internal/service"
	"itinerary_parser/internal/storage"
	"itinerary_parser/internal/tz"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP port for API server")
	defaultTZ := flag.String("tz", cfg.DefaultTimezone, "Default IANA timezone")
	driver := flag.String("store", cfg.Store.Driver, "Leg store: sqlite or postgres")
	sqlitePath := flag.String("sqlite", cfg.Store.SQLitePath, "SQLite database file")
	authEnabled := flag.Bool("auth", cfg.AuthEnabled, "Enable API key authentication")
	apiKeys := flag.String("api-keys", strings.Join(cfg.APIKeys, ","), "Comma-separated list of valid API keys (when auth enabled)")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level")
	flag.Parse()

	cfg.Port = *port
	cfg.DefaultTimezone = *defaultTZ
	cfg.Store.Driver = *driver
	cfg.Store.SQLitePath = *sqlitePath
	cfg.AuthEnabled = *authEnabled
	cfg.LogLevel = *logLevel

	log := logging.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, splitKeys(*apiKeys), log); err != nil {
		log.Error("leg-api stopped", "error", err)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, keys []string, log *logging.ZapLogger) error {
	if !tz.Valid(cfg.DefaultTimezone) {
		return fmt.Errorf("default timezone %q is not a known IANA zone", cfg.DefaultTimezone)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = store.Close() }()
	log.Info("leg store opened", "driver", cfg.Store.Driver)

	m := metrics.New("legs", nil)
	parser := &service.Parser{
		DefaultTimezone: cfg.DefaultTimezone,
		Metrics:         m,
		Log:             log,
	}

	// Optional ClickHouse parse audit.
	var misses api.MissCounter
	if cfg.AuditEnabled() {
		audit, err := storage.OpenAuditLog(ctx, cfg.ClickHouse)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		defer func() { _ = audit.Close() }()
		if err := audit.CreateSchema(ctx); err != nil {
			return fmt.Errorf("audit schema: %w", err)
		}
		parser.Audit = audit
		misses = audit
		log.Info("parse audit enabled", "host", cfg.ClickHouse.Host)
	}

	// Optional NATS ingest. The connection is drained during shutdown, before
	// the audit log and store are closed.
	var sub *ingest.Subscriber
	if cfg.IngestEnabled() {
		nc, err := ingest.Connect(cfg.NATSURL, log)
		if err != nil {
			return err
		}
		defer nc.Close()
		sub = ingest.NewSubscriber(nc, cfg.NATSSubject, parser, log)
		if err := sub.Start(); err != nil {
			return err
		}
	}

	server := api.NewServer(store, api.Config{
		Port:        cfg.Port,
		AuthEnabled: cfg.AuthEnabled,
		APIKeys:     keys,
		Parser:      parser,
		Audit:       misses,
		Metrics:     m,
		Log:         log,
	})
	httpServer := &http.Server{
		Addr:         server.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("leg API starting", "addr", httpServer.Addr, "auth", cfg.AuthEnabled, "default_tz", cfg.DefaultTimezone)
		errc <- httpServer.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = fmt.Errorf("http shutdown: %w", err)
	}
	if sub != nil {
		if err := sub.Shutdown(shutdownCtx); err != nil {
			log.Warn("nats drain failed", "error", err)
		}
	}
	return serveErr
}

func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
