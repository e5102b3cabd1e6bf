// Package api provides REST API endpoints for parsing pasted itineraries and
// managing the trips and legs they produce.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"itinerary_parser/internal/logging"
	"itinerary_parser/internal/metrics"
	"itinerary_parser/internal/service"
	"itinerary_parser/internal/storage"
)

// maxBodyBytes bounds request bodies. Pasted itineraries are a few KB.
const maxBodyBytes = 1 << 20

// MissCounter reports how often parsed fields fell back to defaults.
// *storage.AuditLog implements it.
type MissCounter interface {
	MissCounts(ctx context.Context, since time.Time) ([]storage.MissCount, error)
}

// Server provides REST API access to the leg parser and the leg store.
type Server struct {
	store       storage.Store
	parser      *service.Parser
	audit       MissCounter
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	log         logging.Logger
	port        int
	authEnabled bool
	apiKeys     map[string]bool // Simple API key auth (when enabled).
}

// Config holds configuration for the API server.
type Config struct {
	Port        int
	AuthEnabled bool
	APIKeys     []string // List of valid API keys.

	Parser   *service.Parser     // Required.
	Audit    MissCounter         // Optional; serves /audit/misses.
	Metrics  *metrics.Metrics    // Optional.
	Gatherer prometheus.Gatherer // Serves /metrics. Nil uses the default gatherer.
	Log      logging.Logger      // Optional.
}

// NewServer creates a new API server backed by store.
func NewServer(store storage.Store, cfg Config) *Server {
	keys := make(map[string]bool)
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys[k] = true
		}
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	log := cfg.Log
	if log == nil {
		log = logging.Nop()
	}

	return &Server{
		store:       store,
		parser:      cfg.Parser,
		audit:       cfg.Audit,
		metrics:     cfg.Metrics,
		gatherer:    gatherer,
		log:         log,
		port:        cfg.Port,
		authEnabled: cfg.AuthEnabled,
		apiKeys:     keys,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return ":" + strconv.Itoa(s.port)
}

// Handler returns the full HTTP handler: middleware, /api/v1 routes and /metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Standard middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS for browser access.
	r.Use(corsMiddleware)

	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Mount("/api/v1", s.Router())

	return r
}

// Router returns the API routes for embedding in other servers.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Health check (no auth required).
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		// Optional authentication.
		if s.authEnabled {
			r.Use(s.authMiddleware)
		}

		r.Post("/legs/parse", s.handleParse)

		r.Get("/legs", s.handleListLegs)
		r.Post("/legs", s.handleCreateLeg)
		r.Get("/legs/{id}", s.handleGetLeg)
		r.Put("/legs/{id}", s.handleUpdateLeg)
		r.Delete("/legs/{id}", s.handleDeleteLeg)

		r.Post("/trips", s.handleCreateTrip)
		r.Get("/trips", s.handleListTrips)
		r.Get("/trips/{trip_id}", s.handleGetTrip)
		r.Put("/trips/{trip_id}", s.handleUpdateTrip)
		r.Delete("/trips/{trip_id}", s.handleDeleteTrip)
		r.Get("/trips/{trip_id}/legs", s.handleListTripLegs)
		r.Post("/trips/{trip_id}/legs/paste", s.handlePaste)
		r.Get("/trips/{trip_id}/report", s.handleTripReport)

		r.Get("/airports/{code}/timezone", s.handleAirportZone)
		r.Get("/audit/misses", s.handleMissCounts)
	})

	return r
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware validates API key authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check X-API-Key header first.
		apiKey := r.Header.Get("X-API-Key")

		// Fall back to Authorization: Bearer <key>.
		if apiKey == "" {
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		// Fall back to query parameter (for simple testing).
		if apiKey == "" {
			apiKey = r.URL.Query().Get("api_key")
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "API key required")
			return
		}

		if !s.apiKeys[apiKey] {
			writeError(w, http.StatusForbidden, "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogger logs each request through the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
