package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"itinerary_parser/internal/airports"
	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/report"
	"itinerary_parser/internal/service"
	"itinerary_parser/internal/storage"
)

// ParseResponse is the JSON response for POST /legs/parse.
type ParseResponse struct {
	Format  leg.FormatTag `json:"format"`
	Draft   leg.Draft     `json:"draft"`
	Missing []string      `json:"missing"`
}

// PasteResponse is the JSON response for pasting text into a trip.
type PasteResponse struct {
	Format  leg.FormatTag `json:"format"`
	Leg     storage.Leg   `json:"leg"`
	Missing []string      `json:"missing"`
}

// TripRequest is the request body for creating a trip.
type TripRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// LegRequest is the request body for storing an already parsed leg.
type LegRequest struct {
	TripID     int64     `json:"trip_id"`
	OrderIndex *int      `json:"order_index,omitempty"`
	Draft      leg.Draft `json:"data"`
}

// AirportZoneResponse is the JSON response for airport zone lookups.
type AirportZoneResponse struct {
	Code     string `json:"code"`
	Timezone string `json:"timezone"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req service.Request
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.parser.Zone(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := s.parser.Parse(r.Context(), "api", req)
	writeJSON(w, http.StatusOK, ParseResponse{Format: res.Format, Draft: res.Draft, Missing: res.Missing})
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	tripID, ok := urlID(w, r, "trip_id")
	if !ok {
		return
	}

	var req service.Request
	if !s.decode(w, r, &req) {
		return
	}
	if _, err := s.parser.Zone(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetTrip(r.Context(), tripID); err != nil {
		s.storeError(w, "get trip", err)
		return
	}

	req.TripID = strconv.FormatInt(tripID, 10)
	res := s.parser.Parse(r.Context(), "api", req)

	order := -1
	if req.OrderIndex != nil {
		order = *req.OrderIndex
	}
	l, err := s.store.CreateLeg(r.Context(), storage.NewLeg{TripID: tripID, OrderIndex: order, Draft: res.Draft})
	if err != nil {
		s.storeError(w, "create leg", err)
		return
	}
	s.metrics.ObserveStored()

	writeJSON(w, http.StatusCreated, PasteResponse{Format: res.Format, Leg: l, Missing: res.Missing})
}

func (s *Server) handleListLegs(w http.ResponseWriter, r *http.Request) {
	legs, err := s.store.ListLegs(r.Context())
	if err != nil {
		s.storeError(w, "list legs", err)
		return
	}
	writeJSON(w, http.StatusOK, legs)
}

func (s *Server) handleCreateLeg(w http.ResponseWriter, r *http.Request) {
	var req LegRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.TripID <= 0 {
		writeError(w, http.StatusBadRequest, "trip_id is required")
		return
	}

	order := -1
	if req.OrderIndex != nil {
		order = *req.OrderIndex
	}
	l, err := s.store.CreateLeg(r.Context(), storage.NewLeg{TripID: req.TripID, OrderIndex: order, Draft: req.Draft})
	if err != nil {
		s.storeError(w, "create leg", err)
		return
	}
	s.metrics.ObserveStored()
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleGetLeg(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	l, err := s.store.GetLeg(r.Context(), id)
	if err != nil {
		s.storeError(w, "get leg", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleUpdateLeg(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var u storage.LegUpdate
	if !s.decode(w, r, &u) {
		return
	}
	l, err := s.store.UpdateLeg(r.Context(), id, u)
	if err != nil {
		s.storeError(w, "update leg", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLeg(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteLeg(r.Context(), id); err != nil {
		s.storeError(w, "delete leg", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req TripRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	t, err := s.store.CreateTrip(r.Context(), storage.Trip{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		s.storeError(w, "create trip", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.store.ListTrips(r.Context())
	if err != nil {
		s.storeError(w, "list trips", err)
		return
	}
	writeJSON(w, http.StatusOK, trips)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "trip_id")
	if !ok {
		return
	}
	t, err := s.store.GetTrip(r.Context(), id)
	if err != nil {
		s.storeError(w, "get trip", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "trip_id")
	if !ok {
		return
	}
	var u storage.TripUpdate
	if !s.decode(w, r, &u) {
		return
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		u.Name = &name
	}
	t, err := s.store.UpdateTrip(r.Context(), id, u)
	if err != nil {
		s.storeError(w, "update trip", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "trip_id")
	if !ok {
		return
	}
	if err := s.store.DeleteTrip(r.Context(), id); err != nil {
		s.storeError(w, "delete trip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTripLegs(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "trip_id")
	if !ok {
		return
	}
	if _, err := s.store.GetTrip(r.Context(), id); err != nil {
		s.storeError(w, "get trip", err)
		return
	}
	legs, err := s.store.ListLegsByTrip(r.Context(), id)
	if err != nil {
		s.storeError(w, "list legs", err)
		return
	}
	writeJSON(w, http.StatusOK, legs)
}

func (s *Server) handleTripReport(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "trip_id")
	if !ok {
		return
	}
	t, err := s.store.GetTrip(r.Context(), id)
	if err != nil {
		s.storeError(w, "get trip", err)
		return
	}
	legs, err := s.store.ListLegsByTrip(r.Context(), id)
	if err != nil {
		s.storeError(w, "list legs", err)
		return
	}

	drafts := make([]leg.Draft, 0, len(legs))
	for _, l := range legs {
		drafts = append(drafts, l.Draft)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(report.Trip(t.Name, drafts) + "\n"))
}

func (s *Server) handleAirportZone(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))
	zone, ok := airports.LookupZone(code)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown airport code")
		return
	}
	writeJSON(w, http.StatusOK, AirportZoneResponse{Code: code, Timezone: zone})
}

// handleMissCounts reports defaulted fields per format from the parse audit.
// ?since takes a duration ("72h") or an RFC 3339 time; the default is 24h.
func (s *Server) handleMissCounts(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, "parse audit is not enabled")
		return
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	if v := r.URL.Query().Get("since"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			since = time.Now().UTC().Add(-d)
		} else if t, err := time.Parse(time.RFC3339, v); err == nil {
			since = t
		} else {
			writeError(w, http.StatusBadRequest, "Invalid since")
			return
		}
	}

	counts, err := s.audit.MissCounts(r.Context(), since)
	if err != nil {
		s.metrics.ObserveError("miss counts")
		s.log.Error("audit query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if counts == nil {
		counts = []storage.MissCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}

// Helper functions.

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrNoFields):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.metrics.ObserveError(op)
		s.log.Error("store failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func urlID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
