package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinerary_parser/internal/leg"
	"itinerary_parser/internal/metrics"
	"itinerary_parser/internal/service"
	"itinerary_parser/internal/storage"
	"itinerary_parser/internal/tz"
)

var fixedNow = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	store, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := prometheus.NewRegistry()
	m := metrics.New("legs", reg)
	cfg.Metrics = m
	cfg.Gatherer = reg
	cfg.Parser = &service.Parser{
		DefaultTimezone: "UTC",
		Metrics:         m,
		Clock:           func() time.Time { return fixedNow },
	}
	return NewServer(store, cfg).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, Config{Port: 8081})
	rec := do(t, h, http.MethodGet, "/api/v1/health", "")

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestServer(t, Config{
		AuthEnabled: true,
		APIKeys:     []string{"test-key-123", "another-key"},
	})

	tests := []struct {
		name       string
		path       string
		apiKey     string
		keyHeader  string
		wantStatus int
	}{
		{name: "health is open", path: "/api/v1/health", wantStatus: http.StatusOK},
		{name: "no key", path: "/api/v1/legs", wantStatus: http.StatusUnauthorized},
		{name: "invalid key", path: "/api/v1/legs", apiKey: "wrong-key", keyHeader: "X-API-Key", wantStatus: http.StatusForbidden},
		{name: "valid key via X-API-Key", path: "/api/v1/legs", apiKey: "test-key-123", keyHeader: "X-API-Key", wantStatus: http.StatusOK},
		{name: "valid key via Bearer", path: "/api/v1/legs", apiKey: "another-key", keyHeader: "Authorization", wantStatus: http.StatusOK},
		{name: "valid key via query", path: "/api/v1/legs?api_key=test-key-123", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.apiKey != "" {
				if tt.keyHeader == "Authorization" {
					req.Header.Set("Authorization", "Bearer "+tt.apiKey)
				} else {
					req.Header.Set(tt.keyHeader, tt.apiKey)
				}
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, Config{})
	rec := do(t, h, http.MethodOptions, "/api/v1/legs/parse", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestParseEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodPost, "/api/v1/legs/parse", `{"text":"Flight UA 1234","trip_id":"t1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ParseResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, leg.DemoFlight, resp.Format)
	assert.Equal(t, "Demo-Parsed", resp.Draft.Name)
	assert.Equal(t, "UA", resp.Draft.Carrier)
	assert.Equal(t, "t1", resp.Draft.TripID)
	assert.Equal(t, "UTC", resp.Draft.DepartureTimezone)
	assert.True(t, resp.Draft.DepartureInstant.Equal(fixedNow))
	assert.NotNil(t, resp.Missing)
}

func TestParseEndpointGmail(t *testing.T) {
	if !tz.Valid("America/New_York") {
		t.Skip("zoneinfo database unavailable")
	}
	h := newTestServer(t, Config{})

	text := "United Airlines – UA 237\nTake-off\nJun 15 2024, 6:30 AM\nLanding\nJun 15 2024, 9:45 AM\nConfirmation number\nABC123"
	body, err := json.Marshal(service.Request{Text: text, Timezone: "America/New_York"})
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/api/v1/legs/parse", string(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ParseResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, leg.Gmail, resp.Format)
	assert.Equal(t, "2024-06-15T10:30:00Z", resp.Draft.DepartureInstant.Format(time.RFC3339))
	assert.Equal(t, "ABC123", resp.Draft.ConfirmationValue())
}

func TestParseEndpointErrors(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodPost, "/api/v1/legs/parse", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/legs/parse", `{"text":"x","timezone":"Nowhere/Land"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func createTrip(t *testing.T, h http.Handler, name string) storage.Trip {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/trips", fmt.Sprintf(`{"name":%q}`, name))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var trip storage.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&trip))
	return trip
}

func TestTripAndLegLifecycle(t *testing.T) {
	h := newTestServer(t, Config{})
	trip := createTrip(t, h, "Orlando")
	base := fmt.Sprintf("/api/v1/trips/%d", trip.ID)

	// Paste two legs.
	rec := do(t, h, http.MethodPost, base+"/legs/paste", `{"text":"Flight UA 1234"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var pasted PasteResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pasted))
	assert.Equal(t, leg.DemoFlight, pasted.Format)
	assert.Equal(t, trip.ID, pasted.Leg.TripID)
	assert.Equal(t, fmt.Sprint(trip.ID), pasted.Leg.Draft.TripID)
	assert.Equal(t, 0, pasted.Leg.OrderIndex)

	rec = do(t, h, http.MethodPost, base+"/legs/paste", `{"text":"Flight DL 9"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// List the trip's legs.
	rec = do(t, h, http.MethodGet, base+"/legs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var legs []storage.Leg
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&legs))
	require.Len(t, legs, 2)
	assert.Equal(t, "UA", legs[0].Draft.Carrier)
	assert.Equal(t, "DL", legs[1].Draft.Carrier)

	// Rename the first leg.
	legPath := fmt.Sprintf("/api/v1/legs/%d", pasted.Leg.ID)
	draft := pasted.Leg.Draft
	draft.Name = "Outbound"
	update, err := json.Marshal(storage.LegUpdate{Draft: &draft})
	require.NoError(t, err)
	rec = do(t, h, http.MethodPut, legPath, string(update))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, legPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got storage.Leg
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Outbound", got.Draft.Name)

	// Empty update.
	rec = do(t, h, http.MethodPut, legPath, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Report.
	rec = do(t, h, http.MethodGet, base+"/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Orlando\nLegs in this trip:\n1. Outbound\n"), rec.Body.String())

	// Delete.
	rec = do(t, h, http.MethodDelete, legPath, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, legPath, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/legs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestTripErrors(t *testing.T) {
	h := newTestServer(t, Config{})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodPost, "/api/v1/trips", `{"name":"  "}`, http.StatusBadRequest},
		{http.MethodGet, "/api/v1/trips/abc", "", http.StatusBadRequest},
		{http.MethodGet, "/api/v1/trips/42", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/trips/42/legs", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/trips/42/report", "", http.StatusNotFound},
		{http.MethodPost, "/api/v1/trips/42/legs/paste", `{"text":"Flight UA 1"}`, http.StatusNotFound},
		{http.MethodDelete, "/api/v1/legs/42", "", http.StatusNotFound},
		{http.MethodPut, "/api/v1/legs/0", `{}`, http.StatusBadRequest},
		{http.MethodPut, "/api/v1/trips/42", `{"name":"x"}`, http.StatusNotFound},
		{http.MethodPost, "/api/v1/legs", `{"data":{}}`, http.StatusBadRequest},
		{http.MethodPost, "/api/v1/legs", `{"trip_id":42,"data":{}}`, http.StatusNotFound},
		{http.MethodPost, "/api/v1/legs", `[`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestEmptyTripReport(t *testing.T) {
	h := newTestServer(t, Config{})
	trip := createTrip(t, h, "Empty")

	rec := do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/trips/%d/report", trip.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Empty\nNo legs found for this trip.\n", rec.Body.String())
}

func TestAirportZone(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodGet, "/api/v1/airports/iad/timezone", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AirportZoneResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, AirportZoneResponse{Code: "IAD", Timezone: "America/New_York"}, resp)

	rec = do(t, h, http.MethodGet, "/api/v1/airports/ZZZ/timezone", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, Config{})
	do(t, h, http.MethodPost, "/api/v1/legs/parse", `{"text":"Flight UA 1"}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `legs_classifications_total{format="DemoFlight"} 1`)
}

func TestUpdateTrip(t *testing.T) {
	h := newTestServer(t, Config{})
	trip := createTrip(t, h, "Orlando")
	path := fmt.Sprintf("/api/v1/trips/%d", trip.ID)

	rec := do(t, h, http.MethodPut, path, `{"name":" Orlando 2025 ","end_date":"2025-08-05"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated storage.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Equal(t, "Orlando 2025", updated.Name)
	assert.Equal(t, "2025-08-05", updated.EndDate)

	rec = do(t, h, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got storage.Trip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Orlando 2025", got.Name)
	assert.Equal(t, "2025-08-05", got.EndDate)

	rec = do(t, h, http.MethodPut, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPut, path, `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLeg(t *testing.T) {
	h := newTestServer(t, Config{})
	trip := createTrip(t, h, "Manual")

	dep := time.Date(2025, 8, 12, 12, 15, 0, 0, time.UTC)
	body, err := json.Marshal(LegRequest{
		TripID: trip.ID,
		Draft: leg.Draft{
			Name:              "Typed in",
			DepartureInstant:  dep,
			DepartureLocation: "IAD",
			DepartureTimezone: "America/New_York",
			ArrivalInstant:    dep.Add(2 * time.Hour),
			ArrivalLocation:   "MCO",
			ArrivalTimezone:   "America/New_York",
			Carrier:           "UA 1234",
		},
	})
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/api/v1/legs", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created storage.Leg
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, trip.ID, created.TripID)
	assert.Equal(t, 0, created.OrderIndex)
	assert.Equal(t, fmt.Sprint(trip.ID), created.Draft.TripID)
	assert.True(t, dep.Equal(created.Draft.DepartureInstant))

	// An explicit order index is kept.
	rec = do(t, h, http.MethodPost, "/api/v1/legs", fmt.Sprintf(`{"trip_id":%d,"order_index":5,"data":{"name":"Later"}}`, trip.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/trips/%d/legs", trip.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var legs []storage.Leg
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&legs))
	require.Len(t, legs, 2)
	assert.Equal(t, "Typed in", legs[0].Draft.Name)
	assert.Equal(t, 5, legs[1].OrderIndex)
}

type fakeMisses struct {
	since  time.Time
	counts []storage.MissCount
	err    error
}

func (f *fakeMisses) MissCounts(_ context.Context, since time.Time) ([]storage.MissCount, error) {
	f.since = since
	return f.counts, f.err
}

func TestMissCounts(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		h := newTestServer(t, Config{})
		rec := do(t, h, http.MethodGet, "/api/v1/audit/misses", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("counts", func(t *testing.T) {
		audit := &fakeMisses{counts: []storage.MissCount{{Format: "UnitedEmail", Field: "carrier", Count: 3}}}
		h := newTestServer(t, Config{Audit: audit})

		rec := do(t, h, http.MethodGet, "/api/v1/audit/misses?since=2025-07-01T00:00:00Z", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `[{"format":"UnitedEmail","field":"carrier","count":3}]`, rec.Body.String())
		assert.True(t, audit.since.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))

		before := time.Now().UTC()
		rec = do(t, h, http.MethodGet, "/api/v1/audit/misses?since=72h", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.WithinDuration(t, before.Add(-72*time.Hour), audit.since, time.Minute)

		rec = do(t, h, http.MethodGet, "/api/v1/audit/misses?since=yesterday", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty", func(t *testing.T) {
		h := newTestServer(t, Config{Audit: &fakeMisses{}})
		rec := do(t, h, http.MethodGet, "/api/v1/audit/misses", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("query error", func(t *testing.T) {
		h := newTestServer(t, Config{Audit: &fakeMisses{err: errors.New("clickhouse down")}})
		rec := do(t, h, http.MethodGet, "/api/v1/audit/misses", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
