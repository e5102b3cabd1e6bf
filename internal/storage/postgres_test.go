package storage

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestPostgres connects to the database named by TEST_POSTGRES_HOST and
// friends. Tests skip when it is unset.
func setupTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()

	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("TEST_POSTGRES_HOST not set")
	}
	cfg := DefaultConfig().Postgres
	cfg.Host = host
	if v := os.Getenv("TEST_POSTGRES_PORT"); v != "" {
		cfg.Port, _ = strconv.Atoi(v)
	}
	if v := os.Getenv("TEST_POSTGRES_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("TEST_POSTGRES_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("TEST_POSTGRES_DB"); v != "" {
		cfg.Database = v
	}

	ctx := context.Background()
	s, err := OpenPostgres(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, s.CreateSchema(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresLegLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupTestPostgres(t)

	trip, err := s.CreateTrip(ctx, Trip{Name: "pg test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.DeleteTrip(ctx, trip.ID) })

	end := "2025-08-20"
	updated, err := s.UpdateTrip(ctx, trip.ID, TripUpdate{EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, "pg test", updated.Name)
	assert.Equal(t, end, updated.EndDate)
	_, err = s.UpdateTrip(ctx, trip.ID, TripUpdate{})
	assert.ErrorIs(t, err, ErrNoFields)

	l, err := s.CreateLeg(ctx, NewLeg{TripID: trip.ID, OrderIndex: -1, Draft: sampleDraft("out")})
	require.NoError(t, err)
	assert.Equal(t, 0, l.OrderIndex)

	got, err := s.GetLeg(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "UA 1234", got.Draft.Carrier)
	assert.Equal(t, strconv.FormatInt(trip.ID, 10), got.Draft.TripID)

	_, err = s.UpdateLeg(ctx, l.ID, LegUpdate{})
	assert.ErrorIs(t, err, ErrNoFields)

	require.NoError(t, s.DeleteLeg(ctx, l.ID))
	_, err = s.GetLeg(ctx, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
