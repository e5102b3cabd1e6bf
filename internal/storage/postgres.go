package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresStore keeps trips and legs in PostgreSQL. Drafts are stored as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	// Test the connection.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the PostgreSQL connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateSchema creates the PostgreSQL tables.
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS trips (
		id              BIGSERIAL PRIMARY KEY,
		name            TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		start_date      TEXT NOT NULL DEFAULT '',
		end_date        TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS legs (
		id              BIGSERIAL PRIMARY KEY,
		trip_id         BIGINT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		order_index     INTEGER NOT NULL DEFAULT 0,
		data            JSONB NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_legs_trip ON legs(trip_id, order_index);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CreateTrip inserts a trip and returns it with its id.
func (s *PostgresStore) CreateTrip(ctx context.Context, t Trip) (Trip, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO trips (name, description, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, t.Name, t.Description, t.StartDate, t.EndDate).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return Trip{}, fmt.Errorf("insert trip: %w", err)
	}
	return t, nil
}

// GetTrip returns the trip with the given id.
func (s *PostgresStore) GetTrip(ctx context.Context, id int64) (Trip, error) {
	var t Trip
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, description, start_date, end_date, created_at FROM trips WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trip{}, fmt.Errorf("trip %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Trip{}, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

// ListTrips returns every trip, oldest first.
func (s *PostgresStore) ListTrips(ctx context.Context) ([]Trip, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, start_date, end_date, created_at FROM trips ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	trips := []Trip{}
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// UpdateTrip changes the given fields of a trip.
func (s *PostgresStore) UpdateTrip(ctx context.Context, id int64, u TripUpdate) (Trip, error) {
	current, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if u.Empty() {
		return Trip{}, ErrNoFields
	}

	t := u.apply(current)
	tag, err := s.pool.Exec(ctx, `
		UPDATE trips SET name = $1, description = $2, start_date = $3, end_date = $4 WHERE id = $5
	`, t.Name, t.Description, t.StartDate, t.EndDate, id)
	if err != nil {
		return Trip{}, fmt.Errorf("update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Trip{}, fmt.Errorf("trip %d: %w", id, ErrNotFound)
	}
	return t, nil
}

// DeleteTrip removes a trip and its legs.
func (s *PostgresStore) DeleteTrip(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateLeg inserts a leg into an existing trip.
func (s *PostgresStore) CreateLeg(ctx context.Context, p NewLeg) (Leg, error) {
	if _, err := s.GetTrip(ctx, p.TripID); err != nil {
		return Leg{}, err
	}

	draft := stampTrip(p.Draft, p.TripID)
	data, err := json.Marshal(draft)
	if err != nil {
		return Leg{}, fmt.Errorf("marshal leg: %w", err)
	}

	l := Leg{TripID: p.TripID, Draft: draft}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO legs (trip_id, order_index, data)
		VALUES ($1,
			CASE WHEN $2::int < 0
				THEN (SELECT COALESCE(MAX(order_index) + 1, 0) FROM legs WHERE trip_id = $1)
				ELSE $2::int END,
			$3)
		RETURNING id, order_index, created_at, updated_at
	`, p.TripID, p.OrderIndex, data).Scan(&l.ID, &l.OrderIndex, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return Leg{}, fmt.Errorf("insert leg: %w", err)
	}
	return l, nil
}

const pgLegColumns = `id, trip_id, order_index, data, created_at, updated_at`

// GetLeg returns the leg with the given id.
func (s *PostgresStore) GetLeg(ctx context.Context, id int64) (Leg, error) {
	l, err := scanPostgresLeg(s.pool.QueryRow(ctx, `SELECT `+pgLegColumns+` FROM legs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Leg{}, fmt.Errorf("leg %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Leg{}, fmt.Errorf("get leg: %w", err)
	}
	return l, nil
}

// ListLegs returns every leg grouped by trip.
func (s *PostgresStore) ListLegs(ctx context.Context) ([]Leg, error) {
	return s.queryLegs(ctx, `SELECT `+pgLegColumns+` FROM legs ORDER BY trip_id, order_index, id`)
}

// ListLegsByTrip returns a trip's legs in order.
func (s *PostgresStore) ListLegsByTrip(ctx context.Context, tripID int64) ([]Leg, error) {
	return s.queryLegs(ctx, `SELECT `+pgLegColumns+` FROM legs WHERE trip_id = $1 ORDER BY order_index, id`, tripID)
}

func (s *PostgresStore) queryLegs(ctx context.Context, query string, args ...any) ([]Leg, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query legs: %w", err)
	}
	defer rows.Close()

	legs := []Leg{}
	for rows.Next() {
		l, err := scanPostgresLeg(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leg: %w", err)
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

// UpdateLeg replaces the draft and/or order index of a leg.
func (s *PostgresStore) UpdateLeg(ctx context.Context, id int64, u LegUpdate) (Leg, error) {
	current, err := s.GetLeg(ctx, id)
	if err != nil {
		return Leg{}, err
	}
	if u.Empty() {
		return Leg{}, ErrNoFields
	}

	if u.Draft != nil {
		current.Draft = stampTrip(*u.Draft, current.TripID)
	}
	if u.OrderIndex != nil {
		current.OrderIndex = *u.OrderIndex
	}
	data, err := json.Marshal(current.Draft)
	if err != nil {
		return Leg{}, fmt.Errorf("marshal leg: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		UPDATE legs SET data = $1, order_index = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`, data, current.OrderIndex, id).Scan(&current.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Leg{}, fmt.Errorf("leg %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Leg{}, fmt.Errorf("update leg: %w", err)
	}
	return current, nil
}

// DeleteLeg removes a leg.
func (s *PostgresStore) DeleteLeg(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM legs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete leg: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("leg %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanPostgresLeg(row pgx.Row) (Leg, error) {
	var l Leg
	var data []byte
	if err := row.Scan(&l.ID, &l.TripID, &l.OrderIndex, &data, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Leg{}, err
	}
	if err := json.Unmarshal(data, &l.Draft); err != nil {
		return Leg{}, fmt.Errorf("decode leg %d: %w", l.ID, err)
	}
	return l, nil
}

var _ Store = (*PostgresStore)(nil)
