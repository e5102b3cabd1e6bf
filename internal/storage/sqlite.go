package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps trips and legs in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: SQLite serialises writers, and an in-memory database
	// exists per connection.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// createSQLiteSchema creates the database tables and indices.
func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS trips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS legs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trip_id INTEGER NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		order_index INTEGER NOT NULL DEFAULT 0,
		data TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_legs_trip ON legs(trip_id, order_index);
	`
	_, err := db.Exec(schema)
	return err
}

const sqliteTime = time.RFC3339Nano

// CreateTrip inserts a trip and returns it with its id.
func (s *SQLiteStore) CreateTrip(ctx context.Context, t Trip) (Trip, error) {
	t.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (name, description, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.Name, t.Description, t.StartDate, t.EndDate, t.CreatedAt.Format(sqliteTime))
	if err != nil {
		return Trip{}, fmt.Errorf("insert trip: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return Trip{}, fmt.Errorf("trip id: %w", err)
	}
	return t, nil
}

// GetTrip returns the trip with the given id.
func (s *SQLiteStore) GetTrip(ctx context.Context, id int64) (Trip, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, start_date, end_date, created_at FROM trips WHERE id = ?
	`, id)
	t, err := scanSQLiteTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Trip{}, fmt.Errorf("trip %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Trip{}, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

// ListTrips returns every trip, oldest first.
func (s *SQLiteStore) ListTrips(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, start_date, end_date, created_at FROM trips ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer func() { _ = rows.Close() }()

	trips := []Trip{}
	for rows.Next() {
		t, err := scanSQLiteTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// UpdateTrip changes the given fields of a trip.
func (s *SQLiteStore) UpdateTrip(ctx context.Context, id int64, u TripUpdate) (Trip, error) {
	current, err := s.GetTrip(ctx, id)
	if err != nil {
		return Trip{}, err
	}
	if u.Empty() {
		return Trip{}, ErrNoFields
	}

	t := u.apply(current)
	if _, err := s.db.ExecContext(ctx, `
		UPDATE trips SET name = ?, description = ?, start_date = ?, end_date = ? WHERE id = ?
	`, t.Name, t.Description, t.StartDate, t.EndDate, id); err != nil {
		return Trip{}, fmt.Errorf("update trip: %w", err)
	}
	return t, nil
}

// DeleteTrip removes a trip and its legs.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return checkAffected(res, "trip", id)
}

// CreateLeg inserts a leg into an existing trip.
func (s *SQLiteStore) CreateLeg(ctx context.Context, p NewLeg) (Leg, error) {
	if _, err := s.GetTrip(ctx, p.TripID); err != nil {
		return Leg{}, err
	}

	order := p.OrderIndex
	if order < 0 {
		if err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(order_index) + 1, 0) FROM legs WHERE trip_id = ?`, p.TripID,
		).Scan(&order); err != nil {
			return Leg{}, fmt.Errorf("next order index: %w", err)
		}
	}

	draft := stampTrip(p.Draft, p.TripID)
	data, err := json.Marshal(draft)
	if err != nil {
		return Leg{}, fmt.Errorf("marshal leg: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO legs (trip_id, order_index, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.TripID, order, string(data), now.Format(sqliteTime), now.Format(sqliteTime))
	if err != nil {
		return Leg{}, fmt.Errorf("insert leg: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Leg{}, fmt.Errorf("leg id: %w", err)
	}

	return Leg{ID: id, TripID: p.TripID, OrderIndex: order, Draft: draft, CreatedAt: now, UpdatedAt: now}, nil
}

const sqliteLegColumns = `id, trip_id, order_index, data, created_at, updated_at`

// GetLeg returns the leg with the given id.
func (s *SQLiteStore) GetLeg(ctx context.Context, id int64) (Leg, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteLegColumns+` FROM legs WHERE id = ?`, id)
	l, err := scanSQLiteLeg(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Leg{}, fmt.Errorf("leg %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Leg{}, fmt.Errorf("get leg: %w", err)
	}
	return l, nil
}

// ListLegs returns every leg grouped by trip.
func (s *SQLiteStore) ListLegs(ctx context.Context) ([]Leg, error) {
	return s.queryLegs(ctx, `SELECT `+sqliteLegColumns+` FROM legs ORDER BY trip_id, order_index, id`)
}

// ListLegsByTrip returns a trip's legs in order.
func (s *SQLiteStore) ListLegsByTrip(ctx context.Context, tripID int64) ([]Leg, error) {
	return s.queryLegs(ctx, `SELECT `+sqliteLegColumns+` FROM legs WHERE trip_id = ? ORDER BY order_index, id`, tripID)
}

func (s *SQLiteStore) queryLegs(ctx context.Context, query string, args ...any) ([]Leg, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query legs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	legs := []Leg{}
	for rows.Next() {
		l, err := scanSQLiteLeg(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leg: %w", err)
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}

// UpdateLeg replaces the draft and/or order index of a leg.
func (s *SQLiteStore) UpdateLeg(ctx context.Context, id int64, u LegUpdate) (Leg, error) {
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

	current.UpdatedAt = time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, `
		UPDATE legs SET data = ?, order_index = ?, updated_at = ? WHERE id = ?
	`, string(data), current.OrderIndex, current.UpdatedAt.Format(sqliteTime), id); err != nil {
		return Leg{}, fmt.Errorf("update leg: %w", err)
	}
	return current, nil
}

// DeleteLeg removes a leg.
func (s *SQLiteStore) DeleteLeg(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM legs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete leg: %w", err)
	}
	return checkAffected(res, "leg", id)
}

func checkAffected(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTrip(row scanner) (Trip, error) {
	var t Trip
	var created string
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &created); err != nil {
		return Trip{}, err
	}
	t.CreatedAt, _ = time.Parse(sqliteTime, created)
	return t, nil
}

func scanSQLiteLeg(row scanner) (Leg, error) {
	var l Leg
	var data, created, updated string
	if err := row.Scan(&l.ID, &l.TripID, &l.OrderIndex, &data, &created, &updated); err != nil {
		return Leg{}, err
	}
	if err := json.Unmarshal([]byte(data), &l.Draft); err != nil {
		return Leg{}, fmt.Errorf("decode leg %d: %w", l.ID, err)
	}
	l.CreatedAt, _ = time.Parse(sqliteTime, created)
	l.UpdatedAt, _ = time.Parse(sqliteTime, updated)
	return l, nil
}

var _ Store = (*SQLiteStore)(nil)
