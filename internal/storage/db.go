// Package storage persists trips and parsed flight legs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"itinerary_parser/internal/leg"
)

var (
	// ErrNotFound is returned when a trip or leg does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoFields is returned by UpdateLeg and UpdateTrip when the update is empty.
	ErrNoFields = errors.New("no fields to update")
)

// Trip groups legs.
type Trip struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Leg is a stored leg draft with its position in the trip.
type Leg struct {
	ID         int64     `json:"id"`
	TripID     int64     `json:"trip_id"`
	OrderIndex int       `json:"order_index"`
	Draft      leg.Draft `json:"data"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewLeg contains the parameters for inserting a leg. A negative OrderIndex
// appends the leg after the trip's last one.
type NewLeg struct {
	TripID     int64
	OrderIndex int
	Draft      leg.Draft
}

// LegUpdate holds the fields to change. Nil fields are left alone.
type LegUpdate struct {
	Draft      *leg.Draft `json:"data,omitempty"`
	OrderIndex *int       `json:"order_index,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u LegUpdate) Empty() bool {
	return u.Draft == nil && u.OrderIndex == nil
}

// TripUpdate holds the trip fields to change. Nil fields are left alone.
type TripUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u TripUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.StartDate == nil && u.EndDate == nil
}

// apply returns t with the update's fields set.
func (u TripUpdate) apply(t Trip) Trip {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.StartDate != nil {
		t.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		t.EndDate = *u.EndDate
	}
	return t
}

// Store is the persistence collaborator for parsed legs.
type Store interface {
	CreateTrip(ctx context.Context, t Trip) (Trip, error)
	GetTrip(ctx context.Context, id int64) (Trip, error)
	ListTrips(ctx context.Context) ([]Trip, error)
	UpdateTrip(ctx context.Context, id int64, u TripUpdate) (Trip, error)
	DeleteTrip(ctx context.Context, id int64) error

	CreateLeg(ctx context.Context, p NewLeg) (Leg, error)
	GetLeg(ctx context.Context, id int64) (Leg, error)
	ListLegs(ctx context.Context) ([]Leg, error)
	ListLegsByTrip(ctx context.Context, tripID int64) ([]Leg, error)
	UpdateLeg(ctx context.Context, id int64, u LegUpdate) (Leg, error)
	DeleteLeg(ctx context.Context, id int64) error

	Close() error
}

// Config selects and configures the leg store.
type Config struct {
	Driver     string // "sqlite" or "postgres".
	SQLitePath string
	Postgres   PostgresConfig
}

// DefaultConfig returns a configuration with default local development settings.
func DefaultConfig() Config {
	return Config{
		Driver:     "sqlite",
		SQLitePath: "legs.db",
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "itinerary",
			User:     "itinerary",
			Password: "itinerary",
		},
	}
}

// Open opens the store selected by cfg.Driver and creates its schema.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return s, nil
	case "postgres":
		s, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := s.CreateSchema(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// stampTrip makes the stored draft's trip id agree with the row it belongs to.
func stampTrip(d leg.Draft, tripID int64) leg.Draft {
	d.TripID = strconv.FormatInt(tripID, 10)
	return d
}
