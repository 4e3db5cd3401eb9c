package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// DB is the part of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

var FlightSchema = []string{
	`CREATE TABLE IF NOT EXISTS flights (
		id BIGSERIAL PRIMARY KEY,
		airline TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		price NUMERIC(10,2) NOT NULL,
		departure_time TIMESTAMPTZ NOT NULL,
		arrival_time TIMESTAMPTZ NOT NULL,
		total_seats INT NOT NULL CHECK (total_seats > 0),
		available_seats INT NOT NULL CHECK (available_seats >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_flights_route ON flights (origin, destination, departure_time)`,
}

var PassengerSchema = []string{
	`CREATE TABLE IF NOT EXISTS addresses (
		id BIGSERIAL PRIMARY KEY,
		house_no TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS passengers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		address_id BIGINT NOT NULL REFERENCES addresses(id)
	)`,
}

var TicketSchema = []string{
	`CREATE TABLE IF NOT EXISTS tickets (
		id BIGSERIAL PRIMARY KEY,
		pnr VARCHAR(8) NOT NULL UNIQUE,
		flight_id BIGINT NOT NULL,
		passenger_id BIGINT NOT NULL,
		number_of_seats INT NOT NULL CHECK (number_of_seats > 0),
		booked BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_passenger ON tickets (passenger_id)`,
}

// EnsureSchema runs the given DDL statements in order.
func EnsureSchema(ctx context.Context, db DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
