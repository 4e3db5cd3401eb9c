package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	FindByOriginDestination(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	FindByOriginDestinationBetween(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID int64, seats int) error
	ReleaseSeats(ctx context.Context, flightID int64, seats int) error
	Delete(ctx context.Context, id int64) error
}

type PGFlightRepository struct {
	db DB
}

func NewFlightRepository(db DB) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, airline, origin, destination, price, departure_time, arrival_time, total_seats, available_seats, created_at, updated_at`

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (airline, origin, destination, price, departure_time, arrival_time, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		f.Airline, f.Origin, f.Destination, f.Price, f.DepartureTime, f.ArrivalTime, f.TotalSeats, f.AvailableSeats).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundError{Msg: "flight by this id not found", Err: err}
		}
		return nil, err
	}
	return f, nil
}

func (r *PGFlightRepository) FindByOriginDestination(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+flightColumns+` FROM flights WHERE origin=$1 AND destination=$2 ORDER BY departure_time`, origin, destination)
}

func (r *PGFlightRepository) FindByOriginDestinationBetween(ctx context.Context, origin, destination string, from, to time.Time) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE origin=$1 AND destination=$2 AND departure_time BETWEEN $3 AND $4
		ORDER BY departure_time`, origin, destination, from, to)
}

// ReserveSeats decrements available seats only while enough remain.
func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID int64, seats int) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2`, flightID, seats)
	if err != nil {
		return err
	}
	if res.RowsAffected() > 0 {
		return nil
	}

	exists, err := r.exists(ctx, flightID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.NewNotFound("Flight not found")
	}
	return domain.NewConflict("Not enough seats available")
}

// ReleaseSeats adds seats back without checking total_seats.
func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, seats int) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at = now() WHERE id=$1`, flightID, seats)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFound("Flight not found")
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFound("flight by this id not found")
	}
	return nil
}

func (r *PGFlightRepository) exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM flights WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Airline, &f.Origin, &f.Destination, &f.Price, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
