package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PassengerRepository interface {
	Create(ctx context.Context, passenger *domain.Passenger) error
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	GetByEmail(ctx context.Context, email string) (*domain.Passenger, error)
	Delete(ctx context.Context, id int64) error
}

type PGPassengerRepository struct {
	db DB
}

func NewPassengerRepository(db DB) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

const passengerSelect = `SELECT p.id, p.name, p.phone_number, p.email, a.id, a.house_no, a.city, a.state
	FROM passengers p JOIN addresses a ON a.id = p.address_id`

// Create stores the address and the passenger in one transaction.
func (r *PGPassengerRepository) Create(ctx context.Context, p *domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO addresses (house_no, city, state) VALUES ($1, $2, $3) RETURNING id`,
		p.Address.HouseNo, p.Address.City, p.Address.State).Scan(&p.Address.ID); err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO passengers (name, phone_number, email, address_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Name, p.PhoneNumber, p.Email, p.Address.ID).Scan(&p.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ConflictError{Msg: "Passenger with this email already exists", Err: err}
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	p, err := scanPassenger(r.db.QueryRow(ctx, passengerSelect+` WHERE p.id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFoundError{Msg: "Passenger not found", Err: err}
	}
	return p, err
}

func (r *PGPassengerRepository) GetByEmail(ctx context.Context, email string) (*domain.Passenger, error) {
	p, err := scanPassenger(r.db.QueryRow(ctx, passengerSelect+` WHERE p.email=$1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFoundError{Msg: "Passenger with this email not found", Err: err}
	}
	return p, err
}

// Delete removes the passenger and its address.
func (r *PGPassengerRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var addressID int64
	if err := tx.QueryRow(ctx, `DELETE FROM passengers WHERE id=$1 RETURNING address_id`, id).Scan(&addressID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFoundError{Msg: "Passenger not found", Err: err}
		}
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id=$1`, addressID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanPassenger(row pgx.Row) (*domain.Passenger, error) {
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.Name, &p.PhoneNumber, &p.Email, &p.Address.ID, &p.Address.HouseNo, &p.Address.City, &p.Address.State); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
