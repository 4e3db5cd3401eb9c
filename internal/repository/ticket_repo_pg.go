package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Ticket, error)
	ListByPassenger(ctx context.Context, passengerID int64) ([]domain.Ticket, error)
	SetBooked(ctx context.Context, id int64, booked bool) error
}

type PGTicketRepository struct {
	db DB
}

func NewTicketRepository(db DB) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, pnr, flight_id, passenger_id, number_of_seats, booked, created_at, updated_at`

func (r *PGTicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	err := r.db.QueryRow(ctx, `INSERT INTO tickets (pnr, flight_id, passenger_id, number_of_seats, booked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`, t.PNR, t.FlightID, t.PassengerID, t.NumberOfSeats, t.Booked).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ConflictError{Msg: "PNR already exists", Err: err}
	}
	return err
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFoundError{Msg: "Ticket not found", Err: err}
	}
	return t, err
}

func (r *PGTicketRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE pnr=$1`, pnr))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFoundError{Msg: "No ticket with this PNR", Err: err}
	}
	return t, err
}

func (r *PGTicketRepository) ListByPassenger(ctx context.Context, passengerID int64) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE passenger_id=$1 ORDER BY id`, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) SetBooked(ctx context.Context, id int64, booked bool) error {
	res, err := r.db.Exec(ctx, `UPDATE tickets SET booked=$2, updated_at=now() WHERE id=$1`, id, booked)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NewNotFound("Ticket not found")
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(&t.ID, &t.PNR, &t.FlightID, &t.PassengerID, &t.NumberOfSeats, &t.Booked, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

var _ TicketRepository = (*PGTicketRepository)(nil)
