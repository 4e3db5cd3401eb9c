package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/breaker"
	"github.com/Domenick1991/flightbooking/internal/client"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
)

const (
	FlightBreaker    = "flightService"
	PassengerBreaker = "passengerService"

	cancellationCutoff = 24 * time.Hour

	MsgAlreadyCancelled = "Ticket already cancelled"
	MsgCancelled        = "Ticket cancelled successfully"
)

var (
	ErrFlightDetails = errors.New("Unable to fetch flight details")
	ErrTooLate       = domain.ValidationError{Msg: "Ticket cannot be cancelled within 24 hours of departure"}
)

type TicketUseCase interface {
	Book(ctx context.Context, input BookInput) (string, error)
	Cancel(ctx context.Context, id int64) (string, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.TicketView, error)
	GetTicketsByEmail(ctx context.Context, email string) ([]domain.TicketView, error)
	Itinerary(ctx context.Context, pnr string) ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event domain.TicketBookedEvent) error
}

type Renderer interface {
	Render(view domain.TicketView) ([]byte, error)
}

type BookInput struct {
	FlightID      int64
	PassengerID   int64
	NumberOfSeats int
}

type TicketService struct {
	tickets    repository.TicketRepository
	flights    client.FlightClient
	passengers client.PassengerClient
	publisher  Publisher
	renderer   Renderer
	log        *logger.Logger
	now        func() time.Time
	newPNR     func() string

	byPNR   *breaker.Breaker[*domain.TicketView]
	byEmail *breaker.Breaker[[]domain.TicketView]
}

type TicketServiceOption func(*TicketService)

func WithLogger(log *logger.Logger) TicketServiceOption {
	return func(s *TicketService) { s.log = log }
}

func WithClock(now func() time.Time) TicketServiceOption {
	return func(s *TicketService) { s.now = now }
}

func WithPNRGenerator(gen func() string) TicketServiceOption {
	return func(s *TicketService) { s.newPNR = gen }
}

func WithRenderer(r Renderer) TicketServiceOption {
	return func(s *TicketService) { s.renderer = r }
}

// WithBreakers overrides the read-path breakers.
func WithBreakers(byPNR *breaker.Breaker[*domain.TicketView], byEmail *breaker.Breaker[[]domain.TicketView]) TicketServiceOption {
	return func(s *TicketService) {
		s.byPNR = byPNR
		s.byEmail = byEmail
	}
}

func NewTicketService(
	tickets repository.TicketRepository,
	flights client.FlightClient,
	passengers client.PassengerClient,
	publisher Publisher,
	opts ...TicketServiceOption,
) *TicketService {
	s := &TicketService{
		tickets:    tickets,
		flights:    flights,
		passengers: passengers,
		publisher:  publisher,
		log:        logger.Nop(),
		now:        time.Now,
		newPNR:     NewPNR,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.byPNR == nil {
		s.byPNR = NewPNRBreaker(5, 30*time.Second, s.log)
	}
	if s.byEmail == nil {
		s.byEmail = NewEmailBreaker(5, 30*time.Second, s.log)
	}
	return s
}

// NewPNRBreaker falls back to a nil view.
func NewPNRBreaker(threshold int, openFor time.Duration, log *logger.Logger) *breaker.Breaker[*domain.TicketView] {
	return breaker.New(FlightBreaker, threshold, openFor,
		func(error) *domain.TicketView { return nil },
		breaker.WithLogger[*domain.TicketView](log))
}

// NewEmailBreaker falls back to an empty list; an unknown email is not a failure.
func NewEmailBreaker(threshold int, openFor time.Duration, log *logger.Logger) *breaker.Breaker[[]domain.TicketView] {
	return breaker.New(PassengerBreaker, threshold, openFor,
		func(error) []domain.TicketView { return []domain.TicketView{} },
		breaker.WithLogger[[]domain.TicketView](log),
		breaker.WithPassThrough[[]domain.TicketView](domain.IsNotFound))
}

// NewPNR returns the first PNRLength characters of a random UUID.
func NewPNR() string {
	return uuid.NewString()[:domain.PNRLength]
}

// Book reserves seats, stores the ticket and announces it. Steps after the
// reservation are not compensated when they fail.
func (s *TicketService) Book(ctx context.Context, in BookInput) (string, error) {
	if in.NumberOfSeats <= 0 {
		return "", domain.ValidationError{
			Msg:    "Validation failed",
			Fields: map[string]string{"numberOfSeats": "Number of seats must be greater than 0"},
		}
	}

	if err := s.flights.ReserveSeats(ctx, in.FlightID, in.NumberOfSeats); err != nil {
		s.log.Warnf("tickets", "reserve %d seats on flight %d failed: %v", in.NumberOfSeats, in.FlightID, err)
		if domain.IsNotFound(err) || domain.IsConflict(err) || domain.IsValidation(err) {
			return "", err
		}
		return "", fmt.Errorf("reserve seats: %w", err)
	}

	ticket := &domain.Ticket{
		PNR:           s.newPNR(),
		FlightID:      in.FlightID,
		PassengerID:   in.PassengerID,
		NumberOfSeats: in.NumberOfSeats,
		Booked:        true,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.log.Errorf("tickets", "seats reserved on flight %d but ticket was not stored: %v", in.FlightID, err)
		return "", fmt.Errorf("save ticket: %w", err)
	}

	passenger, err := s.passengers.GetPassengerDetails(ctx, in.PassengerID)
	if err != nil {
		s.log.Errorf("tickets", "ticket %s stored but passenger %d lookup failed: %v", ticket.PNR, in.PassengerID, err)
		return "", fmt.Errorf("fetch passenger details: %w", err)
	}

	event := domain.TicketBookedEvent{
		Email:    passenger.Email,
		PNR:      ticket.PNR,
		FlightID: ticket.FlightID,
		Seats:    ticket.NumberOfSeats,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Errorf("tickets", "booking notification for %s not published: %v", ticket.PNR, err)
	}

	s.log.Infof("tickets", "booked %s: flight %d, %d seats", ticket.PNR, ticket.FlightID, ticket.NumberOfSeats)
	return ticket.PNR, nil
}

// Cancel releases the seats of a booked ticket unless departure is less than
// 24 hours away. Cancelling an unbooked ticket is a no-op.
func (s *TicketService) Cancel(ctx context.Context, id int64) (string, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !ticket.Booked {
		return MsgAlreadyCancelled, nil
	}

	flight, err := s.flights.GetFlightByID(ctx, ticket.FlightID)
	if err != nil {
		s.log.Errorf("tickets", "cancel %s: flight %d lookup failed: %v", ticket.PNR, ticket.FlightID, err)
		return "", ErrFlightDetails
	}
	if s.now().Add(cancellationCutoff).After(flight.DepartureTime) {
		return "", ErrTooLate
	}

	if err := s.flights.ReleaseSeats(ctx, ticket.FlightID, ticket.NumberOfSeats); err != nil {
		return "", fmt.Errorf("release seats: %w", err)
	}
	if err := s.tickets.SetBooked(ctx, ticket.ID, false); err != nil {
		return "", fmt.Errorf("mark ticket cancelled: %w", err)
	}

	s.log.Infof("tickets", "cancelled %s, released %d seats on flight %d", ticket.PNR, ticket.NumberOfSeats, ticket.FlightID)
	return MsgCancelled, nil
}

// GetByPNR returns a nil view with a domain.UnavailableError when a
// downstream call fails or the breaker is open.
func (s *TicketService) GetByPNR(ctx context.Context, pnr string) (*domain.TicketView, error) {
	ticket, err := s.tickets.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}

	return s.byPNR.Do(ctx, func(ctx context.Context) (*domain.TicketView, error) {
		passenger, err := s.passengers.GetPassengerDetails(ctx, ticket.PassengerID)
		if err != nil {
			return nil, err
		}
		view, err := s.view(ctx, *ticket, passenger)
		if err != nil {
			return nil, err
		}
		return &view, nil
	})
}

func (s *TicketService) GetTicketsByEmail(ctx context.Context, email string) ([]domain.TicketView, error) {
	return s.byEmail.Do(ctx, func(ctx context.Context) ([]domain.TicketView, error) {
		passengerID, err := s.passengers.GetIDByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		passenger, err := s.passengers.GetPassengerDetails(ctx, passengerID)
		if err != nil {
			return nil, failure{err}
		}
		tickets, err := s.tickets.ListByPassenger(ctx, passengerID)
		if err != nil {
			return nil, failure{err}
		}

		views := make([]domain.TicketView, 0, len(tickets))
		for _, t := range tickets {
			v, err := s.view(ctx, t, passenger)
			if err != nil {
				return nil, failure{err}
			}
			views = append(views, v)
		}
		return views, nil
	})
}

// failure keeps a not-found past the email lookup from passing through the
// breaker; only an unknown email is reported as not found.
type failure struct{ err error }

func (f failure) Error() string { return f.err.Error() }

// Itinerary renders the PNR view as a PDF e-ticket.
func (s *TicketService) Itinerary(ctx context.Context, pnr string) ([]byte, error) {
	if s.renderer == nil {
		return nil, errors.New("itinerary rendering is not configured")
	}
	view, err := s.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(*view)
}

func (s *TicketService) view(ctx context.Context, t domain.Ticket, p *domain.PassengerDetails) (domain.TicketView, error) {
	flight, err := s.flights.GetFlightByID(ctx, t.FlightID)
	if err != nil {
		return domain.TicketView{}, err
	}
	return domain.TicketView{
		ID:            t.ID,
		Name:          p.Name,
		Email:         p.Email,
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		PNR:           t.PNR,
		DepartureTime: flight.DepartureTime,
		ArrivalTime:   flight.ArrivalTime,
		NumberOfSeats: t.NumberOfSeats,
		Booked:        t.Booked,
	}, nil
}

var _ TicketUseCase = (*TicketService)(nil)
