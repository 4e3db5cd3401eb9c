package flights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type FlightUseCase interface {
	Register(ctx context.Context, input RegisterInput) (int64, error)
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	SearchByOriginDestination(ctx context.Context, origin, destination string) ([]domain.Flight, error)
	SearchByOriginDestinationDate(ctx context.Context, origin, destination string, departure time.Time) ([]domain.Flight, error)
	ReserveSeats(ctx context.Context, id int64, seats int) error
	ReleaseSeats(ctx context.Context, id int64, seats int) error
	Delete(ctx context.Context, id int64) error
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type RegisterInput struct {
	Airline       string
	Origin        string
	Destination   string
	Price         float64
	DepartureTime time.Time
	ArrivalTime   time.Time
	TotalSeats    int
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   *logger.Logger
	now   func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithLogger(log *logger.Logger) FlightServiceOption {
	return func(s *FlightService) { s.log = log }
}

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) { s.now = now }
}

// NewFlightService accepts a nil cache; the list is then always read from the store.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{repo: repo, cache: cache, log: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FlightService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if err := s.validate(in); err != nil {
		return 0, err
	}

	f := &domain.Flight{
		Airline:        strings.TrimSpace(in.Airline),
		Origin:         strings.TrimSpace(in.Origin),
		Destination:    strings.TrimSpace(in.Destination),
		Price:          in.Price,
		DepartureTime:  in.DepartureTime,
		ArrivalTime:    in.ArrivalTime,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return 0, fmt.Errorf("register flight: %w", err)
	}
	s.invalidate(ctx)
	s.log.Infof("flights", "registered flight %d %s->%s", f.ID, f.Origin, f.Destination)
	return f.ID, nil
}

func (s *FlightService) validate(in RegisterInput) error {
	fields := map[string]string{}
	now := s.now()

	if strings.TrimSpace(in.Airline) == "" {
		fields["airline"] = "Airline is required"
	}
	if strings.TrimSpace(in.Origin) == "" {
		fields["origin"] = "Origin is required"
	}
	if strings.TrimSpace(in.Destination) == "" {
		fields["destination"] = "Destination is required"
	}
	if in.Price <= 0 {
		fields["price"] = "Price must be greater than 0"
	}
	if in.TotalSeats <= 0 {
		fields["totalSeats"] = "Total seats must be greater than 0"
	}
	switch {
	case in.DepartureTime.IsZero():
		fields["departureTime"] = "Departure time is required"
	case !in.DepartureTime.After(now):
		fields["departureTime"] = "Departure time must be in the future"
	}
	switch {
	case in.ArrivalTime.IsZero():
		fields["arrivalTime"] = "Arrival time is required"
	case !in.ArrivalTime.After(now):
		fields["arrivalTime"] = "Arrival time must be in the future"
	case !in.DepartureTime.IsZero() && !in.ArrivalTime.After(in.DepartureTime):
		fields["arrivalTime"] = "Arrival time must be after departure time"
	}

	if len(fields) > 0 {
		return domain.ValidationError{Msg: "Validation failed", Fields: fields}
	}
	return nil
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.Warnf("flights", "cache read failed: %v", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warnf("flights", "cache write failed: %v", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) SearchByOriginDestination(ctx context.Context, origin, destination string) ([]domain.Flight, error) {
	return s.repo.FindByOriginDestination(ctx, origin, destination)
}

// SearchByOriginDestinationDate returns flights departing on the calendar day of departure.
func (s *FlightService) SearchByOriginDestinationDate(ctx context.Context, origin, destination string, departure time.Time) ([]domain.Flight, error) {
	from, to := dayBounds(departure)
	return s.repo.FindByOriginDestinationBetween(ctx, origin, destination, from, to)
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d, 23, 59, 59, 0, t.Location())
	return start, end
}

func (s *FlightService) ReserveSeats(ctx context.Context, id int64, seats int) error {
	if seats <= 0 {
		return domain.NewValidation("Number of seats must be greater than 0")
	}
	if err := s.repo.ReserveSeats(ctx, id, seats); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) ReleaseSeats(ctx context.Context, id int64, seats int) error {
	if seats <= 0 {
		return domain.NewValidation("Number of seats must be greater than 0")
	}
	if err := s.repo.ReleaseSeats(ctx, id, seats); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warnf("flights", "cache invalidation failed: %v", err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
