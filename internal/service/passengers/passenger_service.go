package passengers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type PassengerUseCase interface {
	Register(ctx context.Context, input RegisterInput) (int64, error)
	GetDetails(ctx context.Context, id int64) (*domain.PassengerDetails, error)
	GetIDByEmail(ctx context.Context, email string) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type RegisterInput struct {
	Name        string
	PhoneNumber string
	Email       string
	HouseNo     string
	City        string
	State       string
}

type PassengerService struct {
	repo repository.PassengerRepository
	log  *logger.Logger
}

type PassengerServiceOption func(*PassengerService)

func WithLogger(log *logger.Logger) PassengerServiceOption {
	return func(s *PassengerService) { s.log = log }
}

func NewPassengerService(repo repository.PassengerRepository, opts ...PassengerServiceOption) *PassengerService {
	s := &PassengerService{repo: repo, log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PassengerService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	in.Email = strings.TrimSpace(in.Email)
	fields := map[string]string{}
	required := map[string]string{
		"name":        in.Name,
		"phoneNumber": in.PhoneNumber,
		"email":       in.Email,
		"houseNo":     in.HouseNo,
		"city":        in.City,
		"state":       in.State,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[field] = field + " is required"
		}
	}
	if len(fields) > 0 {
		return 0, domain.ValidationError{Msg: "Validation failed", Fields: fields}
	}

	p := &domain.Passenger{
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		Email:       in.Email,
		Address:     domain.Address{HouseNo: in.HouseNo, City: in.City, State: in.State},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return 0, fmt.Errorf("register passenger: %w", err)
	}
	s.log.Infof("passengers", "registered passenger %d", p.ID)
	return p.ID, nil
}

func (s *PassengerService) GetDetails(ctx context.Context, id int64) (*domain.PassengerDetails, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.PassengerDetails{
		Name:     p.Name,
		Email:    p.Email,
		PhoneNum: p.PhoneNumber,
		City:     p.Address.City,
		State:    p.Address.State,
	}, nil
}

func (s *PassengerService) GetIDByEmail(ctx context.Context, email string) (int64, error) {
	p, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (s *PassengerService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

var _ PassengerUseCase = (*PassengerService)(nil)
