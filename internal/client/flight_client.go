package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type FlightClient interface {
	ReserveSeats(ctx context.Context, flightID int64, seats int) error
	ReleaseSeats(ctx context.Context, flightID int64, seats int) error
	GetFlightByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type HTTPFlightClient struct {
	c httpClient
}

func NewFlightClient(baseURL string, timeout time.Duration) *HTTPFlightClient {
	return &HTTPFlightClient{c: newHTTPClient("flight-service", baseURL, timeout)}
}

func (f *HTTPFlightClient) ReserveSeats(ctx context.Context, flightID int64, seats int) error {
	return f.c.do(ctx, http.MethodPut, fmt.Sprintf("/flight/flights/%d/reserve?seats=%d", flightID, seats), nil)
}

func (f *HTTPFlightClient) ReleaseSeats(ctx context.Context, flightID int64, seats int) error {
	return f.c.do(ctx, http.MethodPut, fmt.Sprintf("/flight/flights/%d/release?seats=%d", flightID, seats), nil)
}

func (f *HTTPFlightClient) GetFlightByID(ctx context.Context, id int64) (*domain.Flight, error) {
	var flight domain.Flight
	if err := f.c.do(ctx, http.MethodGet, fmt.Sprintf("/flight/getFlightById/%d", id), &flight); err != nil {
		return nil, err
	}
	return &flight, nil
}

var _ FlightClient = (*HTTPFlightClient)(nil)
