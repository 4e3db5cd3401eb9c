package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type PassengerClient interface {
	GetPassengerDetails(ctx context.Context, id int64) (*domain.PassengerDetails, error)
	GetIDByEmail(ctx context.Context, email string) (int64, error)
}

type HTTPPassengerClient struct {
	c httpClient
}

func NewPassengerClient(baseURL string, timeout time.Duration) *HTTPPassengerClient {
	return &HTTPPassengerClient{c: newHTTPClient("passenger-service", baseURL, timeout)}
}

func (p *HTTPPassengerClient) GetPassengerDetails(ctx context.Context, id int64) (*domain.PassengerDetails, error) {
	var details domain.PassengerDetails
	if err := p.c.do(ctx, http.MethodGet, fmt.Sprintf("/passenger/getByPassengerId/%d", id), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (p *HTTPPassengerClient) GetIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	if err := p.c.do(ctx, http.MethodGet, "/passenger/getPassengerIdByEmail/"+url.PathEscape(email), &id); err != nil {
		return 0, err
	}
	return id, nil
}

var _ PassengerClient = (*HTTPPassengerClient)(nil)
