// Package client holds typed HTTP clients for the flight and passenger stores.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
)

type authKey struct{}

// WithAuthorization stores the caller's Authorization header so outbound
// calls carry it to the downstream service.
func WithAuthorization(ctx context.Context, header string) context.Context {
	if header == "" {
		return ctx
	}
	return context.WithValue(ctx, authKey{}, header)
}

func authorizationFrom(ctx context.Context) string {
	v, _ := ctx.Value(authKey{}).(string)
	return v
}

type messageBody struct {
	Message string `json:"message"`
}

type httpClient struct {
	baseURL string
	http    *http.Client
	name    string
}

func newHTTPClient(name, baseURL string, timeout time.Duration) httpClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		name:    name,
	}
}

// do sends the request and decodes a 2xx body into out when out is not nil.
// An empty 2xx body with a non-nil out is reported as not found.
func (c httpClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if auth := authorizationFrom(ctx); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s %s: %w", c.name, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(c.name, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return domain.NewNotFound("%s returned an empty body for %s", c.name, path)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}

func statusError(name string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var mb messageBody
	if json.Unmarshal(body, &mb) == nil && mb.Message != "" {
		msg = mb.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusNotFound:
		return domain.NotFoundError{Msg: msg}
	case http.StatusConflict:
		return domain.ConflictError{Msg: msg}
	case http.StatusBadRequest:
		return domain.ValidationError{Msg: msg}
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.UnauthorizedError{Msg: msg}
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", name, status, msg)
	}
}
