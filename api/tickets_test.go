package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/breaker"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/tickets"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTicketUseCase struct {
	mock.Mock
}

func (m *MockTicketUseCase) Book(ctx context.Context, in tickets.BookInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockTicketUseCase) Cancel(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockTicketUseCase) GetByPNR(ctx context.Context, pnr string) (*domain.TicketView, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TicketView), args.Error(1)
}

func (m *MockTicketUseCase) GetTicketsByEmail(ctx context.Context, email string) ([]domain.TicketView, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.TicketView), args.Error(1)
}

func (m *MockTicketUseCase) Itinerary(ctx context.Context, pnr string) ([]byte, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func newTicketRouter(svc tickets.TicketUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewTicketHandler(svc).Register(r.Group("/ticket"))
	return r
}

var errBreakerOpen = domain.UnavailableError{Dependency: tickets.FlightBreaker, Err: breaker.ErrOpen}

func TestTicketHandler_book(t *testing.T) {
	mockService := &MockTicketUseCase{}
	mockService.On("Book", mock.Anything, tickets.BookInput{FlightID: 1, PassengerID: 2, NumberOfSeats: 2}).
		Return("ab12cd34", nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ticket/book", strings.NewReader(`{"flightId":1,"passengerId":2,"numberOfSeats":2}`))
	newTicketRouter(mockService).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ab12cd34", w.Body.String())
	mockService.AssertExpectations(t)
}

func TestTicketHandler_bookErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "non-positive seats",
			err:    domain.ValidationError{Msg: "Validation failed", Fields: map[string]string{"numberOfSeats": "Number of seats must be greater than 0"}},
			status: http.StatusBadRequest,
			body:   `{"message":"Validation failed","errors":{"numberOfSeats":"Number of seats must be greater than 0"}}`,
		},
		{
			name:   "not enough seats",
			err:    domain.NewConflict("Not enough seats available"),
			status: http.StatusConflict,
			body:   `{"message":"Not enough seats available"}`,
		},
		{
			name:   "unknown flight",
			err:    domain.NewNotFound("Flight not found"),
			status: http.StatusNotFound,
			body:   `{"message":"Flight not found"}`,
		},
		{
			name:   "store failure",
			err:    errors.New("save ticket: boom"),
			status: http.StatusInternalServerError,
			body:   `{"message":"save ticket: boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockTicketUseCase{}
			mockService.On("Book", mock.Anything, mock.Anything).Return("", tt.err)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/ticket/book", strings.NewReader(`{"flightId":1,"passengerId":2,"numberOfSeats":0}`))
			newTicketRouter(mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestTicketHandler_bookMissingFlight(t *testing.T) {
	mockService := &MockTicketUseCase{}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ticket/book", strings.NewReader(`{"passengerId":2,"numberOfSeats":1}`))
	newTicketRouter(mockService).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"flightId"`)
	mockService.AssertNotCalled(t, "Book", mock.Anything, mock.Anything)
}

func TestTicketHandler_getByPNR(t *testing.T) {
	dep := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	mockService := &MockTicketUseCase{}
	mockService.On("GetByPNR", mock.Anything, "ab12cd34").Return(&domain.TicketView{
		ID: 1, Name: "Asha", Email: "asha@example.com", Origin: "DEL", Destination: "HYD",
		PNR: "ab12cd34", DepartureTime: dep, ArrivalTime: dep.Add(2 * time.Hour), NumberOfSeats: 2, Booked: true,
	}, nil)
	mockService.On("GetByPNR", mock.Anything, "missing0").Return(nil, domain.NewNotFound("No ticket with this PNR"))
	mockService.On("GetByPNR", mock.Anything, "down0000").Return(nil, errBreakerOpen)

	r := newTicketRouter(mockService)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/getByPnr/ab12cd34", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"origin":"DEL"`)
	assert.Contains(t, w.Body.String(), `"numberOfSeats":2`)
	assert.Contains(t, w.Body.String(), `"booked":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/getByPnr/missing0", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/getByPnr/down0000", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestTicketHandler_getByPNRDownstreamNotFoundIsUnavailable(t *testing.T) {
	mockService := &MockTicketUseCase{}
	mockService.On("GetByPNR", mock.Anything, "ab12cd34").Return(nil, domain.UnavailableError{
		Dependency: tickets.FlightBreaker,
		Err:        domain.NewNotFound("Passenger not found"),
	})

	w := httptest.NewRecorder()
	newTicketRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/getByPnr/ab12cd34", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestTicketHandler_getByEmail(t *testing.T) {
	mockService := &MockTicketUseCase{}
	mockService.On("GetTicketsByEmail", mock.Anything, "asha@example.com").
		Return([]domain.TicketView{{PNR: "ab12cd34"}}, nil)
	mockService.On("GetTicketsByEmail", mock.Anything, "ghost@example.com").
		Return([]domain.TicketView{}, domain.NewNotFound("Passenger with this email not found"))
	mockService.On("GetTicketsByEmail", mock.Anything, "down@example.com").
		Return([]domain.TicketView{}, domain.UnavailableError{Dependency: tickets.PassengerBreaker, Err: breaker.ErrOpen})

	r := newTicketRouter(mockService)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/getTicketsByEmail/asha@example.com", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pnr":"ab12cd34"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/getTicketsByEmail/ghost@example.com", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/getTicketsByEmail/down@example.com", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestTicketHandler_itinerary(t *testing.T) {
	mockService := &MockTicketUseCase{}
	mockService.On("Itinerary", mock.Anything, "ab12cd34").Return([]byte("%PDF-1.3"), nil)

	w := httptest.NewRecorder()
	newTicketRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/itinerary/ab12cd34", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ticket-ab12cd34.pdf")
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestTicketHandler_itinerary_EscapesFilename(t *testing.T) {
	mockService := &MockTicketUseCase{}
	mockService.On("Itinerary", mock.Anything, `ab"cd`).Return([]byte("%PDF-1.3"), nil)
	mockService.On("Itinerary", mock.Anything, "ab\r\nX-Evil: 1").Return([]byte("%PDF-1.3"), nil)
	r := newTicketRouter(mockService)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/itinerary/ab%22cd", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="ticket-ab\"cd.pdf"`, w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ticket/itinerary/ab%0D%0AX-Evil:%201", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Header().Get("Content-Disposition"), "\n")
	assert.Empty(t, w.Header().Get("X-Evil"))
}

func TestTicketHandler_cancel(t *testing.T) {
	mockService := &MockTicketUseCase{}
	mockService.On("Cancel", mock.Anything, int64(1)).Return(tickets.MsgCancelled, nil)
	mockService.On("Cancel", mock.Anything, int64(2)).Return(tickets.MsgAlreadyCancelled, nil)
	mockService.On("Cancel", mock.Anything, int64(3)).Return("", tickets.ErrTooLate)
	mockService.On("Cancel", mock.Anything, int64(4)).Return("", tickets.ErrFlightDetails)

	r := newTicketRouter(mockService)
	do := func(id string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/ticket/delete/"+id, nil))
		return w
	}

	w := do("1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ticket cancelled successfully", w.Body.String())

	w = do("2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ticket already cancelled", w.Body.String())

	w = do("3")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Ticket cannot be cancelled within 24 hours of departure"}`, w.Body.String())

	w = do("4")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Unable to fetch flight details"}`, w.Body.String())
}
