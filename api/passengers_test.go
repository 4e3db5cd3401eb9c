package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/passengers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPassengerUseCase struct {
	mock.Mock
}

func (m *MockPassengerUseCase) Register(ctx context.Context, in passengers.RegisterInput) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPassengerUseCase) GetDetails(ctx context.Context, id int64) (*domain.PassengerDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PassengerDetails), args.Error(1)
}

func (m *MockPassengerUseCase) GetIDByEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPassengerUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func newPassengerRouter(svc passengers.PassengerUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewPassengerHandler(svc).Register(r.Group("/passenger"))
	return r
}

func TestPassengerHandler_register(t *testing.T) {
	mockService := &MockPassengerUseCase{}
	mockService.On("Register", mock.Anything, passengers.RegisterInput{
		Name: "Asha", PhoneNumber: "9999999999", Email: "asha@example.com",
		HouseNo: "12B", City: "Delhi", State: "DL",
	}).Return(int64(11), nil)

	body := `{"name":"Asha","phoneNumber":"9999999999","email":"asha@example.com","houseNo":"12B","city":"Delhi","state":"DL"}`
	w := httptest.NewRecorder()
	newPassengerRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/passenger/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "11", w.Body.String())
	mockService.AssertExpectations(t)
}

func TestPassengerHandler_registerInvalidEmail(t *testing.T) {
	mockService := &MockPassengerUseCase{}

	body := `{"name":"Asha","phoneNumber":"9999999999","email":"not-an-email","houseNo":"12B","city":"Delhi","state":"DL"}`
	w := httptest.NewRecorder()
	newPassengerRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/passenger/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"Validation failed","errors":{"email":"must be a well-formed email address"}}`, w.Body.String())
	mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestPassengerHandler_registerMissingFields(t *testing.T) {
	w := httptest.NewRecorder()
	newPassengerRouter(&MockPassengerUseCase{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/passenger/register",
		strings.NewReader(`{"name":"Asha","email":"asha@example.com"}`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	for _, field := range []string{"phoneNumber", "houseNo", "city", "state"} {
		assert.Contains(t, w.Body.String(), `"`+field+`":"must not be blank"`)
	}
}

func TestPassengerHandler_registerDuplicateEmail(t *testing.T) {
	mockService := &MockPassengerUseCase{}
	mockService.On("Register", mock.Anything, mock.Anything).
		Return(int64(0), domain.ConflictError{Msg: "Passenger with this email already exists"})

	body := `{"name":"Asha","phoneNumber":"1","email":"asha@example.com","houseNo":"1","city":"Delhi","state":"DL"}`
	w := httptest.NewRecorder()
	newPassengerRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/passenger/register", strings.NewReader(body)))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPassengerHandler_details(t *testing.T) {
	mockService := &MockPassengerUseCase{}
	handler := NewPassengerHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	c.Request = httptest.NewRequest("GET", "/passenger/getByPassengerId/3", nil)

	mockService.On("GetDetails", c.Request.Context(), int64(3)).Return(&domain.PassengerDetails{
		Name: "Asha", Email: "asha@example.com", PhoneNum: "9999999999", City: "Delhi", State: "DL",
	}, nil)

	handler.details(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Asha","email":"asha@example.com","phoneNum":"9999999999","city":"Delhi","state":"DL"}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestPassengerHandler_idByEmail(t *testing.T) {
	mockService := &MockPassengerUseCase{}
	mockService.On("GetIDByEmail", mock.Anything, "asha@example.com").Return(int64(3), nil)
	mockService.On("GetIDByEmail", mock.Anything, "ghost@example.com").
		Return(int64(0), domain.NewNotFound("Passenger with this email not found"))

	r := newPassengerRouter(mockService)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/passenger/getPassengerIdByEmail/asha@example.com", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/passenger/getPassengerIdByEmail/ghost@example.com", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Passenger with this email not found"}`, w.Body.String())
}

func TestPassengerHandler_delete(t *testing.T) {
	mockService := &MockPassengerUseCase{}
	mockService.On("Delete", mock.Anything, int64(3)).Return(nil)

	w := httptest.NewRecorder()
	newPassengerRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/passenger/delete/3", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "deleted", w.Body.String())
}
