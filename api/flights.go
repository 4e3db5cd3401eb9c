package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type registerFlightRequest struct {
	Airline       string   `json:"airline"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	Price         float64  `json:"price"`
	DepartureTime dateTime `json:"departureTime"`
	ArrivalTime   dateTime `json:"arrivalTime"`
	TotalSeats    int      `json:"totalSeats"`
}

type searchRequest struct {
	Origin            string   `json:"origin" binding:"required"`
	Destination       string   `json:"destination" binding:"required"`
	DepartureDateTime dateTime `json:"departureDateTime"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.GET("/getFlightById/:id", h.get)
	router.GET("/getAllFlights", h.list)
	router.POST("/getByOriginDestination", h.searchByRoute)
	router.POST("/getByOriginDestinationDateTime", h.searchByRouteAndDate)
	router.DELETE("/delete/:id", h.delete)
	router.PUT("/flights/:id/reserve", h.reserve)
	router.PUT("/flights/:id/release", h.release)
}

func (h *FlightHandler) register(c *gin.Context) {
	var req registerFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	id, err := h.service.Register(c.Request.Context(), flights.RegisterInput{
		Airline:       req.Airline,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Price:         req.Price,
		DepartureTime: req.DepartureTime.Time,
		ArrivalTime:   req.ArrivalTime.Time,
		TotalSeats:    req.TotalSeats,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, id)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) searchByRoute(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	list, err := h.service.SearchByOriginDestination(c.Request.Context(), req.Origin, req.Destination)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) searchByRouteAndDate(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.DepartureDateTime.IsZero() {
		respondError(c, domain.ValidationError{
			Msg:    msgValidationFailed,
			Fields: map[string]string{"departureDateTime": "must not be null"},
		})
		return
	}
	list, err := h.service.SearchByOriginDestinationDate(c.Request.Context(), req.Origin, req.Destination, req.DepartureDateTime.Time)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, "deleted")
}

func (h *FlightHandler) reserve(c *gin.Context) {
	h.adjustSeats(c, h.service.ReserveSeats)
}

func (h *FlightHandler) release(c *gin.Context) {
	h.adjustSeats(c, h.service.ReleaseSeats)
}

func (h *FlightHandler) adjustSeats(c *gin.Context, op func(ctx context.Context, id int64, seats int) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	seats, err := strconv.Atoi(c.Query("seats"))
	if err != nil {
		respondError(c, domain.ValidationError{
			Msg:    msgValidationFailed,
			Fields: map[string]string{"seats": "must be an integer"},
		})
		return
	}
	if err := op(c.Request.Context(), id, seats); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// pathID parses an int64 path parameter and writes a 400 when it is malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		respondError(c, domain.ValidationError{
			Msg:    msgValidationFailed,
			Fields: map[string]string{name: "must be an integer"},
		})
		return 0, false
	}
	return id, true
}
