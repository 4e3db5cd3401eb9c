package api

import (
	"context"
	"mime"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/client"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

type bookTicketRequest struct {
	FlightID      int64 `json:"flightId" binding:"required"`
	PassengerID   int64 `json:"passengerId" binding:"required"`
	NumberOfSeats int   `json:"numberOfSeats"`
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("/book", h.book)
	router.GET("/getByPnr/:pnr", h.getByPNR)
	router.GET("/getTicketsByEmail/:email", h.getByEmail)
	router.GET("/itinerary/:pnr", h.itinerary)
	router.DELETE("/delete/:id", h.cancel)
}

// ctx carries the caller's Authorization header to the flight and passenger services.
func (h *TicketHandler) ctx(c *gin.Context) context.Context {
	return client.WithAuthorization(c.Request.Context(), c.GetHeader("Authorization"))
}

func (h *TicketHandler) book(c *gin.Context) {
	var req bookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pnr, err := h.service.Book(h.ctx(c), tickets.BookInput{
		FlightID:      req.FlightID,
		PassengerID:   req.PassengerID,
		NumberOfSeats: req.NumberOfSeats,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, pnr)
}

func (h *TicketHandler) getByPNR(c *gin.Context) {
	view, err := h.service.GetByPNR(h.ctx(c), c.Param("pnr"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// getByEmail answers with an empty list on both 404 and 503.
func (h *TicketHandler) getByEmail(c *gin.Context) {
	views, err := h.service.GetTicketsByEmail(h.ctx(c), c.Param("email"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, views)
	case domain.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, []domain.TicketView{})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, []domain.TicketView{})
	default:
		respondError(c, err)
	}
}

func (h *TicketHandler) itinerary(c *gin.Context) {
	pnr := c.Param("pnr")
	pdf, err := h.service.Itinerary(h.ctx(c), pnr)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "ticket-" + pnr + ".pdf"}))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *TicketHandler) cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	msg, err := h.service.Cancel(h.ctx(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, msg)
}
