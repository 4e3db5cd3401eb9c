package api

import (
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/service/passengers"
	"github.com/gin-gonic/gin"
)

type PassengerHandler struct {
	service passengers.PassengerUseCase
}

type registerPassengerRequest struct {
	Name        string `json:"name" binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	HouseNo     string `json:"houseNo" binding:"required"`
	City        string `json:"city" binding:"required"`
	State       string `json:"state" binding:"required"`
}

func NewPassengerHandler(service passengers.PassengerUseCase) *PassengerHandler {
	return &PassengerHandler{service: service}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.GET("/getByPassengerId/:id", h.details)
	router.GET("/getPassengerIdByEmail/:email", h.idByEmail)
	router.DELETE("/delete/:id", h.delete)
}

func (h *PassengerHandler) register(c *gin.Context) {
	var req registerPassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	id, err := h.service.Register(c.Request.Context(), passengers.RegisterInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		HouseNo:     req.HouseNo,
		City:        req.City,
		State:       req.State,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, id)
}

func (h *PassengerHandler) details(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	details, err := h.service.GetDetails(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *PassengerHandler) idByEmail(c *gin.Context) {
	id, err := h.service.GetIDByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, id)
}

func (h *PassengerHandler) delete(c *gin.Context) {
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
