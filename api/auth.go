package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/flightbooking/internal/middleware"
	"github.com/Domenick1991/flightbooking/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service    auth.AuthUseCase
	cookieName string
	now        func() time.Time
}

type signupRequest struct {
	Username string   `json:"username" binding:"required,min=3,max=20"`
	Email    string   `json:"email" binding:"required,email,max=50"`
	Password string   `json:"password" binding:"required,min=6,max=40"`
	Roles    []string `json:"roles"`
}

type signinRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=40"`
}

type userInfoResponse struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

type passwordExpiredResponse struct {
	Status              string `json:"status"`
	Message             string `json:"message"`
	ForcePasswordChange bool   `json:"forcePasswordChange"`
}

func NewAuthHandler(service auth.AuthUseCase, cookieName string) *AuthHandler {
	return &AuthHandler{service: service, cookieName: cookieName, now: time.Now}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/signup", h.signup)
	router.POST("/signin", h.signin)
	router.POST("/signout", h.signout)
	router.GET("/me", h.me)
	router.POST("/change-password", h.changePassword)
}

func (h *AuthHandler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	err := h.service.Signup(c.Request.Context(), auth.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Roles:    req.Roles,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: auth.MsgRegistered})
}

func (h *AuthHandler) signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	session, err := h.service.Signin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	maxAge := int(session.ExpiresAt.Sub(h.now()).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, session.Token, maxAge, "/", "", false, true)

	if session.PasswordExpired {
		c.JSON(http.StatusOK, passwordExpiredResponse{
			Status:              auth.StatusExpired,
			Message:             auth.MsgPasswordExpired,
			ForcePasswordChange: true,
		})
		return
	}
	c.JSON(http.StatusOK, userInfoResponse{
		ID:       session.User.ID,
		Username: session.User.Username,
		Email:    session.User.Email,
		Roles:    session.User.RoleNames(),
	})
}

func (h *AuthHandler) signout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, messageResponse{Message: auth.MsgSignedOut})
}

func (h *AuthHandler) me(c *gin.Context) {
	user, _, err := h.service.Authenticate(c.Request.Context(), middleware.TokenFromRequest(c, h.cookieName))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userInfoResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.RoleNames(),
	})
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	user, _, err := h.service.Authenticate(c.Request.Context(), middleware.TokenFromRequest(c, h.cookieName))
	if err != nil {
		respondError(c, err)
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.service.ChangePassword(c.Request.Context(), user.Username, req.OldPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, auth.MsgPasswordChanged)
}
