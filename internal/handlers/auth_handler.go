package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/motopark/api/internal/auth"
	"github.com/stwalsh4118/motopark/api/internal/models"
	"github.com/stwalsh4118/motopark/api/internal/services"
)

// AuthHandler handles account and session requests.
type AuthHandler struct {
	service services.AuthService
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(service services.AuthService) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a user and their token.
type AuthResponse struct {
	User    *models.User `json:"user"`
	Message string       `json:"message"`
	Token   string       `json:"token"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User *models.User `json:"user"`
}

// MessageResponse is a body with only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	result, err := h.service.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    result.User,
		Token:   result.Token,
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    result.User,
		Token:   result.Token,
	})
}

// Anonymous handles POST /api/auth/anonymous.
func (h *AuthHandler) Anonymous(c *gin.Context) {
	result, err := h.service.LoginAnonymous(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Message: "Anonymous user created",
		User:    result.User,
		Token:   result.Token,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the
// client discarding its token ends the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}
