package handler

import (
	"net/http"

	"project_tracker/internal/model"
	"project_tracker/internal/response"
	"project_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	created, err := h.service.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, created)
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req model.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.BindError(err))
		return
	}

	token, err := h.service.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, token)
}

// RegisterAuthRoutes registers auth routes. signinMW wraps signin only and may be nil.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, signinMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", h.Signup)
		if signinMW != nil {
			authGroup.POST("/signin", signinMW, h.Signin)
		} else {
			authGroup.POST("/signin", h.Signin)
		}
	}
}
