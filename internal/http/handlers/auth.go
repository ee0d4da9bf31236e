package handlers

import (
	"net/http"

	"catalogapi/internal/domain/models"
	"catalogapi/internal/http/middleware"
	"catalogapi/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Auth services.AuthService
}

// POST /api/auth/register
func (h AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusCreated, "User registered successfully", user)
}

// POST /api/auth/login
func (h AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Login successful", res)
}

// GET /api/profile/me
func Profile(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Authentication invalid")
		return
	}
	sendSuccess(c, http.StatusOK, "User found", models.ToUserResponse(u))
}
