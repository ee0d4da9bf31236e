package handlers

import (
	"net/http"

	"catalogapi/internal/domain/models"
	"catalogapi/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Users services.UserService
}

// GET /api/users
func (h UserHandler) List(c *gin.Context) {
	res, err := h.Users.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "Users retrieved successfully", res)
}

// GET /api/users/:id
func (h UserHandler) Get(c *gin.Context) {
	user, err := h.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "User found", user)
}

// PUT /api/users/:id
func (h UserHandler) Update(c *gin.Context) {
	var req models.UpdateUserRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	user, err := h.Users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "User updated successfully", user)
}

// DELETE /api/users/:id
func (h UserHandler) Delete(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, "User deleted successfully", nil)
}
