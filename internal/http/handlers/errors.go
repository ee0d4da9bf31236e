package handlers

import (
	"net/http"

	"catalogapi/internal/domain"

	"github.com/gin-gonic/gin"
)

// RespondDomainError maps domain errors to HTTP responses. Internal failures
// are attached to the gin context for the request logger and never echoed.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsUnauthenticated(err):
		respondError(c, http.StatusUnauthorized, err.Error())
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"success":         false,
			"message":         "Validation failed",
			"validationError": domain.ValidationFields(err),
			"data":            nil,
		})
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"data":    nil,
	})
}
