package handlers

import (
	"catalogapi/internal/domain"

	"github.com/gin-gonic/gin"
)

// sendSuccess writes the standard success envelope.
func sendSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// BindJSONOrError binds and validates the body. On failure the 400 envelope is
// already written and false is returned.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondDomainError(c, domain.ValidationError{Field: "body", Msg: "Request body is required"})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondDomainError(c, translateBindError(err))
		return false
	}
	return true
}
