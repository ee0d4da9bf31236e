package middleware

import (
	"context"
	"net/http"
	"strings"

	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	currentUserKey = "current_user"
	bearerPrefix   = "Bearer "
	authInvalidMsg = "Authentication invalid"
)

type TokenVerifier interface {
	Verify(raw string) (string, error)
}

type IdentityLookup interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Authenticate resolves the bearer token to a stored user. Every credential
// problem, including a subject that no longer exists, is the same 401.
func Authenticate(tokens TokenVerifier, users IdentityLookup, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			abortUnauthenticated(c)
			return
		}
		subject, err := tokens.Verify(strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		user, err := users.FindByID(c.Request.Context(), subject)
		if domain.IsNotFound(err) {
			utils.LogEvent(c.Request.Context(), log, "auth", "unknown_subject", "subject="+subject)
			abortUnauthenticated(c)
			return
		}
		if err != nil {
			log.Error("identity lookup failed", zap.String("request_id", GetRequestID(c)), zap.Error(err))
			abortWith(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

func abortUnauthenticated(c *gin.Context) {
	abortWith(c, http.StatusUnauthorized, authInvalidMsg)
}

func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"data":    nil,
	})
}
