package middleware

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
)

// UserEnsurer makes sure the token subject has a profile row.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, au types.AuthenticatedUser) (*types.User, error)
}

// AuthMiddleware validates the Bearer token, provisions the user on first sight
// and stores the user id under UserIDKey.
func AuthMiddleware(validator Validator, users UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("missing_token", "Authorization required"))
			c.Abort()
			return
		}

		au, err := validator.Validate(token)
		if err != nil {
			log.Warnw("Invalid JWT token",
				"error", err,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())

			if errors.Is(err, ErrTokenExpired) {
				_ = c.Error(apperrors.Unauthorized("token_expired", "Your session has expired"))
			} else {
				_ = c.Error(apperrors.Unauthorized("invalid_token", "Invalid authentication token"))
			}
			c.Abort()
			return
		}

		if users != nil {
			if _, err := users.EnsureUser(c.Request.Context(), *au); err != nil {
				log.Errorw("Failed to provision user", "userID", au.ID, "error", err)
				_ = c.Error(err)
				c.Abort()
				return
			}
		}

		c.Set(string(UserIDKey), au.ID)
		c.Set(string(AuthUserKey), *au)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// GetUserID returns the authenticated user id set by AuthMiddleware.
func GetUserID(c *gin.Context) string {
	return c.GetString(string(UserIDKey))
}
