package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stockroute/backend/internal/domain/identity"
	"github.com/stockroute/backend/internal/infrastructure/auth"
	"github.com/stockroute/backend/internal/infrastructure/logger"
	"github.com/stockroute/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys
const (
	ActorKey      = "actor"
	UserIDKey     = "user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// JWTAuth authenticates requests with a bearer token and stores the actor
// in the gin context
func JWTAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}
		actor, err := claims.Actor()
		if err != nil {
			abortUnauthorized(c, log, err, "Invalid token claims")
			return
		}

		c.Set(ActorKey, actor)
		c.Set(UserIDKey, claims.UserID)

		c.Request = c.Request.WithContext(logger.WithUser(c.Request.Context(), claims.UserID))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	msg := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		msg = "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken):
		msg = "Invalid token"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		msg = "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrUnknownRole):
		msg = "Invalid token claims"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, msg, getRequestIDFromContext(c)))
}

// GetActor returns the authenticated actor
func GetActor(c *gin.Context) (identity.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok
}

// RequireRoles lets through only actors holding one of roles. It must run
// after JWTAuth.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", getRequestIDFromContext(c)))
			return
		}
		if !slices.Contains(roles, actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Insufficient role", getRequestIDFromContext(c)))
			return
		}
		c.Next()
	}
}
