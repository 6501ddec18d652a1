package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comercio/backend/internal/infrastructure/auth"
	"github.com/comercio/backend/internal/infrastructure/logger"
	"github.com/comercio/backend/internal/interfaces/http/dto"
)

const actorIDKey = "actor_id"

// ActorAuth returns a middleware that resolves the acting user from the
// Authorization header. The subject claim of a verified token becomes the
// actor id recorded on created_by/updated_by columns. Paths in skipPaths
// pass through without a token.
func ActorAuth(verifier *auth.TokenVerifier, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		token, ok := extractBearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			msg := "invalid token"
			if err == auth.ErrExpiredToken {
				msg = "token expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		actorID := claims.ActorID()
		c.Set(actorIDKey, actorID)

		reqCtx := c.Request.Context()
		ctx, _ := logger.WithActorID(reqCtx, logger.FromContext(reqCtx), actorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetActorID returns the authenticated actor id set by ActorAuth, or an
// empty string when the request was not authenticated.
func GetActorID(c *gin.Context) string {
	if v, ok := c.Get(actorIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, requestID))
}
