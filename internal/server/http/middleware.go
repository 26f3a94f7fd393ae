package http

import (
	nethttp "net/http"
	"strings"
	"time"

	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/logging"
	"github.com/chouaib-skitou/Festivio/internal/server/auth"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/gin-gonic/gin"
)

// TokenVerifier checks signed tokens; *auth.TokenService implements it.
type TokenVerifier interface {
	Verify(token string, purpose auth.Purpose) (*auth.Claims, error)
}

// RequireAuth accepts only a valid access token in the Authorization header
// and stores the requester identity in the request context. Every failure
// after the header is present gets the same message.
func RequireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			c.AbortWithStatusJSON(nethttp.StatusUnauthorized, gin.H{"message": "Access token required"})
			return
		}

		claims, err := tokens.Verify(token, auth.PurposeAccess)
		if err != nil {
			c.AbortWithStatusJSON(nethttp.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		id := models.Identity{Subject: claims.Subject, Role: models.Role(claims.Role)}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], common.BearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// identity returns the requester stored by RequireAuth.
func identity(c *gin.Context) (models.Identity, bool) {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(nethttp.StatusUnauthorized, gin.H{"message": "Access token required"})
	}
	return id, ok
}

// RequestLogger logs one line per request.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
		}
		if id, ok := auth.IdentityFrom(c.Request.Context()); ok {
			args = append(args, "user_id", id.Subject)
		}
		logger.Info(c.Request.Context(), "request", args...)
	}
}
