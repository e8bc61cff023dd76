package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/andraa0104/isystem-1-sub006/internal/infrastructure/auth"
	"github.com/andraa0104/isystem-1-sub006/internal/interfaces/http/dto"
)

// Context keys set by the auth middleware
const (
	AuthSubjectKey = "auth_subject"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// BearerAuth validates the Authorization header against the token verifier.
// When verification is not configured the middleware passes everything
// through, so development setups work without tokens.
func BearerAuth(verifier *auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil || !verifier.Enabled() {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(header, BearerPrefix))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Token validation failed")
			return
		}

		c.Set(AuthSubjectKey, claims.Subject)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, requestID))
}
