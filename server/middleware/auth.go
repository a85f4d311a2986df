package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bg/auth"
	apperrors "github.com/kbukum/bg/errors"
	"github.com/kbukum/bg/logger"
)

// HeaderAPIKey carries the static API key.
const HeaderAPIKey = "X-Api-Key"

// ContextKeyPrincipal is the Gin context key holding the *auth.Principal.
const ContextKeyPrincipal = "principal"

// Auth returns a Gin middleware that accepts either a Bearer token or an
// X-Api-Key header. The authenticated principal is stored in both the Gin
// context and the request context.
func Auth(authn *auth.Authenticator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Invalid authorization header format")
			return
		}

		principal, err := authn.Authenticate(bearer, c.GetHeader(HeaderAPIKey))
		if err != nil {
			log.WithContext(c.Request.Context()).Warn("Authentication failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			unauthorized(c, reason(err))
			return
		}

		c.Set(ContextKeyPrincipal, principal)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header. An absent
// header yields "" and ok; a header in any other scheme is not ok.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", true
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func reason(err error) string {
	switch {
	case errors.Is(err, auth.ErrNoCredentials):
		return "Authorization header or X-Api-Key required"
	case errors.Is(err, auth.ErrMissingScope):
		return "Token lacks the launch scope"
	case errors.Is(err, auth.ErrMethodDisabled):
		return "Credential type not accepted by this server"
	case errors.Is(err, auth.ErrInvalidKey):
		return "Invalid API key"
	default:
		return "Invalid token"
	}
}

func unauthorized(c *gin.Context, msg string) {
	appErr := apperrors.Unauthorized(msg)
	c.Header("WWW-Authenticate", `Bearer realm="bg"`)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
