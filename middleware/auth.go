package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-cms/helper"
	"blog-cms/logging"
	"blog-cms/models"
	"blog-cms/services"
)

const principalKey = "principal"

// PrincipalHandler is a gin handler that receives the resolved principal
// explicitly. The principal is nil for anonymous requests passed through
// Optional.
type PrincipalHandler func(c *gin.Context, principal *models.Principal)

// SessionMiddleware resolves the bearer token, if any, to a principal. It
// never rejects a request: a missing or invalid token leaves the request
// anonymous and authorization is left to the route.
func SessionMiddleware(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, resolved := c.Get(principalKey); resolved {
			c.Next()
			return
		}

		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if principal, err := tokens.Validate(token); err == nil {
				c.Set(principalKey, principal)
				ctx := logging.With(c.Request.Context(), slog.Uint64("user_id", uint64(principal.ID)))
				c.Request = c.Request.WithContext(ctx)
			}
		}

		c.Next()
	}
}

// PrincipalFromContext returns the principal attached by SessionMiddleware.
func PrincipalFromContext(c *gin.Context) *models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := v.(*models.Principal)
	return principal
}

// Authenticated rejects anonymous requests and hands the principal to fn.
func Authenticated(h *helper.HTTPHelper, fn PrincipalHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			h.SendUnauthorizedError(c, "authentication required")
			return
		}
		fn(c, principal)
	}
}

// Optional hands the principal, possibly nil, to fn.
func Optional(fn PrincipalHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		fn(c, PrincipalFromContext(c))
	}
}

// RequireRole allows the request through when the principal holds the
// authority of any of roles. Anonymous requests get 401, others 403.
func RequireRole(h *helper.HTTPHelper, roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFromContext(c)
		if principal == nil {
			h.SendUnauthorizedError(c, "authentication required")
			return
		}
		if !principal.HasAnyRole(roles...) {
			h.SendForbiddenError(c, "insufficient permissions")
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
