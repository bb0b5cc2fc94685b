package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, " + RequestIDHeader
	corsMaxAge       = "86400"
)

// CORS echoes the Origin header back when it matches one of the allowed
// glob patterns, such as "https://*.example.com". Preflight requests are
// answered with 204.
func CORS(allowedOrigins []string) (gin.HandlerFunc, error) {
	patterns := make([]glob.Glob, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		g, err := glob.Compile(strings.ToLower(origin), '.', ':')
		if err != nil {
			return nil, oops.In("cors").With("origin", origin).Wrapf(err, "compile origin pattern")
		}
		patterns = append(patterns, g)
	}

	allowed := func(origin string) bool {
		origin = strings.ToLower(origin)
		for _, g := range patterns {
			if g.Match(origin) {
				return true
			}
		}
		return false
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && allowed(origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)
			h.Set("Access-Control-Max-Age", corsMaxAge)
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}, nil
}
