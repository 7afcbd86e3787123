package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowHeaders  = "Authorization, Content-Type, X-Requested-With, X-Request-ID, X-School-Slug"
	exposeHeaders = "Location, Content-Disposition, X-Request-ID"
)

// New returns a CORS middleware that honors a list of allowed origins.
// Entries may be exact origins or wildcard subdomains such as https://*.schools.example.com.
func New(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	originSet := make(map[string]struct{}, len(allowedOrigins))
	var wildcards []string
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(origin, "/")
		if origin == "*" {
			allowAll = true
			continue
		}
		if i := strings.Index(origin, "*."); i >= 0 {
			wildcards = append(wildcards, origin[:i]+"|"+origin[i+1:])
			continue
		}
		originSet[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if allowAll || hasOrigin(originSet, wildcards, origin) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			}
		} else if allowAll {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Vary", "Origin")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		c.Writer.Header().Set("Access-Control-Expose-Headers", exposeHeaders)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// wildcards are stored as "scheme://|.suffix".
func hasOrigin(originSet map[string]struct{}, wildcards []string, origin string) bool {
	origin = strings.TrimRight(origin, "/")
	if _, ok := originSet[origin]; ok {
		return true
	}
	for _, w := range wildcards {
		parts := strings.SplitN(w, "|", 2)
		if !strings.HasPrefix(origin, parts[0]) {
			continue
		}
		host := strings.TrimPrefix(origin, parts[0])
		if strings.HasSuffix(host, parts[1]) && len(host) > len(parts[1]) && !strings.Contains(strings.TrimSuffix(host, parts[1]), ".") {
			return true
		}
	}
	return false
}
