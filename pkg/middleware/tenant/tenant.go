package tenant

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderKey lets non-browser clients pick a school explicitly.
	HeaderKey  = "X-School-Slug"
	contextKey = "tenant"
)

// DefaultSlug is used when no school can be resolved.
const DefaultSlug = "default"

type ctxKey struct{}

// WithTenant stores the school slug on a context.
func WithTenant(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, ctxKey{}, slug)
}

// FromContext returns the school slug carried by ctx, or DefaultSlug.
func FromContext(ctx context.Context) string {
	if ctx != nil {
		if slug, ok := ctx.Value(ctxKey{}).(string); ok && slug != "" {
			return slug
		}
	}
	return DefaultSlug
}

// Middleware resolves the school from the request host subdomain
// (e.g. greenfield.schools.example.com with baseDomain schools.example.com) or the
// X-School-Slug header, falling back to defaultSlug.
func Middleware(baseDomain, defaultSlug string) gin.HandlerFunc {
	baseDomain = strings.ToLower(strings.TrimPrefix(baseDomain, "."))
	if defaultSlug == "" {
		defaultSlug = DefaultSlug
	}
	return func(c *gin.Context) {
		slug := Resolve(c.Request.Host, c.GetHeader(HeaderKey), baseDomain)
		if slug == "" {
			slug = defaultSlug
		}
		c.Set(contextKey, slug)
		c.Request = c.Request.WithContext(WithTenant(c.Request.Context(), slug))
		c.Next()
	}
}

// Resolve picks the tenant slug from an explicit header or the host subdomain.
func Resolve(host, header, baseDomain string) string {
	if slug := sanitize(header); slug != "" {
		return slug
	}
	if baseDomain == "" {
		return ""
	}
	hostname := strings.ToLower(host)
	if h, _, err := net.SplitHostPort(hostname); err == nil {
		hostname = h
	}
	suffix := "." + baseDomain
	if !strings.HasSuffix(hostname, suffix) {
		return ""
	}
	sub := strings.TrimSuffix(hostname, suffix)
	if i := strings.LastIndex(sub, "."); i >= 0 {
		sub = sub[i+1:]
	}
	if sub == "www" {
		return ""
	}
	return sanitize(sub)
}

// Value returns the slug stored on the gin context.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if slug, ok := v.(string); ok {
			return slug
		}
	}
	return ""
}

func sanitize(raw string) string {
	slug := strings.ToLower(strings.TrimSpace(raw))
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return ""
		}
	}
	return slug
}
