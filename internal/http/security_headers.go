package http

import "github.com/gin-gonic/gin"

// apiContentSecurityPolicy forbids every resource type. Responses are JSON
// or PGN downloads and are never rendered as documents.
const apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeadersMiddleware adds security-related HTTP headers to all responses.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", apiContentSecurityPolicy)

		// Book contents are per user; keep them out of shared caches
		if c.Request.URL.Path != "/health" && c.Request.URL.Path != "/ping" {
			c.Header("Cache-Control", "no-store")
		}

		c.Next()
	}
}
