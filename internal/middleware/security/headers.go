package security

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type HeadersConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
	// NoStorePrefixes mark responses that carry patient data and must not be
	// cached by browsers or proxies.
	NoStorePrefixes []string
}

func HeadersMiddleware(cfg HeadersConfig) fiber.Handler {
	csp := "default-src 'self'; " +
		"img-src 'self' data:; " +
		"connect-src 'self' " + buildConnectSrc(cfg.AllowedOrigins) + "; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"

	return func(c *fiber.Ctx) error {
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Content-Security-Policy", csp)

		if !cfg.IsDevelopment {
			c.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		path := c.Path()
		for _, prefix := range cfg.NoStorePrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Set(fiber.HeaderCacheControl, "no-store")
				c.Set("Pragma", "no-cache")
				break
			}
		}

		return c.Next()
	}
}

func buildConnectSrc(origins []string) string {
	var b strings.Builder
	for _, origin := range origins {
		if strings.HasPrefix(origin, "http") {
			b.WriteString(strings.Replace(origin, "http", "ws", 1))
			b.WriteString(" ")
		}
		b.WriteString(origin)
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}
