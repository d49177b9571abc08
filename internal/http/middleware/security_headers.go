package middleware

import (
	"github.com/labstack/echo/v4"
)

const (
	contentSecurityPolicy = "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data: https:; " +
		"font-src 'self'; " +
		"connect-src 'self'; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"

	strictTransportSecurity = "max-age=31536000; includeSubDomains; preload"
	permissionsPolicy       = "geolocation=(), microphone=(), camera=(), payment=(), usb=(), magnetometer=(), gyroscope=()"
)

// SecurityHeaders sets the response hardening headers. HSTS is only sent
// when the service is deployed behind TLS.
func SecurityHeaders(hsts bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", contentSecurityPolicy)
			if hsts {
				h.Set("Strict-Transport-Security", strictTransportSecurity)
			}
			h.Set(echo.HeaderXContentTypeOptions, "nosniff")
			h.Set(echo.HeaderXFrameOptions, "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", permissionsPolicy)
			// Uploaded images are embedded by the public site on another origin.
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")
			h.Del(echo.HeaderServer)
			h.Del("X-Powered-By")

			return next(c)
		}
	}
}
