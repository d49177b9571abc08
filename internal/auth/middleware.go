package auth

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "project-service/pkg/errors"
)

type Middleware struct {
	jwtService *JWTService
}

func NewMiddleware(jwtService *JWTService) *Middleware {
	return &Middleware{jwtService: jwtService}
}

// RequireAdmin verifies the bearer token and stores the admin identity on
// the echo context.
func (m *Middleware) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c)
			if token == "" {
				return apperrors.Unauthorized(msgMissingAuthorization)
			}

			claims, err := m.jwtService.Verify(token)
			if err != nil {
				c.Logger().Debugf("token rejected: %v", err)
				return apperrors.Unauthorized(msgInvalidOrExpiredToken)
			}

			c.Set(ContextKeyAdminID, claims.Subject)
			c.Set(ContextKeyAdminRole, claims.Role)
			c.Set(ContextKeyPermissions, claims)

			return next(c)
		}
	}
}

// RequirePermission must run after RequireAdmin.
func (m *Middleware) RequirePermission(permission Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ContextKeyPermissions).(*AdminClaims)
			if !ok || claims == nil {
				return apperrors.Unauthorized(msgAdminNotAuthenticated)
			}
			if !claims.Can(permission) {
				return apperrors.Forbidden(fmt.Sprintf(msgPermissionDenied, permission))
			}
			return next(c)
		}
	}
}

func extractBearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get(headerAuthorization)
	if authHeader == "" {
		return ""
	}

	parts := strings.Fields(authHeader)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return parts[1]
}

func GetAdminID(c echo.Context) (string, error) {
	adminID := c.Get(ContextKeyAdminID)
	if adminID == nil {
		return "", apperrors.Unauthorized(msgAdminNotAuthenticated)
	}

	id, ok := adminID.(string)
	if !ok || id == "" {
		return "", apperrors.InternalServer(msgInvalidAdminIDCtx, nil)
	}

	return id, nil
}
