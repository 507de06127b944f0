package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// userIDKey is the echo context key the middleware stores the
// authenticated user id under.
const userIDKey = "user_id"

// Middleware returns an echo middleware that requires a valid Bearer
// access token and stores the authenticated user id in the context.
func (ts *TokenService) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims, err := ts.ValidateAccessToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(userIDKey, claims.UserID)
			return next(c)
		}
	}
}

// GetUserID returns the authenticated user id set by Middleware. It must
// only be called on routes behind the middleware.
func GetUserID(c echo.Context) int64 {
	return c.Get(userIDKey).(int64)
}
