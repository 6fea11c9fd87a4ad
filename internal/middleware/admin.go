package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cleverframework/clever-v0-galleries/internal/lib/jwt"
	"github.com/cleverframework/clever-v0-galleries/internal/lib/logger/sl"
)

// AdminOnly пропускает только запросы с Bearer токеном администратора
func AdminOnly(log *slog.Logger, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			}

			claims, err := jwt.ParseAdminToken(secret, tokenString)
			if err != nil {
				log.Warn("admin check failed", slog.String("path", c.Path()), sl.Err(err))
				return c.JSON(http.StatusForbidden, map[string]string{"error": "admin access required"})
			}

			log.Info("admin request",
				slog.String("subject", claims.Subject),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
			)

			return next(c)
		}
	}
}
