package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleverframework/clever-v0-galleries/internal/lib/jwt"
	"github.com/cleverframework/clever-v0-galleries/internal/middleware"
)

const secret = "test-secret"

func newEcho() *echo.Echo {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Use(middleware.PrometheusMetrics)
	e.POST("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, middleware.AdminOnly(log, secret))

	return e
}

func TestAdminOnly(t *testing.T) {
	e := newEcho()

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin token", func(t *testing.T) {
		token, err := jwt.NewAdminToken(secret, "ops", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestAdminOnly_LogsSubject(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	e.DELETE("/galleries/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, middleware.AdminOnly(log, secret))

	token, err := jwt.NewAdminToken(secret, "ops", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, "/galleries/42", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, buf.String(), "subject=ops")
	assert.Contains(t, buf.String(), "path=/galleries/:id")
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
