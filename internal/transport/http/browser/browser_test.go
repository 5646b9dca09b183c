package browser

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho() *echo.Echo {
	e := echo.New()
	e.Use(NewIdentifier("test-secret", false, time.Hour).Middleware())
	e.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, ID(c))
	})
	return e
}

func TestMiddlewareIssuesAndReusesID(t *testing.T) {
	e := newEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()
	assert.NotEmpty(t, first)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, first, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestMiddlewareRejectsForgedCookie(t *testing.T) {
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}

func TestMiddlewareRejectsCookieFromOtherSecret(t *testing.T) {
	other := echo.New()
	other.Use(NewIdentifier("other-secret", false, time.Hour).Middleware())
	other.GET("/whoami", func(c echo.Context) error { return c.String(http.StatusOK, ID(c)) })

	rec := httptest.NewRecorder()
	other.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	foreign := rec.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	rec = httptest.NewRecorder()
	newEcho().ServeHTTP(rec, req)

	assert.NotEqual(t, foreign, rec.Body.String())
}
