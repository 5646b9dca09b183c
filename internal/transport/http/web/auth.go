package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/potholefix/internal/domain"
	"github.com/xiaot623/potholefix/internal/transport/http/browser"
)

// Login authenticates the browser.
// POST /api/login
func (h *Handler) Login(c echo.Context) error {
	var req domain.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	res, err := h.service.Login(c.Request().Context(), browser.ID(c), req)
	if err != nil {
		return writeError(c, err, "Login failed! Please check your credentials.")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"redirect": res.Redirect,
		"role":     res.Session.Role,
		"name":     res.Session.DisplayName,
	})
}

// Logout ends the browser's session.
// POST /api/logout
func (h *Handler) Logout(c echo.Context) error {
	if err := h.service.Logout(c.Request().Context(), browser.ID(c)); err != nil {
		return writeError(c, err, "logout failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"redirect": domain.PathLogin})
}

// Signup creates an account.
// POST /api/signup
func (h *Handler) Signup(c echo.Context) error {
	var req domain.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.service.Signup(c.Request().Context(), req); err != nil {
		return writeError(c, err, "Signup failed. This email may already be in use.")
	}
	return c.JSON(http.StatusCreated, map[string]string{"redirect": domain.PathLogin})
}

// ResetPassword sets a new password.
// POST /api/reset-password
func (h *Handler) ResetPassword(c echo.Context) error {
	var req domain.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.service.ResetPassword(c.Request().Context(), req); err != nil {
		return writeError(c, err, "Recovery failed.")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Badge returns the caller's resolved-report count, null until known.
// GET /api/badge
func (h *Handler) Badge(c echo.Context) error {
	resp := map[string]interface{}{"resolved_count": nil}
	if count, ok := h.service.Badge(browser.ID(c)); ok {
		resp["resolved_count"] = count
	}
	return c.JSON(http.StatusOK, resp)
}
