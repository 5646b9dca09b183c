// Package web serves the portal's screens and JSON actions.
package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/potholefix/internal/domain"
	"github.com/xiaot623/potholefix/internal/hub"
	"github.com/xiaot623/potholefix/internal/service"
	"github.com/xiaot623/potholefix/internal/transport/http/browser"
)

const sessionKey = "session"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	hub     *hub.Hub
}

// NewHandler creates a new handler.
func NewHandler(svc *service.Service, h *hub.Hub) *Handler {
	return &Handler{service: svc, hub: h}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Screens
	for _, screen := range domain.Screens {
		e.GET(screen.Path, h.Screen(screen))
	}

	// Actions
	api := e.Group("/api")
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.POST("/signup", h.Signup)
	api.POST("/reset-password", h.ResetPassword)
	api.GET("/badge", h.Badge)

	api.POST("/predict", h.Predict, h.require(domain.CapabilityCitizen))
	api.POST("/reports", h.SubmitReport, h.require(domain.CapabilityCitizen))
	api.DELETE("/reports/:id", h.DeleteReport, h.require(domain.CapabilityCitizen))
	api.PATCH("/reports/:id/resolve", h.ResolveReport, h.require(domain.CapabilityAdmin))

	e.GET("/health", h.Health)

	// Anything else goes back to the landing screen.
	e.RouteNotFound("/*", h.NotFound)
}

// Screen renders a screen after consulting the access guard.
func (h *Handler) Screen(screen domain.Screen) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		browserID := browser.ID(c)

		sess, decision := h.service.Authorize(ctx, browserID, screen.Requires)
		if !decision.Allowed {
			return c.Redirect(http.StatusFound, decision.Redirect)
		}

		view, err := h.service.Screen(ctx, browserID, sess, screen)
		if err != nil {
			return writeError(c, err, "failed to load "+screen.Name)
		}
		return c.JSON(http.StatusOK, view)
	}
}

// NotFound redirects unknown paths to the landing screen.
func (h *Handler) NotFound(c echo.Context) error {
	return c.Redirect(http.StatusFound, domain.PathLanding)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"version":     "0.1.0",
		"connections": h.hub.ConnectionCount(),
	})
}

// require gates an action on the same policy as the screens, answering
// 401 or 403 instead of redirecting.
func (h *Handler) require(capability domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, decision := h.service.Authorize(c.Request().Context(), browser.ID(c), capability)
			if !decision.Allowed {
				if sess.IsEmpty() {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "login required"})
				}
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

func sessionFrom(c echo.Context) domain.Session {
	sess, _ := c.Get(sessionKey).(domain.Session)
	return sess
}
