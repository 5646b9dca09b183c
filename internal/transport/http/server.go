// Package http assembles the portal's HTTP server.
package http

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/xiaot623/potholefix/internal/config"
	"github.com/xiaot623/potholefix/internal/hub"
	"github.com/xiaot623/potholefix/internal/service"
	"github.com/xiaot623/potholefix/internal/transport/http/browser"
	"github.com/xiaot623/potholefix/internal/transport/http/web"
	"github.com/xiaot623/potholefix/internal/transport/ws"
)

// NewServer creates and configures the browser-facing HTTP server.
func NewServer(cfg *config.Config, svc *service.Service, h *hub.Hub) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(LogLevel(cfg.LogLevel))

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(browser.NewIdentifier(cfg.CookieSecret, cfg.CookieSecure, cfg.SessionTTL).Middleware())

	// Handlers
	webHandler := web.NewHandler(svc, h)
	wsServer := ws.NewServer(cfg, h, svc)

	// Register Routes
	e.GET("/ws", wsServer.HandleWebSocket)
	webHandler.RegisterRoutes(e)

	return e
}

// LogLevel maps a LOG_LEVEL value onto echo's logger levels.
func LogLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
