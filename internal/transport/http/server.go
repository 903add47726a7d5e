// Package http provides the HTTP and WebSocket surface of the launchpad.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewServer creates the launchpad HTTP server. staticDir, when set, is served
// at the root for the web chat page.
func NewServer(h *Handler, staticDir string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	if staticDir != "" {
		e.Static("/", staticDir)
	}
	return e
}
