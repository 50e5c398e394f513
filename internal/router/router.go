// Package router registers the HTTP routes for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/gatherly/guestlist/internal/handler"
	"github.com/gatherly/guestlist/internal/middleware"
)

// RegisterRoutes registers routes that carry no middleware at all.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterGuest registers the public guest-facing routes. Both are rate
// limited; only the lookup is cached, since RSVP posts must always hit the
// store.
func RegisterGuest(e *echo.Echo, g *handler.GuestHandler, limit, cache echo.MiddlewareFunc) {
	pub := e.Group("/v1", limit)
	pub.GET("/guests/lookup", g.Lookup, cache)
	pub.POST("/rsvp", g.Submit)
}

// RegisterAuth registers the staff authentication routes. Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout validates the refresh token itself, so it needs no JWT.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(handler.RoleOrganizer, handler.RoleStaff))
	auth.GET("/me", a.Me)

	// Same handler reachable without the /auth prefix for clients that
	// send the refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterAdmin registers the organizer-side routes. Reading the roster is
// open to all staff; running a batch sync is organizer-only.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RoleOrganizer, handler.RoleStaff))

	g.GET("/guests", a.Guests)
	g.GET("/guests/export", a.Export)
	g.GET("/stats", a.Stats)
	g.POST("/reconcile", a.Reconcile, middleware.RequireRole(handler.RoleOrganizer))
}
