// Package router wires handlers onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/handler"
	"github.com/atempo/atempo-server/internal/middleware"
)

// RegisterRoutes registers the health probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated event-facing endpoints: the
// reservation form, the deposit webhook, ticket verification and the public
// reads (settings, performer directory).
//
// rateLimit guards the deposit webhook and ticket verification against
// notification storms; cache fronts the identity-free public reads.
func RegisterPublic(e *echo.Echo,
	r *handler.ReservationHandler,
	d *handler.DepositHandler,
	v *handler.VerifyHandler,
	s *handler.SettingsHandler,
	qr *handler.QRHandler,
	pf *handler.PerformerListHandler,
	rateLimit, cache echo.MiddlewareFunc,
) {
	e.POST("/v1/reservations", r.Create)
	e.POST("/v1/reservations/onsite", r.CreateOnsite)
	e.PUT("/v1/reservations/:id", r.UpdateContact)

	e.POST("/v1/deposits", d.HandleDeposit, rateLimit)

	e.POST("/v1/tickets/verify", v.Verify, rateLimit)
	e.GET("/v1/tickets/qr", qr.Ticket)

	e.GET("/v1/settings", s.Get, cache)
	e.GET("/v1/performers", pf.List, cache)
}

// RegisterCheckin registers the check-in desk endpoints.  The desk runs on a
// staff device with an admin login, so the routes sit behind the same guard
// as the dashboard.
func RegisterCheckin(e *echo.Echo, ci *handler.CheckinHandler, jwtSecret string, isAdmin func(string) bool) {
	g := e.Group("/v1/checkin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireAdmin(isAdmin))

	g.POST("", ci.CheckIn)
	g.GET("/stats", ci.Stats)
}

// RegisterAuth registers performer signup, login and session management.
// The rate limiter fronts the credential endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, aud *handler.AudienceHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", rateLimit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)

	e.POST("/v1/audience/session", aud.CreateSession)
}
