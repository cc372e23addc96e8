package router

import (
	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/handler"
	"github.com/atempo/atempo-server/internal/middleware"
)

// RegisterAdmin registers the dashboard endpoints.  Everything under
// /v1/admin requires a valid performer token whose email is on the admin
// allow-list.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, isAdmin func(string) bool) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireAdmin(isAdmin))

	g.GET("/reservations", a.ListReservations)
	g.POST("/reservations/:id/approve", a.Approve)
	g.POST("/reservations/:id/approve-onsite", a.ApproveOnsite)
	g.POST("/reservations/:id/checkin", a.CheckInByID)
	g.PUT("/reservations/:id/visited-for", a.SetVisitedFor)
	g.DELETE("/reservations/:id", a.DeleteReservation)
	g.DELETE("/reservations", a.DeleteAllReservations)

	g.GET("/performers", a.ListPerformers)
	g.DELETE("/performers/:id", a.DeletePerformer)
	g.PUT("/performers/:id/password", a.ResetPerformerPassword)

	g.PUT("/settings/reservation-closed", a.SetReservationClosed)
}
