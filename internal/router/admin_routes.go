package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/trip-seat-reservation/internal/handler"
	"github.com/iliyamo/trip-seat-reservation/internal/middleware"
	"github.com/iliyamo/trip-seat-reservation/internal/model"
)

// RegisterAdmin registers timetable management under /v1/admin.  All routes
// require a valid JWT and the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminTripHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/trips", h.Create)
	g.PATCH("/trips/:id", h.Update)
	g.DELETE("/trips/:id", h.Delete)
	g.GET("/audit", h.Audit)
}
