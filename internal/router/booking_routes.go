package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/trip-seat-reservation/internal/handler"
	"github.com/iliyamo/trip-seat-reservation/internal/middleware"
	"github.com/iliyamo/trip-seat-reservation/internal/model"
)

// RegisterBooking registers reservation endpoints under /v1.  Any signed-in
// user may book; the handler checks ownership for single reservations and
// lets admins see every one.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
		limit,
	)
	g.POST("/reservations", h.Create)
	g.GET("/my-reservations", h.Mine)
	g.GET("/reservations/:id", h.Get)
	g.POST("/reservations/:id/cancel", h.Cancel)
}
