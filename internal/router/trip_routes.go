package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/trip-seat-reservation/internal/handler"
)

// RegisterTrips registers the public catalog.  Search runs behind the rate
// limiter and the response cache; trip detail and seat maps are never
// cached because they change with every booking.
func RegisterTrips(e *echo.Echo, h *handler.TripHandler, limit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/trips", limit)
	g.GET("/search", h.Search, cache)
	g.GET("/:id", h.Get)
	g.GET("/:id/seats", h.Seats)
}
