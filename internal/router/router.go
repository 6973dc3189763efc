package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"                             // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp" // Prometheus scrape handler

	"github.com/iliyamo/trip-seat-reservation/internal/handler"    // import the handlers that implement the API
	"github.com/iliyamo/trip-seat-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/trip-seat-reservation/internal/model"
)

// RegisterRoutes registers the routes that do not belong to the API
// proper: the health check and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, ready func() bool) {
	e.GET("/healthz", handler.Health(ready))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers all authentication-related routes.  Register and
// login live under /v1/auth without a token but behind the rate limiter;
// the profile endpoints and logout need a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
	auth.PATCH("/me", a.UpdateMe)
}
