package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple health‑check endpoint used by load balancers and
// monitoring systems.  It reports "ok" once the services have loaded their
// data and "starting" with 503 before that.
func Health(ready func() bool) echo.HandlerFunc {
    return func(c echo.Context) error {
        if ready != nil && !ready() {
            return c.String(http.StatusServiceUnavailable, "starting")
        }
        return c.String(http.StatusOK, "ok")
    }
}
