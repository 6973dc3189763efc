package middleware

// identity.go holds the context keys JWTAuth fills in and the accessors
// handlers and the other middleware use to read them back.

import "github.com/labstack/echo/v4"

const (
    ctxUserID = "user_id"
    ctxRole   = "role"
)

// UserID returns the authenticated user's id, or "" for anonymous requests.
func UserID(c echo.Context) string {
    s, _ := c.Get(ctxUserID).(string)
    return s
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
    s, _ := c.Get(ctxRole).(string)
    return s
}

// currentUserID is UserID with "anon" standing in for nobody, for keys.
func currentUserID(c echo.Context) string {
    if id := UserID(c); id != "" {
        return id
    }
    return "anon"
}
