package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/trip-seat-reservation/internal/middleware"
    "github.com/iliyamo/trip-seat-reservation/internal/service"
    "github.com/iliyamo/trip-seat-reservation/internal/storage"
)

// Purger drops cached search responses after trips or occupancy change.
type Purger func(ctx context.Context) error

func (p Purger) purge(c echo.Context) {
    if p == nil {
        return
    }
    if err := p(c.Request().Context()); err != nil {
        c.Logger().Warnf("cache purge failed: %v", err)
    }
}

// getUserID returns the authenticated user id set by JWTAuth.
func getUserID(c echo.Context) (string, error) {
    if id := middleware.UserID(c); id != "" {
        return id, nil
    }
    return "", errors.New("invalid user_id in context")
}

// writeError maps service errors onto HTTP responses.
func writeError(c echo.Context, err error) error {
    var su *service.SeatsUnavailableError
    var ve *service.ValidationError
    switch {
    case errors.As(err, &su):
        return c.JSON(http.StatusConflict, echo.Map{"error": "seats unavailable", "seats": su.Seats})
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
    case errors.Is(err, service.ErrDuplicateEmail):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    case errors.Is(err, service.ErrInvalidCredentials):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    case errors.Is(err, service.ErrUserNotFound),
        errors.Is(err, service.ErrTripNotFound),
        errors.Is(err, service.ErrReservationNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrNoSeatsSelected),
        errors.Is(err, service.ErrSelectionFull):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, service.ErrAlreadyCancelled),
        errors.Is(err, service.ErrTripHasActiveReservations):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, storage.ErrIO):
        c.Logger().Errorf("storage failure: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage unavailable"})
    }
    c.Logger().Errorf("unhandled error: %v", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
