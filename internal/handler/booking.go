package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/trip-seat-reservation/internal/middleware"
    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/service"
)

// BookingHandler serves reservation creation, listing and cancellation.
type BookingHandler struct {
    Ledger   *service.Ledger
    Identity *service.Identity
    Purge    Purger
}

func NewBookingHandler(l *service.Ledger, id *service.Identity, p Purger) *BookingHandler {
    return &BookingHandler{Ledger: l, Identity: id, Purge: p}
}

// createReservationReq carries the caller's seat choice.  Passenger fields
// default to the caller's profile when left empty.
type createReservationReq struct {
    TripID         string `json:"tripId"`
    Seats          []int  `json:"seats"`
    PassengerName  string `json:"passengerName"`
    PassengerPhone string `json:"passengerPhone"`
    PassengerEmail string `json:"passengerEmail"`
}

// Create handles POST /v1/reservations.
func (h *BookingHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if u, ok := h.Identity.GetByID(uid); ok {
        if req.PassengerName == "" {
            req.PassengerName = u.Name
        }
        if req.PassengerPhone == "" {
            req.PassengerPhone = u.Phone
        }
        if req.PassengerEmail == "" {
            req.PassengerEmail = u.Email
        }
    }
    r, err := h.Ledger.BookSeats(c.Request().Context(), service.ReservationRequest{
        TripID:         req.TripID,
        UserID:         uid,
        PassengerName:  req.PassengerName,
        PassengerPhone: req.PassengerPhone,
        PassengerEmail: req.PassengerEmail,
    }, req.Seats)
    if err != nil {
        return writeError(c, err)
    }
    h.Purge.purge(c)
    return c.JSON(http.StatusCreated, r)
}

// Mine handles GET /v1/my-reservations, newest first.
func (h *BookingHandler) Mine(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    items := h.Ledger.GetUserReservations(uid)
    return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// owned loads reservation :id and checks the caller may see it.  On
// failure it has already written the response.
func (h *BookingHandler) owned(c echo.Context) (model.ReservationWithTrip, bool, error) {
    r, ok := h.Ledger.GetWithTrip(c.Param("id"))
    if !ok {
        return r, false, writeError(c, service.ErrReservationNotFound)
    }
    if r.UserID != middleware.UserID(c) && middleware.Role(c) != string(model.RoleAdmin) {
        return r, false, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return r, true, nil
}

// Get handles GET /v1/reservations/:id.
func (h *BookingHandler) Get(c echo.Context) error {
    r, ok, err := h.owned(c)
    if !ok {
        return err
    }
    return c.JSON(http.StatusOK, r)
}

// Cancel handles POST /v1/reservations/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
    r, ok, err := h.owned(c)
    if !ok {
        return err
    }
    if err := h.Ledger.CancelReservation(c.Request().Context(), r.ID); err != nil {
        return writeError(c, err)
    }
    h.Purge.purge(c)
    out, _ := h.Ledger.GetWithTrip(r.ID)
    return c.JSON(http.StatusOK, out)
}
