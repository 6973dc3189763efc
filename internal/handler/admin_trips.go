package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/service"
)

// AdminTripHandler lets admins manage the timetable.  Deletion goes
// through the ledger so trips with active bookings are kept.
type AdminTripHandler struct {
    Catalog *service.Catalog
    Ledger  *service.Ledger
    Purge   Purger
}

func NewAdminTripHandler(c *service.Catalog, l *service.Ledger, p Purger) *AdminTripHandler {
    return &AdminTripHandler{Catalog: c, Ledger: l, Purge: p}
}

// Create handles POST /v1/admin/trips.
func (h *AdminTripHandler) Create(c echo.Context) error {
    var d model.TripDraft
    if err := c.Bind(&d); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    t, err := h.Catalog.AddTrip(c.Request().Context(), d)
    if err != nil {
        return writeError(c, err)
    }
    h.Purge.purge(c)
    return c.JSON(http.StatusCreated, t)
}

// Update handles PATCH /v1/admin/trips/:id.
func (h *AdminTripHandler) Update(c echo.Context) error {
    var p model.TripPatch
    if err := c.Bind(&p); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    t, err := h.Catalog.UpdateTrip(c.Request().Context(), c.Param("id"), p)
    if err != nil {
        return writeError(c, err)
    }
    h.Purge.purge(c)
    return c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /v1/admin/trips/:id.
func (h *AdminTripHandler) Delete(c echo.Context) error {
    if err := h.Ledger.RemoveTrip(c.Request().Context(), c.Param("id")); err != nil {
        return writeError(c, err)
    }
    h.Purge.purge(c)
    return c.NoContent(http.StatusNoContent)
}

// Audit handles GET /v1/admin/audit.
func (h *AdminTripHandler) Audit(c echo.Context) error {
    drift := h.Ledger.Audit()
    return c.JSON(http.StatusOK, echo.Map{"consistent": len(drift) == 0, "drift": drift})
}
