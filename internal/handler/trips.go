package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/trip-seat-reservation/internal/model"
    "github.com/iliyamo/trip-seat-reservation/internal/service"
)

// TripHandler serves the public trip catalog.
type TripHandler struct {
    Catalog *service.Catalog
}

func NewTripHandler(c *service.Catalog) *TripHandler {
    return &TripHandler{Catalog: c}
}

type tripSeatsResp struct {
    TripID     string `json:"tripId"`
    TotalSeats int    `json:"totalSeats"`
    Occupied   []int  `json:"occupied"`
    Available  []int  `json:"available"`
}

// Search handles GET /v1/trips/search?from=&to=&date=&type=&page=&page_size=.
// date is required; from and to may be partial names.  count is the total
// number of matches across all pages.
func (h *TripHandler) Search(c echo.Context) error {
    q := service.SearchQuery{
        From: c.QueryParam("from"),
        To:   c.QueryParam("to"),
        Date: strings.TrimSpace(c.QueryParam("date")),
        Type: model.TripType(strings.ToLower(strings.TrimSpace(c.QueryParam("type")))),
    }
    if q.Date == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
    }
    if q.Type != "" && !q.Type.Valid() {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be bus or plane"})
    }
    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    ps, _ := strconv.Atoi(c.QueryParam("page_size"))
    if ps < 1 {
        ps = 20
    }
    if ps > 100 {
        ps = 100
    }

    trips := h.Catalog.Search(q)
    total := len(trips)
    // pages past the end are empty; compare before multiplying so a huge
    // page number cannot overflow.
    lo, hi := total, total
    if page-1 < (total+ps-1)/ps {
        lo = (page - 1) * ps
        hi = min(lo+ps, total)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items":     trips[lo:hi],
        "count":     total,
        "page":      page,
        "page_size": ps,
    })
}

// Get handles GET /v1/trips/:id.
func (h *TripHandler) Get(c echo.Context) error {
    t, ok := h.Catalog.GetByID(c.Param("id"))
    if !ok {
        return writeError(c, service.ErrTripNotFound)
    }
    return c.JSON(http.StatusOK, t)
}

// Seats handles GET /v1/trips/:id/seats.
func (h *TripHandler) Seats(c echo.Context) error {
    t, ok := h.Catalog.GetByID(c.Param("id"))
    if !ok {
        return writeError(c, service.ErrTripNotFound)
    }
    return c.JSON(http.StatusOK, tripSeatsResp{
        TripID:     t.ID,
        TotalSeats: t.TotalSeats,
        Occupied:   t.OccupiedSeats,
        Available:  h.Catalog.GetAvailableSeats(t.ID),
    })
}
