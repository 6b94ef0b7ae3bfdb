package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/booking"
)

// SweepHandler exposes the clock-driven booking transitions as an
// internal endpoint for cron-style triggers.  The same engine method
// also runs on a ticker inside cmd/server, so the endpoint exists for
// operators who want an external scheduler instead.
type SweepHandler struct {
    Engine *booking.Engine
}

func NewSweepHandler(e *booking.Engine) *SweepHandler {
    if e == nil {
        panic("nil engine passed to NewSweepHandler")
    }
    return &SweepHandler{Engine: e}
}

// Sweep handles POST /v1/internal/sweep.
func (h *SweepHandler) Sweep(c echo.Context) error {
    activated, completed, err := h.Engine.CompleteElapsed(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "activated": activated,
        "completed": completed,
    })
}
