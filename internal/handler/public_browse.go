// Package handler exposes HTTP handlers for both authenticated and
// public endpoints.  This file defines the public browsing API: guests
// can list lots, inspect slots and see rates without authentication.
// Sensitive fields (owner IDs, timestamps) are filtered from responses.

package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated
// browsing.  It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
    LotRepo     *repository.LotRepo
    SlotRepo    *repository.SlotRepo
    PricingRepo *repository.PricingRepo
}

// PublicLot is a lot exposed via the public API.  It contains only
// safe fields.
type PublicLot struct {
    ID            uint64  `json:"id"`
    Name          string  `json:"name"`
    Latitude      float64 `json:"latitude"`
    Longitude     float64 `json:"longitude"`
    Capacity      uint32  `json:"capacity"`
    HasEVCharging bool    `json:"has_ev_charging"`
}

// PublicSlot is a slot in public responses; availability is included
// so guests can see free stalls before registering.
type PublicSlot struct {
    ID          uint64 `json:"id"`
    Label       string `json:"label"`
    VehicleType string `json:"vehicle_type"`
    IsEV        bool   `json:"is_ev"`
    PosRow      uint32 `json:"pos_row"`
    PosCol      uint32 `json:"pos_col"`
    IsAvailable bool   `json:"is_available"`
}

// PublicRate is a pricing row in public responses.
type PublicRate struct {
    VehicleType string `json:"vehicle_type"`
    Hourly      uint32 `json:"hourly"`
    Daily       uint32 `json:"daily"`
    Monthly     uint32 `json:"monthly"`
}

// GetPublicLots returns all lots.  Response JSON contains an "items"
// array of PublicLot.
func (h *PublicHandler) GetPublicLots(c echo.Context) error {
    ctx := c.Request().Context()
    lots, err := h.LotRepo.ListAll(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]PublicLot, 0, len(lots))
    for _, l := range lots {
        out = append(out, PublicLot{
            ID:            l.ID,
            Name:          l.Name,
            Latitude:      l.Latitude,
            Longitude:     l.Longitude,
            Capacity:      l.Capacity,
            HasEVCharging: l.HasEVCharging,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicLotSlots returns the slots of one lot.  Response JSON
// contains an "items" array of PublicSlot.
func (h *PublicHandler) GetPublicLotSlots(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    if _, err := h.LotRepo.GetByID(ctx, id); err != nil {
        if errors.Is(err, repository.ErrLotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    slots, err := h.SlotRepo.ListByLot(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]PublicSlot, 0, len(slots))
    for _, s := range slots {
        out = append(out, PublicSlot{
            ID:          s.ID,
            Label:       s.Label,
            VehicleType: s.VehicleType,
            IsEV:        s.IsEV,
            PosRow:      s.PosRow,
            PosCol:      s.PosCol,
            IsAvailable: s.IsAvailable,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// SlotAvailability handles GET /v1/slots/:id/availability.  The flag
// is public so guests can check a stall before registering.
func (h *PublicHandler) SlotAvailability(c echo.Context) error {
    slotID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }
    free, err := h.SlotRepo.IsAvailable(c.Request().Context(), slotID)
    if err != nil {
        if errors.Is(err, repository.ErrSlotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability check failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"slot_id": slotID, "available": free})
}

// GetPublicLotDetail returns one lot with its slots and configured
// rates, so a guest sees the full picture before booking.
func (h *PublicHandler) GetPublicLotDetail(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    l, err := h.LotRepo.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrLotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    slots, err := h.SlotRepo.ListByLot(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    rates, err := h.PricingRepo.ListByLot(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    outSlots := make([]PublicSlot, 0, len(slots))
    for _, s := range slots {
        outSlots = append(outSlots, PublicSlot{
            ID:          s.ID,
            Label:       s.Label,
            VehicleType: s.VehicleType,
            IsEV:        s.IsEV,
            PosRow:      s.PosRow,
            PosCol:      s.PosCol,
            IsAvailable: s.IsAvailable,
        })
    }
    outRates := make([]PublicRate, 0, len(rates))
    for _, p := range rates {
        outRates = append(outRates, PublicRate{
            VehicleType: p.VehicleType,
            Hourly:      p.Hourly,
            Daily:       p.Daily,
            Monthly:     p.Monthly,
        })
    }

    return c.JSON(http.StatusOK, echo.Map{
        "lot": PublicLot{
            ID:            l.ID,
            Name:          l.Name,
            Latitude:      l.Latitude,
            Longitude:     l.Longitude,
            Capacity:      l.Capacity,
            HasEVCharging: l.HasEVCharging,
        },
        "slots":   outSlots,
        "pricing": outRates,
    })
}
