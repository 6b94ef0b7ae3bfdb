package handler

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// AdminHandler bundles repositories for lot operators to manage their
// lots, slots and pricing.  All methods assume JWT authentication and
// the ADMIN role check have already been performed by middleware.
type AdminHandler struct {
    LotRepo     *repository.LotRepo
    SlotRepo    *repository.SlotRepo
    PricingRepo *repository.PricingRepo
    BookingRepo *repository.BookingRepo
}

// NewAdminHandler constructs an AdminHandler; all dependencies must be
// non-nil.
func NewAdminHandler(lots *repository.LotRepo, slots *repository.SlotRepo, pricing *repository.PricingRepo, bookings *repository.BookingRepo) *AdminHandler {
    if lots == nil || slots == nil || pricing == nil || bookings == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{
        LotRepo:     lots,
        SlotRepo:    slots,
        PricingRepo: pricing,
        BookingRepo: bookings,
    }
}

// getUserID extracts the user_id stored in the echo context by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter; zero is treated as invalid.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}
