package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/booking"
    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// BookingHandler exposes the booking engine to drivers.  All methods
// assume JWT authentication and the DRIVER role check have already run;
// every state change goes through the engine, never directly to the
// repositories.
type BookingHandler struct {
    Engine   *booking.Engine
    Bookings *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler; dependencies must be
// non-nil.
func NewBookingHandler(e *booking.Engine, b *repository.BookingRepo) *BookingHandler {
    if e == nil || b == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Engine: e, Bookings: b}
}

type createBookingReq struct {
    SlotID        uint64     `json:"slot_id"`
    VehicleType   string     `json:"vehicle_type"`
    BillingUnit   string     `json:"billing_unit"`
    DurationCount uint32     `json:"duration_count"`
    StartTime     *time.Time `json:"start_time"`
    EndTime       *time.Time `json:"end_time"`
}

type bookingResp struct {
    ID            uint64    `json:"id"`
    SlotID        uint64    `json:"slot_id"`
    Status        string    `json:"status"`
    BillingUnit   string    `json:"billing_unit"`
    DurationCount uint32    `json:"duration_count"`
    StartTime     time.Time `json:"start_time"`
    EndTime       time.Time `json:"end_time"`
    AmountCharged uint32    `json:"amount_charged"`
}

func toBookingResp(b *model.Booking) bookingResp {
    return bookingResp{
        ID:            b.ID,
        SlotID:        b.SlotID,
        Status:        b.Status,
        BillingUnit:   b.BillingUnit,
        DurationCount: b.DurationCount,
        StartTime:     b.StartTime,
        EndTime:       b.EndTime,
        AmountCharged: b.AmountCharged,
    }
}

// bookingError maps engine errors onto HTTP responses.  The mapping is
// deliberate: a refused debit is 402, a lost slot race is 409, and a
// lot without rates is 503 since only operator action can fix it.
func bookingError(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrValidation):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrSlotUnavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "slot is not available"})
    case errors.Is(err, repository.ErrInsufficientBalance):
        return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "insufficient token balance"})
    case errors.Is(err, repository.ErrPricingNotConfigured):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "pricing not configured for this lot"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not cancellable in its current state"})
    case errors.Is(err, repository.ErrSlotNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
    case errors.Is(err, repository.ErrBookingNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
    case errors.Is(err, repository.ErrRetryExhausted):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary contention, retry shortly"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking operation failed"})
}

// CreateBooking handles POST /v1/bookings.  The reservation and the
// settlement are one atomic operation in the engine; a response other
// than 201 means nothing was persisted.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createBookingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    spec := booking.DurationSpec{
        Unit:  strings.ToUpper(strings.TrimSpace(req.BillingUnit)),
        Count: req.DurationCount,
    }
    if req.StartTime != nil {
        spec.Start = *req.StartTime
    }
    if req.EndTime != nil {
        spec.End = *req.EndTime
    }

    b, err := h.Engine.Create(c.Request().Context(), userID, req.SlotID, req.VehicleType, spec)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusCreated, toBookingResp(b))
}

// CancelBooking handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookingID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    b, err := h.Engine.Cancel(c.Request().Context(), userID, bookingID)
    if err != nil {
        return bookingError(c, err)
    }
    return c.JSON(http.StatusOK, toBookingResp(b))
}

// ListMyBookings handles GET /v1/bookings.  An optional status query
// parameter filters by lifecycle state (comma-separated).
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    var statuses []string
    if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
        for _, s := range strings.Split(raw, ",") {
            s = strings.ToUpper(strings.TrimSpace(s))
            switch s {
            case model.BookingConfirmed, model.BookingActive, model.BookingCompleted, model.BookingCancelled:
                statuses = append(statuses, s)
            default:
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status filter"})
            }
        }
    }

    details, err := h.Bookings.ListByUser(c.Request().Context(), userID, statuses)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}

// GetBooking handles GET /v1/bookings/:id.  Ownership is enforced in
// the query; a foreign booking is indistinguishable from a missing one.
func (h *BookingHandler) GetBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    bookingID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    d, err := h.Bookings.GetDetailForUser(c.Request().Context(), bookingID, userID)
    if err != nil {
        if errors.Is(err, repository.ErrBookingNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load booking failed"})
    }
    return c.JSON(http.StatusOK, d)
}
