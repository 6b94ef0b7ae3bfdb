package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// ListLotBookings handles GET /v1/admin/lots/:id/bookings.  Owners see
// every booking of their lot including CANCELLED and COMPLETED rows,
// since nothing is ever hard-deleted.
func (h *AdminHandler) ListLotBookings(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    lotID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }

    details, err := h.BookingRepo.ListByLotForOwner(c.Request().Context(), lotID, ownerID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrLotNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": details})
}
