package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/handler"
    "github.com/iliyamo/parking-slot-reservation/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// Admins manage their own lots, slots and pricing, and can inspect
// every booking of their lots.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )

    // ---- Lots ----
    g.POST("/lots", a.CreateLot)
    g.GET("/lots", a.ListMyLots)
    g.PUT("/lots/:id", a.UpdateLot)
    g.PATCH("/lots/:id", a.UpdateLot)
    g.DELETE("/lots/:id", a.DeleteLot)

    // ---- Slots ----
    g.POST("/lots/:id/slots", a.CreateSlot)
    g.GET("/lots/:id/slots", a.ListSlots)
    g.PUT("/slots/:id", a.UpdateSlot)
    g.PATCH("/slots/:id", a.UpdateSlot)
    g.DELETE("/slots/:id", a.DeleteSlot)

    // ---- Pricing ----
    g.PUT("/lots/:id/pricing", a.UpsertPricing)
    g.GET("/lots/:id/pricing", a.ListPricing)

    // ---- Bookings ----
    g.GET("/lots/:id/bookings", a.ListLotBookings)
}
