package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/handler"
    "github.com/iliyamo/parking-slot-reservation/internal/middleware"
)

// RegisterDriver registers driver-scoped endpoints under /v1.  All
// routes require a valid JWT and the DRIVER role.  Drivers book and
// cancel slots, inspect their bookings and wallet, and manage
// favorite lots.
func RegisterDriver(e *echo.Echo, b *handler.BookingHandler, w *handler.WalletHandler, f *handler.FavoriteHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("DRIVER"),
    )

    // ---- Bookings ----
    g.POST("/bookings", b.CreateBooking)
    g.GET("/bookings", b.ListMyBookings)
    g.GET("/my-bookings", b.ListMyBookings)
    g.GET("/bookings/:id", b.GetBooking)
    g.POST("/bookings/:id/cancel", b.CancelBooking)
    g.DELETE("/bookings/:id", b.CancelBooking)

    // ---- Wallet ----
    g.GET("/wallet", w.Balance)

    // ---- Favorites ----
    g.GET("/favorites", f.ListFavorites)
    g.PUT("/favorites/:id", f.AddFavorite)
    g.POST("/favorites/:id", f.AddFavorite)
    g.DELETE("/favorites/:id", f.RemoveFavorite)
}
