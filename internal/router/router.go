package router // router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/handler"
    "github.com/iliyamo/parking-slot-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth, while the protected profile endpoint
// lives under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Refresh rotates the refresh token; refresh-access does not.
    g.POST("/refresh", a.Refresh)
    g.POST("/refresh-access", a.RefreshAccess)
    // Logout works without the JWT middleware so a session can be
    // closed with just a refresh token.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole("ADMIN", "DRIVER"))
    auth.GET("/me", a.Me)

    // Alias kept for clients that call /v1/logout directly.
    e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints.  The
// cache middleware, when non-nil, wraps these read-only routes; no
// authenticated route is ever cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
    mws := []echo.MiddlewareFunc{}
    if cache != nil {
        mws = append(mws, cache)
    }
    e.GET("/v1/lots", p.GetPublicLots, mws...)
    e.GET("/v1/lots/search", p.SearchLots, mws...)
    e.GET("/v1/search/lots", p.SearchLots, mws...)
    e.GET("/v1/lots/:id", p.GetPublicLotDetail, mws...)
    e.GET("/v1/lots/:id/slots", p.GetPublicLotSlots, mws...)
    // The availability flag changes with every booking, so it stays
    // out of the response cache.
    e.GET("/v1/slots/:id/availability", p.SlotAvailability)
}

// RegisterInternal registers operator endpoints that are not part of
// the public surface.  The sweep trigger requires the ADMIN role.
func RegisterInternal(e *echo.Echo, s *handler.SweepHandler, jwtSecret string) {
    g := e.Group(
        "/v1/internal",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )
    g.POST("/sweep", s.Sweep)
}
