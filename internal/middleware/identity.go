package middleware

// identity.go holds helpers shared across middleware files.  userID is
// used by the rate limiter and response cache when building per-user
// keys; unauthenticated requests share the "guest" identity.

import (
    "fmt"

    "github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the request context.  It
// returns "guest" when no user is authenticated.
func userID(c echo.Context) string {
    v := c.Get("user_id")
    if v == nil {
        return "guest"
    }
    switch id := v.(type) {
    case string:
        if id != "" {
            return id
        }
    case float64:
        return fmt.Sprintf("%.0f", id)
    case uint64:
        return fmt.Sprintf("%d", id)
    }
    return "guest"
}
