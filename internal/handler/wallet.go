package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// WalletHandler exposes read access to the token wallet.  Balances
// change only through the booking engine (debits and refunds) and the
// signup bonus; there is no top-up endpoint.
type WalletHandler struct {
    Wallet *repository.WalletRepo
}

func NewWalletHandler(w *repository.WalletRepo) *WalletHandler {
    if w == nil {
        panic("nil repository passed to NewWalletHandler")
    }
    return &WalletHandler{Wallet: w}
}

// Balance handles GET /v1/wallet.
func (h *WalletHandler) Balance(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    balance, err := h.Wallet.Balance(c.Request().Context(), userID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load balance failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"tokens": balance})
}
