package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// FavoriteHandler lets drivers bookmark lots.  Favorites carry no
// booking semantics.
type FavoriteHandler struct {
    Favorites *repository.FavoriteRepo
    Lots      *repository.LotRepo
}

func NewFavoriteHandler(f *repository.FavoriteRepo, l *repository.LotRepo) *FavoriteHandler {
    if f == nil || l == nil {
        panic("nil repository passed to NewFavoriteHandler")
    }
    return &FavoriteHandler{Favorites: f, Lots: l}
}

// AddFavorite handles PUT /v1/favorites/:id.  Adding an existing
// favorite is a no-op.
func (h *FavoriteHandler) AddFavorite(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    lotID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    if _, err := h.Lots.GetByID(c.Request().Context(), lotID); err != nil {
        if errors.Is(err, repository.ErrLotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if err := h.Favorites.Add(c.Request().Context(), userID, lotID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save favorite failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// RemoveFavorite handles DELETE /v1/favorites/:id.
func (h *FavoriteHandler) RemoveFavorite(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    lotID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    if err := h.Favorites.Remove(c.Request().Context(), userID, lotID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove favorite failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ListFavorites handles GET /v1/favorites.
func (h *FavoriteHandler) ListFavorites(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    favs, err := h.Favorites.ListByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list favorites failed"})
    }
    out := make([]echo.Map, 0, len(favs))
    for _, f := range favs {
        out = append(out, echo.Map{"lot_id": f.LotID, "created_at": f.CreatedAt})
    }
    return c.JSON(http.StatusOK, echo.Map{"favorites": out})
}
