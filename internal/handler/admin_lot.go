package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

type lotReq struct {
    Name          string  `json:"name"`
    Latitude      float64 `json:"latitude"`
    Longitude     float64 `json:"longitude"`
    Capacity      uint32  `json:"capacity"`
    HasEVCharging bool    `json:"has_ev_charging"`
}

type lotResp struct {
    ID            uint64  `json:"id"`
    Name          string  `json:"name"`
    Latitude      float64 `json:"latitude"`
    Longitude     float64 `json:"longitude"`
    Capacity      uint32  `json:"capacity"`
    HasEVCharging bool    `json:"has_ev_charging"`
}

func toLotResp(l *model.Lot) lotResp {
    return lotResp{
        ID:            l.ID,
        Name:          l.Name,
        Latitude:      l.Latitude,
        Longitude:     l.Longitude,
        Capacity:      l.Capacity,
        HasEVCharging: l.HasEVCharging,
    }
}

// CreateLot handles POST /v1/admin/lots.
func (h *AdminHandler) CreateLot(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req lotReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }

    l := &model.Lot{
        OwnerID:       ownerID,
        Name:          req.Name,
        Latitude:      req.Latitude,
        Longitude:     req.Longitude,
        Capacity:      req.Capacity,
        HasEVCharging: req.HasEVCharging,
    }
    if err := h.LotRepo.Create(c.Request().Context(), l); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create lot failed"})
    }
    return c.JSON(http.StatusCreated, toLotResp(l))
}

// ListMyLots handles GET /v1/admin/lots.
func (h *AdminHandler) ListMyLots(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    lots, err := h.LotRepo.ListByOwner(c.Request().Context(), ownerID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list lots failed"})
    }
    out := make([]lotResp, 0, len(lots))
    for _, l := range lots {
        out = append(out, toLotResp(l))
    }
    return c.JSON(http.StatusOK, echo.Map{"lots": out})
}

// UpdateLot handles PUT /v1/admin/lots/:id.
func (h *AdminHandler) UpdateLot(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    var req lotReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }

    l := &model.Lot{
        ID:            id,
        Name:          req.Name,
        Latitude:      req.Latitude,
        Longitude:     req.Longitude,
        Capacity:      req.Capacity,
        HasEVCharging: req.HasEVCharging,
    }
    if err := h.LotRepo.Update(c.Request().Context(), l, ownerID); err != nil {
        switch {
        case errors.Is(err, repository.ErrLotNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update lot failed"})
    }
    return c.JSON(http.StatusOK, toLotResp(l))
}

// DeleteLot handles DELETE /v1/admin/lots/:id.  A lot with live
// bookings cannot be removed.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    if err := h.LotRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID); err != nil {
        switch {
        case errors.Is(err, repository.ErrLotNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        case errors.Is(err, repository.ErrForbidden):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        case errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "lot has active bookings"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete lot failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
