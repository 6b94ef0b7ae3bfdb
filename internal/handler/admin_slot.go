package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

type slotReq struct {
    Label       string `json:"label"`
    VehicleType string `json:"vehicle_type"`
    IsEV        bool   `json:"is_ev"`
    PosRow      uint32 `json:"pos_row"`
    PosCol      uint32 `json:"pos_col"`
}

type slotResp struct {
    ID          uint64 `json:"id"`
    LotID       uint64 `json:"lot_id"`
    Label       string `json:"label"`
    VehicleType string `json:"vehicle_type"`
    IsEV        bool   `json:"is_ev"`
    PosRow      uint32 `json:"pos_row"`
    PosCol      uint32 `json:"pos_col"`
    IsAvailable bool   `json:"is_available"`
}

func toSlotResp(s *model.Slot) slotResp {
    return slotResp{
        ID:          s.ID,
        LotID:       s.LotID,
        Label:       s.Label,
        VehicleType: s.VehicleType,
        IsEV:        s.IsEV,
        PosRow:      s.PosRow,
        PosCol:      s.PosCol,
        IsAvailable: s.IsAvailable,
    }
}

// ownLot verifies that lotID belongs to ownerID and maps the repo
// errors onto an HTTP response.  Returns nil,false when the response
// has already been written.
func (h *AdminHandler) ownLot(c echo.Context, lotID, ownerID uint64) (*model.Lot, bool) {
    l, err := h.LotRepo.GetByIDAndOwner(c.Request().Context(), lotID, ownerID)
    if err != nil {
        switch {
        case errors.Is(err, repository.ErrLotNotFound):
            _ = c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
        case errors.Is(err, repository.ErrForbidden):
            _ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
        default:
            _ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        return nil, false
    }
    return l, true
}

// CreateSlot handles POST /v1/admin/lots/:id/slots.
func (h *AdminHandler) CreateSlot(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    lotID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    if _, ok := h.ownLot(c, lotID, ownerID); !ok {
        return nil
    }

    var req slotReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Label = strings.TrimSpace(req.Label)
    vt := strings.ToUpper(strings.TrimSpace(req.VehicleType))
    if req.Label == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "label is required"})
    }
    if !model.ValidVehicleType(vt) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_type"})
    }

    s := &model.Slot{
        LotID:       lotID,
        Label:       req.Label,
        VehicleType: vt,
        IsEV:        req.IsEV || vt == model.VehicleEV,
        PosRow:      req.PosRow,
        PosCol:      req.PosCol,
    }
    if err := h.SlotRepo.Create(c.Request().Context(), s); err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return c.JSON(http.StatusConflict, echo.Map{"error": "label already used in this lot"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create slot failed"})
    }
    return c.JSON(http.StatusCreated, toSlotResp(s))
}

// ListSlots handles GET /v1/admin/lots/:id/slots.
func (h *AdminHandler) ListSlots(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    lotID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
    }
    if _, ok := h.ownLot(c, lotID, ownerID); !ok {
        return nil
    }
    slots, err := h.SlotRepo.ListByLot(c.Request().Context(), lotID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list slots failed"})
    }
    out := make([]slotResp, 0, len(slots))
    for _, s := range slots {
        out = append(out, toSlotResp(s))
    }
    return c.JSON(http.StatusOK, echo.Map{"slots": out})
}

// UpdateSlot handles PUT /v1/admin/slots/:id.  Availability is owned
// by the booking engine and is deliberately not updatable here.
func (h *AdminHandler) UpdateSlot(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    slotID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }

    s, err := h.SlotRepo.GetByID(c.Request().Context(), slotID)
    if err != nil {
        if errors.Is(err, repository.ErrSlotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if _, ok := h.ownLot(c, s.LotID, ownerID); !ok {
        return nil
    }

    var req slotReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Label = strings.TrimSpace(req.Label); req.Label != "" {
        s.Label = req.Label
    }
    if vt := strings.ToUpper(strings.TrimSpace(req.VehicleType)); vt != "" {
        if !model.ValidVehicleType(vt) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_type"})
        }
        s.VehicleType = vt
    }
    s.IsEV = req.IsEV || s.VehicleType == model.VehicleEV
    s.PosRow = req.PosRow
    s.PosCol = req.PosCol

    if err := h.SlotRepo.Update(c.Request().Context(), s); err != nil {
        if errors.Is(err, repository.ErrSlotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update slot failed"})
    }
    return c.JSON(http.StatusOK, toSlotResp(s))
}

// DeleteSlot handles DELETE /v1/admin/slots/:id.  A slot with a live
// booking cannot be removed.
func (h *AdminHandler) DeleteSlot(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    slotID, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
    }

    s, err := h.SlotRepo.GetByID(c.Request().Context(), slotID)
    if err != nil {
        if errors.Is(err, repository.ErrSlotNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if _, ok := h.ownLot(c, s.LotID, ownerID); !ok {
        return nil
    }

    if err := h.SlotRepo.Delete(c.Request().Context(), slotID); err != nil {
        switch {
        case errors.Is(err, repository.ErrSlotNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
        case errors.Is(err, repository.ErrConflict):
            return c.JSON(http.StatusConflict, echo.Map{"error": "slot has active bookings"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete slot failed"})
    }
    return c.NoContent(http.StatusNoContent)
}
