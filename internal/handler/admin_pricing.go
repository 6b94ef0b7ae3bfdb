package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
)

type pricingReq struct {
    VehicleType string `json:"vehicle_type"`
    Hourly      uint32 `json:"hourly"`
    Daily       uint32 `json:"daily"`
    Monthly     uint32 `json:"monthly"`
}

type pricingResp struct {
    VehicleType string `json:"vehicle_type"`
    Hourly      uint32 `json:"hourly"`
    Daily       uint32 `json:"daily"`
    Monthly     uint32 `json:"monthly"`
}

// UpsertPricing handles PUT /v1/admin/lots/:id/pricing.  Rates are set
// per vehicle type; an existing row for the same (lot, vehicle_type)
// is overwritten.  Bookings priced before the change keep the amount
// they were charged.
func (h *AdminHandler) UpsertPricing(c echo.Context) error {
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

    var req pricingReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    vt := strings.ToUpper(strings.TrimSpace(req.VehicleType))
    if !model.ValidVehicleType(vt) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_type"})
    }
    if req.Hourly == 0 || req.Daily == 0 || req.Monthly == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "all rates must be positive"})
    }

    p := &model.SlotPricing{
        LotID:       lotID,
        VehicleType: vt,
        Hourly:      req.Hourly,
        Daily:       req.Daily,
        Monthly:     req.Monthly,
    }
    if err := h.PricingRepo.Upsert(c.Request().Context(), p); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save pricing failed"})
    }
    return c.JSON(http.StatusOK, pricingResp{
        VehicleType: p.VehicleType,
        Hourly:      p.Hourly,
        Daily:       p.Daily,
        Monthly:     p.Monthly,
    })
}

// ListPricing handles GET /v1/admin/lots/:id/pricing.
func (h *AdminHandler) ListPricing(c echo.Context) error {
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

    rows, err := h.PricingRepo.ListByLot(c.Request().Context(), lotID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list pricing failed"})
    }
    out := make([]pricingResp, 0, len(rows))
    for _, p := range rows {
        out = append(out, pricingResp{
            VehicleType: p.VehicleType,
            Hourly:      p.Hourly,
            Daily:       p.Daily,
            Monthly:     p.Monthly,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"pricing": out})
}
