package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/repository"
)

// SearchLots handles GET /v1/lots/search.  Filters: name (substring,
// case-insensitive), ev=true (EV charging only); paginated.  Each row
// carries a live count of free slots.
func (h *PublicHandler) SearchLots(c echo.Context) error {
    name := strings.TrimSpace(c.QueryParam("name"))
    evOnly := strings.EqualFold(strings.TrimSpace(c.QueryParam("ev")), "true")

    page, _ := strconv.Atoi(c.QueryParam("page"))
    if page < 1 {
        page = 1
    }
    ps, _ := strconv.Atoi(c.QueryParam("page_size"))
    if ps < 1 {
        ps = 20
    }
    if ps > 100 {
        ps = 100
    }

    q := repository.LotSearchQuery{
        Name:     name,
        EVOnly:   evOnly,
        Page:     page,
        PageSize: ps,
    }

    items, total, err := h.LotRepo.Search(c.Request().Context(), q)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{
            "error":   "database_error",
            "message": err.Error(),
        })
    }

    return c.JSON(http.StatusOK, echo.Map{
        "data":      items,
        "total":     total,
        "page":      page,
        "page_size": ps,
    })
}
