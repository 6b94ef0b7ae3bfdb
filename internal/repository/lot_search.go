package repository

import (
	"context"
	"strings"
)

// LotSearchQuery defines filters & pagination for searching lots.
type LotSearchQuery struct {
	Name     string
	EVOnly   bool
	Page     int
	PageSize int
}

// PublicLotRow is the sanitized search result returned to guests.
// FreeSlots counts stalls that are physically free right now.
type PublicLotRow struct {
	ID            uint64  `json:"id"`
	Name          string  `json:"name"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	Capacity      uint32  `json:"capacity"`
	HasEVCharging bool    `json:"has_ev_charging"`
	FreeSlots     int64   `json:"free_slots"`
}

// Search returns lots matching the query along with a live count of
// free slots, plus the total number of matches for pagination.
func (r *LotRepo) Search(ctx context.Context, q LotSearchQuery) ([]PublicLotRow, int64, error) {
	where := []string{}
	args := []any{}

	if q.Name != "" {
		where = append(where, "LOWER(l.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.EVOnly {
		where = append(where, "l.has_ev_charging = TRUE")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM parking_lots l WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			l.id,
			l.name,
			l.latitude,
			l.longitude,
			l.capacity,
			l.has_ev_charging,
			COALESCE(SUM(s.is_available), 0) AS free_slots
		FROM parking_lots l
		LEFT JOIN parking_slots s ON s.lot_id = l.id
		WHERE ` + cond + `
		GROUP BY l.id
		ORDER BY l.name ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicLotRow, 0, limit)
	for rows.Next() {
		var d PublicLotRow
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Latitude,
			&d.Longitude,
			&d.Capacity,
			&d.HasEVCharging,
			&d.FreeSlots,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
