package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
)

// FavoriteRepo persists driver favorites.  A favorite is just a
// (user, lot) pair; it does not interact with the booking engine.
type FavoriteRepo struct {
    db *sql.DB
}

// NewFavoriteRepo returns a FavoriteRepo bound to the given database.
func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

// Add records a favorite.  Adding the same lot twice is a no-op; the
// unique key on (user_id, lot_id) absorbs the duplicate.
func (r *FavoriteRepo) Add(ctx context.Context, userID, lotID uint64) error {
    _, err := r.db.ExecContext(ctx,
        `INSERT INTO favorites (user_id, lot_id) VALUES (?, ?)`,
        userID, lotID)
    if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
        return nil
    }
    return err
}

// Remove deletes a favorite.  Returns sql.ErrNoRows when the pair was
// not present.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, lotID uint64) error {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM favorites WHERE user_id = ? AND lot_id = ?`,
        userID, lotID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return sql.ErrNoRows
    }
    return nil
}

// ListByUser returns the user's favorites ordered by creation time.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Favorite, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, user_id, lot_id, created_at FROM favorites WHERE user_id = ? ORDER BY created_at DESC`,
        userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*model.Favorite
    for rows.Next() {
        f := new(model.Favorite)
        if err := rows.Scan(&f.ID, &f.UserID, &f.LotID, &f.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, f)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
