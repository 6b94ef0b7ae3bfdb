package model

import "time"

// Favorite marks a lot a driver wants quick access to.  Purely a
// convenience record; it carries no booking semantics.
type Favorite struct {
    ID        uint64    // favorites.id
    UserID    uint64    // favorites.user_id
    LotID     uint64    // favorites.lot_id
    CreatedAt time.Time // favorites.created_at
}
