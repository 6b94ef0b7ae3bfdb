package model

import "time"

// Lot represents a managed parking facility owned by an admin
// account.  A lot contains many slots.  This struct corresponds
// to a row in the `parking_lots` table.
//
// Fields:
//  ID            – primary key identifier.
//  OwnerID       – user ID of the administrating account.
//  Name          – unique name of the lot per owner.
//  Latitude      – latitude of the lot entrance.
//  Longitude     – longitude of the lot entrance.
//  Capacity      – total number of physical slots.
//  HasEVCharging – whether the lot offers EV charging points.
//  CreatedAt     – timestamp when the lot was created.
//  UpdatedAt     – timestamp of last update.
type Lot struct {
    ID            uint64    // parking_lots.id
    OwnerID       uint64    // parking_lots.owner_id
    Name          string    // parking_lots.name
    Latitude      float64   // parking_lots.latitude
    Longitude     float64   // parking_lots.longitude
    Capacity      uint32    // parking_lots.capacity
    HasEVCharging bool      // parking_lots.has_ev_charging
    CreatedAt     time.Time // parking_lots.created_at
    UpdatedAt     time.Time // parking_lots.updated_at
}
