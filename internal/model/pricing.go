package model

import "time"

// SlotPricing holds the token rates for one (lot, vehicle_type)
// combination.  Exactly one row may exist per combination; the
// booking engine fails with a configuration error when the row
// for a requested slot is missing.  Rates are whole tokens –
// the ledger has no fractional units, which keeps pricing free
// of floating-point drift.
//
// Fields:
//  ID          – primary key identifier.
//  LotID       – lot the rates apply to.
//  VehicleType – vehicle type the rates apply to.
//  Hourly      – tokens per hour.
//  Daily       – tokens per day.
//  Monthly     – tokens per month.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type SlotPricing struct {
    ID          uint64    // slot_pricing.id
    LotID       uint64    // slot_pricing.lot_id
    VehicleType string    // slot_pricing.vehicle_type
    Hourly      uint32    // slot_pricing.hourly
    Daily       uint32    // slot_pricing.daily
    Monthly     uint32    // slot_pricing.monthly
    CreatedAt   time.Time // slot_pricing.created_at
    UpdatedAt   time.Time // slot_pricing.updated_at
}
