package model

import "time"

// Vehicle types accepted for slots and pricing rows.  The booking
// engine rejects any other value before opening a transaction.
const (
    VehicleCar        = "CAR"
    VehicleMotorcycle = "MOTORCYCLE"
    VehicleEV         = "EV"
)

// ValidVehicleType reports whether s is one of the known vehicle
// type constants.  Callers normalize to upper case before calling.
func ValidVehicleType(s string) bool {
    switch s {
    case VehicleCar, VehicleMotorcycle, VehicleEV:
        return true
    }
    return false
}

// Slot describes a single physical parking space within a lot.
// Slots are uniquely identified by their lot and label.  PosRow
// and PosCol place the slot on the UI layout grid.  IsAvailable
// is a derived flag the booking engine keeps consistent with
// committed bookings: it is true iff no CONFIRMED or ACTIVE
// booking currently covers the slot.
//
// Fields:
//  ID          – primary key identifier.
//  LotID       – lot to which this slot belongs.
//  Label       – human-readable stall label (e.g. "B12").
//  VehicleType – vehicle type the slot accommodates.
//  IsEV        – whether the slot has an EV charging point.
//  PosRow      – row position on the layout grid.
//  PosCol      – column position on the layout grid.
//  IsAvailable – whether the slot is physically free right now.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Slot struct {
    ID          uint64    // parking_slots.id
    LotID       uint64    // parking_slots.lot_id
    Label       string    // parking_slots.label
    VehicleType string    // parking_slots.vehicle_type
    IsEV        bool      // parking_slots.is_ev
    PosRow      uint32    // parking_slots.pos_row
    PosCol      uint32    // parking_slots.pos_col
    IsAvailable bool      // parking_slots.is_available
    CreatedAt   time.Time // parking_slots.created_at
    UpdatedAt   time.Time // parking_slots.updated_at
}
