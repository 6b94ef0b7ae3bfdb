package model

import "time"

// Booking lifecycle states.  A booking is inserted as CONFIRMED –
// rejected requests never become rows.  CONFIRMED becomes ACTIVE
// once the window starts, COMPLETED once it elapses, or CANCELLED
// by explicit user action.  Rows are never hard-deleted so the
// audit history survives cancellation.
const (
    BookingConfirmed = "CONFIRMED"
    BookingActive    = "ACTIVE"
    BookingCompleted = "COMPLETED"
    BookingCancelled = "CANCELLED"
)

// Billing units selectable by the caller.  The unit is chosen by
// the driver, not auto-optimized: three HOUR units never collapse
// into a cheaper DAY rate.
const (
    UnitHour  = "HOUR"
    UnitDay   = "DAY"
    UnitMonth = "MONTH"
)

// Booking records a driver's reservation of one slot for one time
// window, together with the amount of tokens charged for it.  A
// booking row is owned exclusively by the booking engine once
// created; every other component treats it as read-only.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – driver who made the booking.
//  SlotID        – slot being occupied.
//  Status        – lifecycle state (see constants above).
//  BillingUnit   – billing granularity (HOUR, DAY or MONTH).
//  DurationCount – number of billing units purchased.
//  StartTime     – start of the occupancy window (UTC).
//  EndTime       – end of the occupancy window (UTC).
//  AmountCharged – tokens debited from the wallet at creation.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Booking struct {
    ID            uint64    // bookings.id
    UserID        uint64    // bookings.user_id
    SlotID        uint64    // bookings.slot_id
    Status        string    // bookings.status
    BillingUnit   string    // bookings.billing_unit
    DurationCount uint32    // bookings.duration_count
    StartTime     time.Time // bookings.start_time
    EndTime       time.Time // bookings.end_time
    AmountCharged uint32    // bookings.amount_charged
    CreatedAt     time.Time // bookings.created_at
    UpdatedAt     time.Time // bookings.updated_at
}
