// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds published by the booking engine after a transaction
// commits.  Consumers must tolerate unknown kinds.
const (
    EventBookingConfirmed = "booking.confirmed"
    EventBookingCancelled = "booking.cancelled"
    EventBookingCompleted = "booking.completed"
)

// BookingEvent is published when a booking changes state.  It carries
// enough information for downstream consumers to log, notify, or
// trigger analytics without querying the primary database.  The
// payload is identical for every event kind; Kind tells them apart.
type BookingEvent struct {
    Kind          string `json:"kind"`
    BookingID     uint64 `json:"booking_id"`
    UserID        uint64 `json:"user_id"`
    SlotID        uint64 `json:"slot_id"`
    LotID         uint64 `json:"lot_id"`
    SlotLabel     string `json:"slot_label"`
    BillingUnit   string `json:"billing_unit"`
    DurationCount uint32 `json:"duration_count"`
    StartTime     string `json:"start_time"`
    EndTime       string `json:"end_time"`
    AmountTokens  uint32 `json:"amount_tokens"`
    OccurredAt    string `json:"occurred_at"`
}
