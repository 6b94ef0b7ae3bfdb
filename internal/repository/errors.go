// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the booking engine to distinguish between different
// failure scenarios. For example, ErrSlotUnavailable tells the caller
// that another booking won the race for a stall, while
// ErrInsufficientBalance means the wallet debit precondition failed.
// None of these represent partial state: every mutating operation in
// the core runs inside one transaction, so a sentinel error always
// means nothing was committed.
package repository

import "errors"

// ErrValidation is returned for malformed requests (bad duration,
// unknown vehicle type, zero IDs) before any lock is taken.
// Handlers should translate this into an HTTP 400 response.
var ErrValidation = errors.New("validation failed")

// ErrSlotUnavailable is returned when the target slot is not free at
// request time. Terminal: the engine never retries it. Handlers
// should translate this into an HTTP 409 response.
var ErrSlotUnavailable = errors.New("slot unavailable")

// ErrPricingNotConfigured is returned when no slot_pricing row exists
// for the (lot, vehicle_type) of the requested slot. This is a
// configuration problem, not a user error; handlers surface it as
// HTTP 503 so operators notice.
var ErrPricingNotConfigured = errors.New("pricing not configured")

// ErrInsufficientBalance is returned when the wallet holds fewer
// tokens than the computed charge. Handlers should translate this
// into an HTTP 402 response.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrRetryExhausted is returned after bounded internal retries of
// transient storage conflicts (deadlock, lock wait timeout) have all
// failed. Handlers should translate this into an HTTP 503 response.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state, such as cancelling a booking that is already
// COMPLETED, or deleting a slot with a live booking. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels for the individual entities. Repositories
// return these instead of leaking sql.ErrNoRows across layers.
var (
    ErrLotNotFound     = errors.New("lot not found")
    ErrSlotNotFound    = errors.New("slot not found")
    ErrBookingNotFound = errors.New("booking not found")
    ErrUserNotFound    = errors.New("user not found")
)
