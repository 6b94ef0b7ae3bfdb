package booking

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
    "github.com/iliyamo/parking-slot-reservation/internal/queue"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
    "github.com/iliyamo/parking-slot-reservation/internal/service"
)

// Engine is the booking state machine.  It owns the only code paths
// that create bookings, move tokens and flip slot availability, and
// it runs each of those as one database transaction: availability
// check, pricing, wallet debit and booking write commit together or
// not at all.  The storage handle is injected explicitly; the engine
// never reaches for a global pool.
//
// Locking discipline: every transaction locks rows in the canonical
// order booking → slot → wallet (Create starts at slot).  One order
// everywhere means concurrent operations can block briefly but never
// deadlock on each other by design of the schedule; if the database
// still reports a deadlock or lock wait timeout, the whole attempt
// is retried up to maxAttempts times before ErrRetryExhausted.
type Engine struct {
    db       *sql.DB
    slots    *repository.SlotRepo
    pricing  *repository.PricingRepo
    wallet   *repository.WalletRepo
    bookings *repository.BookingRepo
    notifier service.Notifier

    // now is replaceable in tests.
    now func() time.Time
}

// maxAttempts bounds internal retries of transient storage conflicts.
// User-visible conflicts (SlotUnavailable, InsufficientBalance) are
// terminal and never retried.
const maxAttempts = 3

// NewEngine constructs the booking engine.  All dependencies must be
// non-nil.
func NewEngine(db *sql.DB, slots *repository.SlotRepo, pricing *repository.PricingRepo,
    wallet *repository.WalletRepo, bookings *repository.BookingRepo, notifier service.Notifier) *Engine {
    if db == nil || slots == nil || pricing == nil || wallet == nil || bookings == nil || notifier == nil {
        panic("nil dependency passed to NewEngine")
    }
    return &Engine{
        db:       db,
        slots:    slots,
        pricing:  pricing,
        wallet:   wallet,
        bookings: bookings,
        notifier: notifier,
        now:      time.Now,
    }
}

// retryable reports whether err is a transient MySQL conflict worth
// retrying: 1213 (deadlock victim) or 1205 (lock wait timeout).
func retryable(err error) bool {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number == 1213 || me.Number == 1205
    }
    return false
}

// withRetry runs fn up to maxAttempts times, retrying only transient
// conflicts.  When attempts run out the last transient error is
// replaced by ErrRetryExhausted so callers see a stable sentinel.
func (e *Engine) withRetry(ctx context.Context, op string, fn func() error) error {
    var err error
    for attempt := 1; attempt <= maxAttempts; attempt++ {
        err = fn()
        if err == nil || !retryable(err) {
            return err
        }
        log.Printf("booking: %s attempt %d/%d hit transient conflict: %v", op, attempt, maxAttempts, err)
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
        }
    }
    return repository.ErrRetryExhausted
}

// Create reserves a slot for a driver and settles the charge, all as
// one atomic unit: verify the slot is free, price the request, debit
// the wallet, insert the booking as CONFIRMED and flip the slot to
// occupied.  A failure at any sub-step rolls everything back, so a
// refused debit can never leave a stall falsely occupied.  Validation
// failures are rejected before any lock is taken and are never
// persisted.
func (e *Engine) Create(ctx context.Context, userID, slotID uint64, vehicleType string, spec DurationSpec) (*model.Booking, error) {
    if userID == 0 || slotID == 0 {
        return nil, repository.ErrValidation
    }
    vehicleType = strings.ToUpper(strings.TrimSpace(vehicleType))
    if !model.ValidVehicleType(vehicleType) {
        return nil, repository.ErrValidation
    }
    start, end, count, err := spec.resolve(e.now().UTC())
    if err != nil {
        return nil, err
    }

    var created *model.Booking
    err = e.withRetry(ctx, "create", func() error {
        b, txErr := e.createTx(ctx, userID, slotID, vehicleType, spec.Unit, count, start, end)
        created = b
        return txErr
    })
    if err != nil {
        return nil, err
    }

    e.dispatch(ctx, queue.EventBookingConfirmed, created)
    return created, nil
}

func (e *Engine) createTx(ctx context.Context, userID, slotID uint64, vehicleType, unit string, count uint32, start, end time.Time) (*model.Booking, error) {
    tx, err := e.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // (a) lock the slot and verify it is physically free right now.
    slot, err := e.slots.GetForUpdateTx(ctx, tx, slotID)
    if err != nil {
        return nil, err
    }
    if !slot.IsAvailable {
        return nil, repository.ErrSlotUnavailable
    }
    if slot.VehicleType != vehicleType {
        return nil, repository.ErrValidation
    }

    // (b) price the request from the lot's configured rates.
    rates, err := e.pricing.GetTx(ctx, tx, slot.LotID, vehicleType)
    if err != nil {
        return nil, err
    }
    charge, err := Charge(rates, unit, count)
    if err != nil {
        return nil, err
    }

    // (c) debit the wallet; the conditional UPDATE enforces the
    // non-negative invariant without a read-then-write gap.
    if _, err := e.wallet.DebitTx(ctx, tx, userID, charge); err != nil {
        return nil, err
    }

    // (d) persist the booking as CONFIRMED.
    b := &model.Booking{
        UserID:        userID,
        SlotID:        slotID,
        Status:        model.BookingConfirmed,
        BillingUnit:   unit,
        DurationCount: count,
        StartTime:     start,
        EndTime:       end,
        AmountCharged: charge,
    }
    if err := e.bookings.CreateTx(ctx, tx, b); err != nil {
        return nil, err
    }

    // (e) mark the stall occupied.
    if err := e.slots.SetAvailabilityTx(ctx, tx, slotID, false); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return b, nil
}

// Cancel transitions a CONFIRMED or ACTIVE booking owned by userID to
// CANCELLED, frees the slot and refunds the wallet.  A CONFIRMED
// booking is refunded in full; an ACTIVE one frees the slot without a
// refund.  Cancellation is a status change, not a row removal, so
// the audit history is preserved.
func (e *Engine) Cancel(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
    if userID == 0 || bookingID == 0 {
        return nil, repository.ErrValidation
    }
    var cancelled *model.Booking
    err := e.withRetry(ctx, "cancel", func() error {
        b, txErr := e.cancelTx(ctx, userID, bookingID)
        cancelled = b
        return txErr
    })
    if err != nil {
        return nil, err
    }
    e.dispatch(ctx, queue.EventBookingCancelled, cancelled)
    return cancelled, nil
}

func (e *Engine) cancelTx(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
    tx, err := e.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := e.bookings.GetForUpdateTx(ctx, tx, bookingID)
    if err != nil {
        return nil, err
    }
    if b.UserID != userID {
        return nil, repository.ErrForbidden
    }
    if b.Status != model.BookingConfirmed && b.Status != model.BookingActive {
        return nil, repository.ErrConflict
    }

    // Lock the slot before touching the wallet (canonical order).
    if _, err := e.slots.GetForUpdateTx(ctx, tx, b.SlotID); err != nil {
        return nil, err
    }

    // A CONFIRMED booking has not been activated by the sweeper yet,
    // so the full charge comes back and the wallet returns to its
    // pre-booking balance. Once ACTIVE the stay has begun and nothing
    // is refunded.
    var refund uint32
    if b.Status == model.BookingConfirmed {
        refund = b.AmountCharged
    }

    if err := e.bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingCancelled); err != nil {
        return nil, err
    }
    if refund > 0 {
        if _, err := e.wallet.CreditTx(ctx, tx, userID, refund); err != nil {
            return nil, err
        }
    }
    if err := e.slots.SetAvailabilityTx(ctx, tx, b.SlotID, true); err != nil {
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    b.Status = model.BookingCancelled
    return b, nil
}

// CompleteElapsed advances the clock-driven transitions: CONFIRMED
// bookings whose window has begun become ACTIVE, and CONFIRMED or
// ACTIVE bookings whose window has elapsed become COMPLETED with
// their slot freed and no refund.  It is invoked by the periodic
// sweeper in cmd/server and by the internal sweep endpoint; both are
// stand-ins for an external cron trigger.  Returns the number of
// bookings activated and completed.
func (e *Engine) CompleteElapsed(ctx context.Context) (activated, completed int, err error) {
    var done []*model.Booking
    err = e.withRetry(ctx, "sweep", func() error {
        var txErr error
        activated, done, txErr = e.sweepTx(ctx)
        return txErr
    })
    if err != nil {
        return 0, 0, err
    }
    for _, b := range done {
        e.dispatch(ctx, queue.EventBookingCompleted, b)
    }
    return activated, len(done), nil
}

func (e *Engine) sweepTx(ctx context.Context) (int, []*model.Booking, error) {
    tx, err := e.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    now := e.now().UTC()

    startable, err := e.bookings.StartableTx(ctx, tx, now)
    if err != nil {
        return 0, nil, err
    }
    for _, b := range startable {
        if err := e.bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingActive); err != nil {
            return 0, nil, err
        }
    }

    due, err := e.bookings.DueTx(ctx, tx, now)
    if err != nil {
        return 0, nil, err
    }
    for _, b := range due {
        if _, err := e.slots.GetForUpdateTx(ctx, tx, b.SlotID); err != nil {
            return 0, nil, err
        }
        if err := e.bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingCompleted); err != nil {
            return 0, nil, err
        }
        if err := e.slots.SetAvailabilityTx(ctx, tx, b.SlotID, true); err != nil {
            return 0, nil, err
        }
        b.Status = model.BookingCompleted
    }

    if err := tx.Commit(); err != nil {
        return 0, nil, err
    }
    committed = true
    return len(startable), due, nil
}

// SlotAvailability answers whether slotID is physically free right
// now.  Read-only; no locks.
func (e *Engine) SlotAvailability(ctx context.Context, slotID uint64) (bool, error) {
    return e.slots.IsAvailable(ctx, slotID)
}

// dispatch informs the notifier after a commit.  Failures are logged
// and dropped: the transaction outcome is already durable and must
// not be affected.
func (e *Engine) dispatch(ctx context.Context, kind string, b *model.Booking) {
    if b == nil {
        return
    }
    ev := queue.BookingEvent{
        Kind:          kind,
        BookingID:     b.ID,
        UserID:        b.UserID,
        SlotID:        b.SlotID,
        BillingUnit:   b.BillingUnit,
        DurationCount: b.DurationCount,
        StartTime:     b.StartTime.UTC().Format(time.RFC3339),
        EndTime:       b.EndTime.UTC().Format(time.RFC3339),
        AmountTokens:  b.AmountCharged,
        OccurredAt:    e.now().UTC().Format(time.RFC3339),
    }
    if err := e.notifier.Notify(ctx, ev); err != nil {
        log.Printf("booking: notify %s for booking %d failed: %v", kind, b.ID, err)
    }
}
