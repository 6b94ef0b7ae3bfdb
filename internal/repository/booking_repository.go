package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  A booking row
// is created exactly once, by the booking engine, inside the same
// transaction that debits the wallet and flips the slot flag; every
// later mutation is a status transition, never a delete.  All
// timestamp fields are stored in UTC.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, slot_id, status, billing_unit, duration_count, start_time, end_time, amount_charged, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
    return row.Scan(&b.ID, &b.UserID, &b.SlotID, &b.Status, &b.BillingUnit, &b.DurationCount,
        &b.StartTime, &b.EndTime, &b.AmountCharged, &b.CreatedAt, &b.UpdatedAt)
}

// CreateTx inserts a new booking within the scope of an existing
// transaction.  It populates the generated ID and timestamp defaults
// on the provided record.  The caller must commit or rollback the
// transaction.  Status should already be CONFIRMED; rejected requests
// never reach this method.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    const q = `INSERT INTO bookings (user_id, slot_id, status, billing_unit, duration_count, start_time, end_time, amount_charged)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        b.UserID, b.SlotID, b.Status, b.BillingUnit, b.DurationCount,
        b.StartTime, b.EndTime, b.AmountCharged)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    const sel = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
    return scanBooking(tx.QueryRowContext(ctx, sel, b.ID), b)
}

// GetForUpdateTx loads a booking with an exclusive row lock inside an
// open transaction.  Used by Cancel so a racing sweep cannot complete
// the booking while the refund is being decided.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
    var b model.Booking
    if err := scanBooking(tx.QueryRowContext(ctx, q, id), &b); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return &b, nil
}

// UpdateStatusTx transitions a booking's status within the caller's
// transaction.  It does not enforce the state machine; the booking
// engine validates transitions before calling.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
        status, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrBookingNotFound
    }
    return nil
}

// DueTx returns, with row locks, the bookings whose occupancy window
// has elapsed (status CONFIRMED or ACTIVE, end_time in the past).
// The booking engine completes them and frees their slots inside the
// same transaction.
func (r *BookingRepo) DueTx(ctx context.Context, tx *sql.Tx, now time.Time) ([]*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE status IN ('CONFIRMED','ACTIVE') AND end_time <= ?
               ORDER BY id FOR UPDATE`
    return r.queryTx(ctx, tx, q, now)
}

// StartableTx returns, with row locks, CONFIRMED bookings whose window
// has begun but not yet elapsed.  The engine marks them ACTIVE.
func (r *BookingRepo) StartableTx(ctx context.Context, tx *sql.Tx, now time.Time) ([]*model.Booking, error) {
    const q = `SELECT ` + bookingColumns + ` FROM bookings
               WHERE status = 'CONFIRMED' AND start_time <= ? AND end_time > ?
               ORDER BY id FOR UPDATE`
    return r.queryTx(ctx, tx, q, now, now)
}

func (r *BookingRepo) queryTx(ctx context.Context, tx *sql.Tx, q string, args ...any) ([]*model.Booking, error) {
    rows, err := tx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*model.Booking
    for rows.Next() {
        b := new(model.Booking)
        if err := scanBooking(rows, b); err != nil {
            return nil, err
        }
        out = append(out, b)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// BookingDetail joins a booking with its slot and lot for display to
// drivers.  It is returned by ListByUser and GetDetailForUser.
type BookingDetail struct {
    ID            uint64    `json:"id"`
    SlotID        uint64    `json:"slot_id"`
    SlotLabel     string    `json:"slot_label"`
    LotID         uint64    `json:"lot_id"`
    LotName       string    `json:"lot_name"`
    Status        string    `json:"status"`
    BillingUnit   string    `json:"billing_unit"`
    DurationCount uint32    `json:"duration_count"`
    StartTime     time.Time `json:"start_time"`
    EndTime       time.Time `json:"end_time"`
    AmountCharged uint32    `json:"amount_charged"`
    CreatedAt     time.Time `json:"created_at"`
}

const bookingDetailQuery = `SELECT b.id, b.slot_id, s.label, s.lot_id, l.name,
                                   b.status, b.billing_unit, b.duration_count,
                                   b.start_time, b.end_time, b.amount_charged, b.created_at
                            FROM bookings b
                            JOIN parking_slots s ON s.id = b.slot_id
                            JOIN parking_lots l ON l.id = s.lot_id`

func scanBookingDetail(row interface{ Scan(...any) error }, d *BookingDetail) error {
    return row.Scan(&d.ID, &d.SlotID, &d.SlotLabel, &d.LotID, &d.LotName,
        &d.Status, &d.BillingUnit, &d.DurationCount,
        &d.StartTime, &d.EndTime, &d.AmountCharged, &d.CreatedAt)
}

// ListByUser returns all bookings for the given user along with slot
// and lot details, newest first.  When no bookings exist, an empty
// slice is returned.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64, statuses []string) ([]BookingDetail, error) {
    q := bookingDetailQuery + ` WHERE b.user_id = ?`
    args := []any{userID}
    if len(statuses) > 0 {
        placeholders := make([]string, len(statuses))
        for i, st := range statuses {
            placeholders[i] = "?"
            args = append(args, st)
        }
        q += ` AND b.status IN (` + strings.Join(placeholders, ",") + `)`
    }
    q += ` ORDER BY b.created_at DESC, b.id DESC`

    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    details := make([]BookingDetail, 0)
    for rows.Next() {
        var d BookingDetail
        if err := scanBookingDetail(rows, &d); err != nil {
            return nil, err
        }
        details = append(details, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return details, nil
}

// GetDetailForUser returns a single booking for the given user.
// Ownership is enforced in the query; a row owned by someone else is
// indistinguishable from a missing one and both return
// ErrBookingNotFound.
func (r *BookingRepo) GetDetailForUser(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
    q := bookingDetailQuery + ` WHERE b.id = ? AND b.user_id = ?`
    var d BookingDetail
    if err := scanBookingDetail(r.db.QueryRowContext(ctx, q, bookingID, userID), &d); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrBookingNotFound
        }
        return nil, err
    }
    return &d, nil
}

// OwnerBookingDetail extends BookingDetail with the booking user when
// viewed by the lot owner.
type OwnerBookingDetail struct {
    BookingDetail
    UserID uint64 `json:"user_id"`
}

// ListByLotForOwner returns all bookings in a lot when accessed by its
// owner.  It verifies that the lot belongs to the caller before
// returning the list; otherwise ErrForbidden is returned.  Bookings
// are ordered by creation time descending.
func (r *BookingRepo) ListByLotForOwner(ctx context.Context, lotID, ownerID uint64) ([]OwnerBookingDetail, error) {
    var actualOwnerID uint64
    err := r.db.QueryRowContext(ctx,
        `SELECT owner_id FROM parking_lots WHERE id = ?`, lotID).Scan(&actualOwnerID)
    if err == sql.ErrNoRows {
        return nil, ErrLotNotFound
    }
    if err != nil {
        return nil, err
    }
    if actualOwnerID != ownerID {
        return nil, ErrForbidden
    }

    const q = `SELECT b.id, b.slot_id, s.label, s.lot_id, l.name,
                      b.status, b.billing_unit, b.duration_count,
                      b.start_time, b.end_time, b.amount_charged, b.created_at,
                      b.user_id
               FROM bookings b
               JOIN parking_slots s ON s.id = b.slot_id
               JOIN parking_lots l ON l.id = s.lot_id
               WHERE s.lot_id = ?
               ORDER BY b.created_at DESC, b.id DESC`
    rows, err := r.db.QueryContext(ctx, q, lotID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    details := make([]OwnerBookingDetail, 0)
    for rows.Next() {
        var d OwnerBookingDetail
        if err := rows.Scan(&d.ID, &d.SlotID, &d.SlotLabel, &d.LotID, &d.LotName,
            &d.Status, &d.BillingUnit, &d.DurationCount,
            &d.StartTime, &d.EndTime, &d.AmountCharged, &d.CreatedAt,
            &d.UserID); err != nil {
            return nil, err
        }
        details = append(details, d)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return details, nil
}
