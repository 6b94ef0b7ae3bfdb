package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
)

// SlotRepo encapsulates database operations for parking_slots.  The
// is_available flag on a slot row is the availability index the
// booking engine reads and writes; methods that participate in a
// booking transaction take an explicit *sql.Tx and lock the slot row
// with SELECT ... FOR UPDATE so two racing requests serialize on it.
type SlotRepo struct {
    db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

const slotColumns = `id, lot_id, label, vehicle_type, is_ev, pos_row, pos_col, is_available, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }, s *model.Slot) error {
    return row.Scan(&s.ID, &s.LotID, &s.Label, &s.VehicleType, &s.IsEV,
        &s.PosRow, &s.PosCol, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a slot and populates the generated ID and timestamp
// defaults.  New slots start available.
func (r *SlotRepo) Create(ctx context.Context, s *model.Slot) error {
    const qInsert = `INSERT INTO parking_slots (lot_id, label, vehicle_type, is_ev, pos_row, pos_col)
                     VALUES (?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, qInsert,
        s.LotID, s.Label, s.VehicleType, s.IsEV, s.PosRow, s.PosCol)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    const qSelect = `SELECT ` + slotColumns + ` FROM parking_slots WHERE id = ?`
    return scanSlot(r.db.QueryRowContext(ctx, qSelect, s.ID), s)
}

// GetByID fetches a slot without locking.  Returns ErrSlotNotFound
// when the id does not exist.
func (r *SlotRepo) GetByID(ctx context.Context, id uint64) (*model.Slot, error) {
    const q = `SELECT ` + slotColumns + ` FROM parking_slots WHERE id = ?`
    var s model.Slot
    if err := scanSlot(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrSlotNotFound
        }
        return nil, err
    }
    return &s, nil
}

// GetForUpdateTx fetches a slot inside an open transaction with an
// exclusive row lock.  This is the first lock the booking engine
// takes: slot before wallet, always, so concurrent transactions
// cannot form a deadlock cycle.
func (r *SlotRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Slot, error) {
    const q = `SELECT ` + slotColumns + ` FROM parking_slots WHERE id = ? FOR UPDATE`
    var s model.Slot
    if err := scanSlot(tx.QueryRowContext(ctx, q, id), &s); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrSlotNotFound
        }
        return nil, err
    }
    return &s, nil
}

// SetAvailabilityTx flips the availability flag within the caller's
// transaction.  The caller must hold the row lock acquired by
// GetForUpdateTx.
func (r *SlotRepo) SetAvailabilityTx(ctx context.Context, tx *sql.Tx, id uint64, available bool) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE parking_slots SET is_available = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
        available, id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrSlotNotFound
    }
    return nil
}

// IsAvailable answers "is this stall physically free right now"
// without a lock.  Use only for display; the booking engine re-reads
// the flag under FOR UPDATE before relying on it.
func (r *SlotRepo) IsAvailable(ctx context.Context, id uint64) (bool, error) {
    var available bool
    err := r.db.QueryRowContext(ctx,
        `SELECT is_available FROM parking_slots WHERE id = ?`, id).Scan(&available)
    if err == sql.ErrNoRows {
        return false, ErrSlotNotFound
    }
    if err != nil {
        return false, err
    }
    return available, nil
}

// ListByLot returns all slots of a lot ordered by grid position, for
// the public layout view.
func (r *SlotRepo) ListByLot(ctx context.Context, lotID uint64) ([]*model.Slot, error) {
    const q = `SELECT ` + slotColumns + ` FROM parking_slots
               WHERE lot_id = ? ORDER BY pos_row, pos_col, label`
    rows, err := r.db.QueryContext(ctx, q, lotID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*model.Slot
    for rows.Next() {
        s := new(model.Slot)
        if err := scanSlot(rows, s); err != nil {
            return nil, err
        }
        out = append(out, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Update rewrites the descriptive columns of a slot.  Availability is
// deliberately excluded: only the booking engine mutates that flag.
// Returns sql.ErrNoRows when nothing was affected.
func (r *SlotRepo) Update(ctx context.Context, s *model.Slot) error {
    const q = `UPDATE parking_slots
               SET label = ?, vehicle_type = ?, is_ev = ?, pos_row = ?, pos_col = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q,
        s.Label, s.VehicleType, s.IsEV, s.PosRow, s.PosCol, s.ID)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return sql.ErrNoRows
    }
    return nil
}

// Delete removes a slot unless a live booking references it.  The
// check and the delete run in one transaction so a racing Create
// cannot slip a booking in between.
func (r *SlotRepo) Delete(ctx context.Context, id uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        } else {
            _ = tx.Commit()
        }
    }()
    var live int
    if err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM bookings WHERE slot_id = ? AND status IN ('CONFIRMED','ACTIVE')`,
        id).Scan(&live); err != nil {
        return err
    }
    if live > 0 {
        err = ErrConflict
        return err
    }
    var res sql.Result
    if res, err = tx.ExecContext(ctx, `DELETE FROM parking_slots WHERE id = ?`, id); err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        err = ErrSlotNotFound
        return err
    }
    return nil
}
