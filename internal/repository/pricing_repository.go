package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/parking-slot-reservation/internal/model"
)

// PricingRepo provides access to the slot_pricing table.  Rates are
// unique per (lot_id, vehicle_type); Upsert relies on that key.
type PricingRepo struct {
    db *sql.DB
}

// NewPricingRepo returns a PricingRepo bound to the given database.
func NewPricingRepo(db *sql.DB) *PricingRepo { return &PricingRepo{db: db} }

const pricingColumns = `id, lot_id, vehicle_type, hourly, daily, monthly, created_at, updated_at`

func scanPricing(row interface{ Scan(...any) error }, p *model.SlotPricing) error {
    return row.Scan(&p.ID, &p.LotID, &p.VehicleType, &p.Hourly, &p.Daily, &p.Monthly,
        &p.CreatedAt, &p.UpdatedAt)
}

// GetTx loads the rate row for (lotID, vehicleType) inside an open
// transaction.  A missing row is reported as ErrPricingNotConfigured:
// the booking engine must refuse to price the request rather than
// guess a rate.
func (r *PricingRepo) GetTx(ctx context.Context, tx *sql.Tx, lotID uint64, vehicleType string) (*model.SlotPricing, error) {
    const q = `SELECT ` + pricingColumns + ` FROM slot_pricing WHERE lot_id = ? AND vehicle_type = ?`
    var p model.SlotPricing
    if err := scanPricing(tx.QueryRowContext(ctx, q, lotID, vehicleType), &p); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrPricingNotConfigured
        }
        return nil, err
    }
    return &p, nil
}

// Get is the non-transactional variant of GetTx, used by browse
// endpoints to show rates alongside slots.
func (r *PricingRepo) Get(ctx context.Context, lotID uint64, vehicleType string) (*model.SlotPricing, error) {
    const q = `SELECT ` + pricingColumns + ` FROM slot_pricing WHERE lot_id = ? AND vehicle_type = ?`
    var p model.SlotPricing
    if err := scanPricing(r.db.QueryRowContext(ctx, q, lotID, vehicleType), &p); err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrPricingNotConfigured
        }
        return nil, err
    }
    return &p, nil
}

// ListByLot returns all rate rows for a lot ordered by vehicle type.
func (r *PricingRepo) ListByLot(ctx context.Context, lotID uint64) ([]*model.SlotPricing, error) {
    const q = `SELECT ` + pricingColumns + ` FROM slot_pricing WHERE lot_id = ? ORDER BY vehicle_type`
    rows, err := r.db.QueryContext(ctx, q, lotID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var out []*model.SlotPricing
    for rows.Next() {
        p := new(model.SlotPricing)
        if err := scanPricing(rows, p); err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Upsert writes the rate row for (lotID, vehicleType), replacing any
// existing rates for that combination.  The unique key on
// (lot_id, vehicle_type) makes this safe to call repeatedly.
func (r *PricingRepo) Upsert(ctx context.Context, p *model.SlotPricing) error {
    const q = `INSERT INTO slot_pricing (lot_id, vehicle_type, hourly, daily, monthly)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE hourly = VALUES(hourly), daily = VALUES(daily), monthly = VALUES(monthly)`
    if _, err := r.db.ExecContext(ctx, q, p.LotID, p.VehicleType, p.Hourly, p.Daily, p.Monthly); err != nil {
        return err
    }
    const qSelect = `SELECT ` + pricingColumns + ` FROM slot_pricing WHERE lot_id = ? AND vehicle_type = ?`
    return scanPricing(r.db.QueryRowContext(ctx, qSelect, p.LotID, p.VehicleType), p)
}
