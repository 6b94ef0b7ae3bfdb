// Package repository contains data access logic separated from HTTP handlers.
// This file defines repository methods for CRUD and lookup operations on
// parking lots. A lot represents a managed facility that contains many
// slots. Only minimal fields should be exposed in public API responses.
package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/parking-slot-reservation/internal/model"
)

// LotRepo encapsulates all database queries related to parking lots.  It
// depends on a sql.DB connection which should be configured elsewhere.
type LotRepo struct {
	db *sql.DB
}

// NewLotRepo constructs a LotRepo with the provided DB handle.  This
// function allows dependency injection of the database in tests and at
// startup.  There is no initialization logic beyond assigning the field.
func NewLotRepo(db *sql.DB) *LotRepo {
	return &LotRepo{db: db}
}

const lotColumns = `id, owner_id, name, latitude, longitude, capacity, has_ev_charging, created_at, updated_at`

func scanLot(row interface{ Scan(...any) error }, l *model.Lot) error {
	return row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Latitude, &l.Longitude,
		&l.Capacity, &l.HasEVCharging, &l.CreatedAt, &l.UpdatedAt)
}

// Create inserts a new lot into the database.  On success the lot's ID
// field is populated with the auto-generated value and a follow-up
// SELECT fills in the default timestamp columns so callers receive a
// fully populated record.
func (r *LotRepo) Create(ctx context.Context, l *model.Lot) error {
	const qInsert = `INSERT INTO parking_lots (owner_id, name, latitude, longitude, capacity, has_ev_charging)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		l.OwnerID, l.Name, l.Latitude, l.Longitude, l.Capacity, l.HasEVCharging)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)

	const qSelect = `SELECT ` + lotColumns + ` FROM parking_lots WHERE id = ?`
	return scanLot(r.db.QueryRowContext(ctx, qSelect, l.ID), l)
}

// GetByID fetches a lot by its ID regardless of owner.  It returns
// ErrLotNotFound if no row is found.
func (r *LotRepo) GetByID(ctx context.Context, id uint64) (*model.Lot, error) {
	const q = `SELECT ` + lotColumns + ` FROM parking_lots WHERE id = ?`
	var l model.Lot
	if err := scanLot(r.db.QueryRowContext(ctx, q, id), &l); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrLotNotFound
		}
		return nil, err
	}
	return &l, nil
}

// GetByIDAndOwner fetches a lot by id but only if it belongs to the
// specified owner.  It returns ErrLotNotFound when the lot does not
// exist and ErrForbidden when it is owned by someone else, so that
// handlers can answer 404 and 403 distinctly.
func (r *LotRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Lot, error) {
	l, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return l, nil
}

// ListAll returns all lots ordered by id.  It is used by public browse
// endpoints; handlers shape the response to avoid exposing owner IDs.
func (r *LotRepo) ListAll(ctx context.Context) ([]*model.Lot, error) {
	const q = `SELECT ` + lotColumns + ` FROM parking_lots ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Lot
	for rows.Next() {
		l := new(model.Lot)
		if err := scanLot(rows, l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByOwner returns all lots for a specific owner ordered by id.
func (r *LotRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Lot, error) {
	const q = `SELECT ` + lotColumns + ` FROM parking_lots WHERE owner_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Lot
	for rows.Next() {
		l := new(model.Lot)
		if err := scanLot(rows, l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites the mutable columns of a lot when it belongs to the
// provided owner.  It returns sql.ErrNoRows when no row was affected
// (not found / not owned).
func (r *LotRepo) Update(ctx context.Context, l *model.Lot, ownerID uint64) error {
	const q = `UPDATE parking_lots
	           SET name = ?, latitude = ?, longitude = ?, capacity = ?, has_ev_charging = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		l.Name, l.Latitude, l.Longitude, l.Capacity, l.HasEVCharging, l.ID, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByIDAndOwner removes a lot together with its slots, pricing rows
// and favorites, provided it belongs to the specified owner and none of
// its slots has a live (CONFIRMED or ACTIVE) booking.  Historical
// bookings survive the delete so the audit trail is preserved; their
// slot reference is kept as a plain id without a FK constraint for this
// reason.  Returns ErrLotNotFound, ErrForbidden or ErrConflict as
// appropriate.  The deletion occurs within a transaction.
func (r *LotRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
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
	var dbOwnerID uint64
	if err = tx.QueryRowContext(ctx, `SELECT owner_id FROM parking_lots WHERE id = ?`, id).Scan(&dbOwnerID); err != nil {
		if err == sql.ErrNoRows {
			err = ErrLotNotFound
		}
		return err
	}
	if dbOwnerID != ownerID {
		err = ErrForbidden
		return err
	}
	// Refuse to delete while any slot of the lot is occupied or booked.
	var live int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings b
		 JOIN parking_slots s ON s.id = b.slot_id
		 WHERE s.lot_id = ? AND b.status IN ('CONFIRMED','ACTIVE')`, id).Scan(&live); err != nil {
		return err
	}
	if live > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM favorites WHERE lot_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM slot_pricing WHERE lot_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM parking_slots WHERE lot_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
