package repository

import (
    "context"
    "database/sql"
)

// WalletRepo is the authoritative token ledger, backed by the
// users.tokens column.  Debit and credit are single conditional
// UPDATE statements so the balance check and the mutation happen in
// one step – two concurrent debits of 80 against a balance of 100
// can never both succeed, regardless of isolation level, because
// the second UPDATE sees the already-decremented row.
//
// All mutating methods take an open transaction: the wallet is only
// ever touched as part of a booking engine transaction, after the
// target slot row has been locked (canonical slot-then-wallet order,
// which prevents cross-transaction deadlock cycles).
type WalletRepo struct {
    db *sql.DB
}

// NewWalletRepo returns a WalletRepo bound to the given database.
func NewWalletRepo(db *sql.DB) *WalletRepo { return &WalletRepo{db: db} }

// DebitTx atomically subtracts amount from the user's balance when
// the balance covers it.  On success it returns the new balance.
// When the row was not updated it distinguishes a missing user
// (ErrUserNotFound) from an insufficient balance
// (ErrInsufficientBalance) with a follow-up read inside the same
// transaction.  Callers must pass a positive amount: the driver
// reports rows changed, not rows matched, so a zero debit leaves the
// row untouched and is indistinguishable from a short balance.
func (r *WalletRepo) DebitTx(ctx context.Context, tx *sql.Tx, userID uint64, amount uint32) (uint32, error) {
    res, err := tx.ExecContext(ctx,
        `UPDATE users SET tokens = tokens - ? WHERE id = ? AND tokens >= ?`,
        amount, userID, amount)
    if err != nil {
        return 0, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return 0, err
    }
    if n == 0 {
        // Either the user does not exist or the balance is short.
        var balance uint32
        err := tx.QueryRowContext(ctx, `SELECT tokens FROM users WHERE id = ?`, userID).Scan(&balance)
        if err == sql.ErrNoRows {
            return 0, ErrUserNotFound
        }
        if err != nil {
            return 0, err
        }
        return balance, ErrInsufficientBalance
    }
    var balance uint32
    if err := tx.QueryRowContext(ctx, `SELECT tokens FROM users WHERE id = ?`, userID).Scan(&balance); err != nil {
        return 0, err
    }
    return balance, nil
}

// CreditTx unconditionally adds amount to the user's balance and
// returns the new balance.  It fails only when the user does not
// exist.
func (r *WalletRepo) CreditTx(ctx context.Context, tx *sql.Tx, userID uint64, amount uint32) (uint32, error) {
    res, err := tx.ExecContext(ctx,
        `UPDATE users SET tokens = tokens + ? WHERE id = ?`,
        amount, userID)
    if err != nil {
        return 0, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return 0, err
    }
    if n == 0 {
        return 0, ErrUserNotFound
    }
    var balance uint32
    if err := tx.QueryRowContext(ctx, `SELECT tokens FROM users WHERE id = ?`, userID).Scan(&balance); err != nil {
        return 0, err
    }
    return balance, nil
}

// Balance returns the current token balance outside any transaction.
func (r *WalletRepo) Balance(ctx context.Context, userID uint64) (uint32, error) {
    var balance uint32
    err := r.db.QueryRowContext(ctx, `SELECT tokens FROM users WHERE id = ?`, userID).Scan(&balance)
    if err == sql.ErrNoRows {
        return 0, ErrUserNotFound
    }
    if err != nil {
        return 0, err
    }
    return balance, nil
}
