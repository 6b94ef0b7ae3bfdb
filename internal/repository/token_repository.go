package repository

import (
    "context"
    "database/sql"
    "time"
)

// TokenRepo stores refresh-token sessions.  Only a SHA-256 hash of
// the raw token is persisted; revocation is a timestamp, never a
// delete, so a stolen token stays dead after rotation.
type TokenRepo struct {
    db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh records a new session for the user.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
    _, err := r.db.ExecContext(ctx, `
        INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
        VALUES (?, ?, ?)`,
        userID, tokenHash, expiresAt,
    )
    return err
}

// ValidateRefresh resolves a token hash to its user.  Revoked or
// expired sessions report sql.ErrNoRows so callers treat them exactly
// like unknown tokens.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
    var (
        userID    uint64
        expiresAt time.Time
        revokedAt sql.NullTime
    )
    err := r.db.QueryRowContext(ctx, `
        SELECT user_id, expires_at, revoked_at
        FROM refresh_tokens
        WHERE token_hash = ?
        LIMIT 1`,
        tokenHash,
    ).Scan(&userID, &expiresAt, &revokedAt)
    if err != nil {
        return 0, err
    }
    if revokedAt.Valid || time.Now().UTC().After(expiresAt) {
        return 0, sql.ErrNoRows
    }
    return userID, nil
}

// RevokeByHash closes one session.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
    _, err := r.db.ExecContext(ctx, `
        UPDATE refresh_tokens
        SET revoked_at = NOW()
        WHERE token_hash = ? AND revoked_at IS NULL`,
        tokenHash,
    )
    return err
}

// RevokeAllForUser closes every active session of the user, used on
// full logout.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
    _, err := r.db.ExecContext(ctx, `
        UPDATE refresh_tokens
        SET revoked_at = NOW()
        WHERE user_id = ? AND revoked_at IS NULL`,
        userID,
    )
    return err
}

// PurgeExpired deletes sessions whose expiry passed more than the
// retention window ago.  Row count is returned for logging.
func (r *TokenRepo) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
    cutoff := time.Now().UTC().Add(-retention)
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM refresh_tokens WHERE expires_at < ?`, cutoff,
    )
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
