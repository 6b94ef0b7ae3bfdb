package repository

import (
    "context"
    "errors"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func walletFixture(t *testing.T) (*WalletRepo, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    return NewWalletRepo(db), mock
}

const (
    debitQuery   = `UPDATE users SET tokens = tokens - \? WHERE id = \? AND tokens >= \?`
    creditQuery  = `UPDATE users SET tokens = tokens \+ \? WHERE id = \?`
    balanceQuery = `SELECT tokens FROM users WHERE id = \?`
)

func TestDebitTxSucceedsWhenBalanceCovers(t *testing.T) {
    repo, mock := walletFixture(t)

    mock.ExpectBegin()
    mock.ExpectExec(debitQuery).WithArgs(uint32(24), uint64(7), uint32(24)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(balanceQuery).WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(76))
    mock.ExpectCommit()

    db := repo.db
    tx, err := db.Begin()
    require.NoError(t, err)

    balance, err := repo.DebitTx(context.Background(), tx, 7, 24)
    require.NoError(t, err)
    assert.Equal(t, uint32(76), balance)

    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitTxInsufficientBalance(t *testing.T) {
    repo, mock := walletFixture(t)

    mock.ExpectBegin()
    // conditional UPDATE touches no row; the follow-up read tells a
    // short balance apart from a missing user
    mock.ExpectExec(debitQuery).WithArgs(uint32(24), uint64(7), uint32(24)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(balanceQuery).WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(10))
    mock.ExpectRollback()

    tx, err := repo.db.Begin()
    require.NoError(t, err)

    balance, err := repo.DebitTx(context.Background(), tx, 7, 24)
    assert.True(t, errors.Is(err, ErrInsufficientBalance))
    assert.Equal(t, uint32(10), balance)

    require.NoError(t, tx.Rollback())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitTxUnknownUser(t *testing.T) {
    repo, mock := walletFixture(t)

    mock.ExpectBegin()
    mock.ExpectExec(debitQuery).WithArgs(uint32(5), uint64(99), uint32(5)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery(balanceQuery).WithArgs(uint64(99)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}))
    mock.ExpectRollback()

    tx, err := repo.db.Begin()
    require.NoError(t, err)

    _, err = repo.DebitTx(context.Background(), tx, 99, 5)
    assert.True(t, errors.Is(err, ErrUserNotFound))

    require.NoError(t, tx.Rollback())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditTxReturnsNewBalance(t *testing.T) {
    repo, mock := walletFixture(t)

    mock.ExpectBegin()
    mock.ExpectExec(creditQuery).WithArgs(uint32(24), uint64(7)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(balanceQuery).WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(100))
    mock.ExpectCommit()

    tx, err := repo.db.Begin()
    require.NoError(t, err)

    balance, err := repo.CreditTx(context.Background(), tx, 7, 24)
    require.NoError(t, err)
    assert.Equal(t, uint32(100), balance)

    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}
