package repository

import (
    "context"
    "testing"

    sqlmock "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

func TestSessionFreezeForPaymentSingleWinner(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE sessions").
        WithArgs(model.SessionAwaitingPayment, int64(280_000), "ORD1", "tok-1", model.SessionSelecting).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE sessions").
        WithArgs(model.SessionAwaitingPayment, int64(280_000), "ORD2", "tok-1", model.SessionSelecting).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectCommit()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewSessionRepo(db)
    won, err := repo.FreezeForPaymentTx(ctx, tx, "tok-1", 280_000, "ORD1")
    require.NoError(t, err)
    assert.True(t, won)

    won, err = repo.FreezeForPaymentTx(ctx, tx, "tok-1", 280_000, "ORD2")
    require.NoError(t, err)
    assert.False(t, won, "a frozen session cannot be frozen again")

    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionTransitionRequireLiveAddsDeadlinePredicate(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    // The settle transition must carry the deadline guard so a late
    // success callback loses against an expired session.
    mock.ExpectExec("deadline > UTC_TIMESTAMP").
        WithArgs(model.SessionSettled, "tok-1", model.SessionAwaitingPayment).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectCommit()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewSessionRepo(db)
    won, err := repo.TransitionTx(ctx, tx, "tok-1", model.SessionAwaitingPayment, model.SessionSettled, true)
    require.NoError(t, err)
    assert.False(t, won)

    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}
