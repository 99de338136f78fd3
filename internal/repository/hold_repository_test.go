package repository

import (
    "context"
    "testing"
    "time"

    sqlmock "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

func TestHoldCreateInsertsHoldAndSeats(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO holds").
        WithArgs(uint64(9), "tok-1", model.HoldActive, sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectExec("INSERT INTO hold_seats").
        WithArgs(uint64(42), uint64(11), uint64(42), uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 2))
    mock.ExpectCommit()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewHoldRepo(db)
    h := &model.Hold{
        SlotID:       9,
        SessionToken: "tok-1",
        Status:       model.HoldActive,
        ExpiresAt:    time.Now().UTC().Add(model.HoldTTL),
    }
    require.NoError(t, repo.CreateTx(ctx, tx, h, []uint64{11, 12}))
    assert.Equal(t, uint64(42), h.ID)
    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldTransitionExactlyOneWinner(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE holds SET status").
        WithArgs(model.HoldConsumed, uint64(42), model.HoldActive).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE holds SET status").
        WithArgs(model.HoldReleased, uint64(42), model.HoldActive).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectCommit()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewHoldRepo(db)
    won, err := repo.TransitionTx(ctx, tx, 42, model.HoldActive, model.HoldConsumed)
    require.NoError(t, err)
    assert.True(t, won, "first transition should win")

    won, err = repo.TransitionTx(ctx, tx, 42, model.HoldActive, model.HoldReleased)
    require.NoError(t, err)
    assert.False(t, won, "second transition must be a no-op")

    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldGetBySessionNotFound(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectQuery("FROM holds WHERE session_token").
        WithArgs("missing").
        WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "session_token", "status", "expires_at", "created_at"}))
    mock.ExpectRollback()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewHoldRepo(db)
    _, err = repo.GetBySessionTx(ctx, tx, "missing")
    assert.ErrorIs(t, err, ErrHoldNotFound)
    require.NoError(t, tx.Rollback())
    assert.NoError(t, mock.ExpectationsWereMet())
}
