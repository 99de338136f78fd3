package repository

import (
    "context"
    "testing"

    sqlmock "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

func TestSeatTransitionReportsShortCount(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    // Two seats requested but one was already taken: only one row
    // matches the guarded update.
    mock.ExpectExec("UPDATE seats SET status").
        WithArgs(model.SeatHeld, model.SeatAvailable, uint64(11), uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectRollback()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewSeatRepo(db)
    affected, err := repo.TransitionStatusTx(ctx, tx, []uint64{11, 12}, model.SeatAvailable, model.SeatHeld)
    require.NoError(t, err)
    assert.Equal(t, int64(1), affected, "caller must roll back on a short count")

    require.NoError(t, tx.Rollback())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatClaimIsScopedToRoom(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    // Seats from a foreign room never match the room predicate, so
    // the claim reports a short count and the caller rolls back.
    mock.ExpectExec("AND room_id =").
        WithArgs(model.SeatHeld, model.SeatAvailable, uint64(3), uint64(11), uint64(12)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectRollback()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewSeatRepo(db)
    affected, err := repo.ClaimTx(ctx, tx, 3, []uint64{11, 12})
    require.NoError(t, err)
    assert.Zero(t, affected)

    require.NoError(t, tx.Rollback())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatTransitionEmptySetIsNoop(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectCommit()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewSeatRepo(db)
    affected, err := repo.TransitionStatusTx(ctx, tx, nil, model.SeatAvailable, model.SeatHeld)
    require.NoError(t, err)
    assert.Zero(t, affected)

    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}
