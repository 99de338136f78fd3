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

func TestPaymentFinalizeOnlyOnce(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectExec("UPDATE payments").
        WithArgs("00", "TXN1", "NCB", "ATM", model.PaymentSuccess, "ORD1", model.PaymentPending).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("UPDATE payments").
        WithArgs("00", "TXN1", "NCB", "ATM", model.PaymentSuccess, "ORD1", model.PaymentPending).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectCommit()

    ctx := context.Background()
    tx, err := db.BeginTx(ctx, nil)
    require.NoError(t, err)

    repo := NewPaymentRepo(db)
    won, err := repo.FinalizeTx(ctx, tx, "ORD1", "00", "TXN1", "NCB", "ATM", model.PaymentSuccess)
    require.NoError(t, err)
    assert.True(t, won, "first callback finalizes")

    won, err = repo.FinalizeTx(ctx, tx, "ORD1", "00", "TXN1", "NCB", "ATM", model.PaymentSuccess)
    require.NoError(t, err)
    assert.False(t, won, "retried callback must not finalize again")

    require.NoError(t, tx.Commit())
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRecordCallbackAudit(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectExec("INSERT INTO payment_callbacks").
        WithArgs("ORD1", "vnp_TxnRef=ORD1", "duplicate", sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(1, 1))

    repo := NewPaymentRepo(db)
    err = repo.RecordCallback(context.Background(), "ORD1", "vnp_TxnRef=ORD1", "duplicate", time.Now())
    require.NoError(t, err)
    assert.NoError(t, mock.ExpectationsWereMet())
}
