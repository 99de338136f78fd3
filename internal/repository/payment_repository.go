package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

// PaymentRepo provides data access to payment transactions and the
// callback audit trail.  A payment is finalized at most once; the
// guarded UPDATE in FinalizeTx is what makes the first valid
// callback the only one with side effects.
type PaymentRepo struct {
    db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the provided database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a pending payment row.  The order_id column has a
// unique index, so a duplicate order id fails the insert rather than
// silently forking the payment.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.PaymentTransaction) error {
    const q = `INSERT INTO payments (order_id, session_token, amount_cents, request_params, status)
               VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, p.OrderID, p.SessionToken, p.AmountCents, p.RequestParams, p.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    return nil
}

// GetByOrderIDTx loads a payment by its gateway transaction
// reference.  Returns sql.ErrNoRows via the caller when unknown.
func (r *PaymentRepo) GetByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string) (*model.PaymentTransaction, error) {
    const q = `SELECT id, order_id, session_token, amount_cents, request_params,
                      response_code, gateway_txn_no, bank_code, card_type, status, created_at, finalized_at
               FROM payments WHERE order_id = ?`
    var p model.PaymentTransaction
    var respCode, txnNo, bankCode, cardType sql.NullString
    var finalized sql.NullTime
    err := tx.QueryRowContext(ctx, q, orderID).Scan(
        &p.ID, &p.OrderID, &p.SessionToken, &p.AmountCents, &p.RequestParams,
        &respCode, &txnNo, &bankCode, &cardType, &p.Status, &p.CreatedAt, &finalized,
    )
    if err != nil {
        return nil, err
    }
    if respCode.Valid {
        v := respCode.String
        p.ResponseCode = &v
    }
    if txnNo.Valid {
        v := txnNo.String
        p.GatewayTxnNo = &v
    }
    if bankCode.Valid {
        v := bankCode.String
        p.BankCode = &v
    }
    if cardType.Valid {
        v := cardType.String
        p.CardType = &v
    }
    if finalized.Valid {
        t := finalized.Time
        p.FinalizedAt = &t
    }
    return &p, nil
}

// FinalizeTx records the gateway outcome on a still-pending payment
// and reports whether this callback was the one that finalized it.
// A false return means another callback already won; the caller must
// treat the current one as a duplicate.
func (r *PaymentRepo) FinalizeTx(ctx context.Context, tx *sql.Tx, orderID, responseCode, txnNo, bankCode, cardType, status string) (bool, error) {
    const q = `UPDATE payments
               SET response_code = ?, gateway_txn_no = ?, bank_code = ?, card_type = ?,
                   status = ?, finalized_at = UTC_TIMESTAMP()
               WHERE order_id = ? AND status = ?`
    res, err := tx.ExecContext(ctx, q, responseCode, txnNo, bankCode, cardType, status,
        orderID, model.PaymentPending)
    if err != nil {
        return false, err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return affected == 1, nil
}

// RecordCallback appends an audit row for every inbound callback,
// valid or not, duplicate or not.  Late callbacks for invalidated
// order ids are accepted here for audit but never re-finalize
// anything.  Runs outside any transaction: audit rows must survive a
// rolled-back finalization attempt.
func (r *PaymentRepo) RecordCallback(ctx context.Context, orderID, rawQuery, disposition string, receivedAt time.Time) error {
    const q = `INSERT INTO payment_callbacks (order_id, raw_query, disposition, received_at)
               VALUES (?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q, orderID, rawQuery, disposition,
        receivedAt.UTC().Format("2006-01-02 15:04:05"))
    return err
}
