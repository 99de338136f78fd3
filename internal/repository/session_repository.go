package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

// SessionRepo provides data access to checkout sessions and their
// combo item snapshots.  Every state transition is a guarded UPDATE
// so that the callback handler, the expiry sweeper and an explicit
// cancel can race safely: whichever statement matches the state (and
// deadline, where required) first wins, the others change zero rows.
type SessionRepo struct {
    db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the provided database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *SessionRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new checkout session in SELECTING state.
func (r *SessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.CheckoutSession) error {
    const q = `INSERT INTO sessions (token, slot_id, user_id, state, deadline)
               VALUES (?, ?, ?, ?, ?)`
    _, err := tx.ExecContext(ctx, q, s.Token, s.SlotID, s.UserID, s.State,
        s.Deadline.UTC().Format("2006-01-02 15:04:05"))
    return err
}

const sessionColumns = `token, slot_id, user_id, state, promo_code, total_cents, deadline, order_id, created_at, updated_at`

func scanSession(row interface{ Scan(...interface{}) error }) (*model.CheckoutSession, error) {
    var s model.CheckoutSession
    var promo, orderID sql.NullString
    var total sql.NullInt64
    err := row.Scan(&s.Token, &s.SlotID, &s.UserID, &s.State, &promo, &total,
        &s.Deadline, &orderID, &s.CreatedAt, &s.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if promo.Valid {
        v := promo.String
        s.PromoCode = &v
    }
    if total.Valid {
        v := total.Int64
        s.TotalCents = &v
    }
    if orderID.Valid {
        v := orderID.String
        s.OrderID = &v
    }
    return &s, nil
}

// GetByToken loads a session by its opaque token.  Returns
// ErrSessionNotFound when no row exists.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*model.CheckoutSession, error) {
    s, err := scanSession(r.db.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token))
    if err == sql.ErrNoRows {
        return nil, ErrSessionNotFound
    }
    return s, err
}

// GetByTokenTx is GetByToken inside an existing transaction.
func (r *SessionRepo) GetByTokenTx(ctx context.Context, tx *sql.Tx, token string) (*model.CheckoutSession, error) {
    s, err := scanSession(tx.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM sessions WHERE token = ?`, token))
    if err == sql.ErrNoRows {
        return nil, ErrSessionNotFound
    }
    return s, err
}

// GetByOrderIDTx loads the session that owns an order id.  The
// callback handler reads the session transactionally before deciding
// whether to finalize, to avoid a lost update against a racing
// cancel or sweep.
func (r *SessionRepo) GetByOrderIDTx(ctx context.Context, tx *sql.Tx, orderID string) (*model.CheckoutSession, error) {
    s, err := scanSession(tx.QueryRowContext(ctx,
        `SELECT `+sessionColumns+` FROM sessions WHERE order_id = ?`, orderID))
    if err == sql.ErrNoRows {
        return nil, ErrSessionNotFound
    }
    return s, err
}

// ReplaceItemsTx replaces the session's combo selection with the
// given snapshot rows.  Unit prices are the caller's responsibility:
// they are snapshotted from the catalog once, here, and never
// re-read afterwards.
func (r *SessionRepo) ReplaceItemsTx(ctx context.Context, tx *sql.Tx, token string, items []model.ComboItem) error {
    if _, err := tx.ExecContext(ctx, `DELETE FROM session_items WHERE session_token = ?`, token); err != nil {
        return err
    }
    if len(items) == 0 {
        return nil
    }
    q := `INSERT INTO session_items (session_token, product_id, quantity, unit_price_cents) VALUES `
    args := make([]interface{}, 0, len(items)*4)
    for i, it := range items {
        if i > 0 {
            q += ","
        }
        q += "(?, ?, ?, ?)"
        args = append(args, token, it.ProductID, it.Quantity, it.UnitPriceCents)
    }
    _, err := tx.ExecContext(ctx, q, args...)
    return err
}

// ItemsByTokenTx returns the session's combo selection snapshot,
// read inside an existing transaction.
func (r *SessionRepo) ItemsByTokenTx(ctx context.Context, tx *sql.Tx, token string) ([]model.ComboItem, error) {
    const q = `SELECT product_id, quantity, unit_price_cents FROM session_items WHERE session_token = ?`
    rows, err := tx.QueryContext(ctx, q, token)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var items []model.ComboItem
    for rows.Next() {
        var it model.ComboItem
        if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPriceCents); err != nil {
            return nil, err
        }
        items = append(items, it)
    }
    return items, rows.Err()
}

// SetPromoCodeTx stores (or clears, with nil) the promotion code on
// a session still in SELECTING state.
func (r *SessionRepo) SetPromoCodeTx(ctx context.Context, tx *sql.Tx, token string, code *string) (bool, error) {
    const q = `UPDATE sessions SET promo_code = ?, updated_at = UTC_TIMESTAMP()
               WHERE token = ? AND state = ?`
    res, err := tx.ExecContext(ctx, q, code, token, model.SessionSelecting)
    if err != nil {
        return false, err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return affected == 1, nil
}

// FreezeForPaymentTx moves a session from SELECTING to
// AWAITING_PAYMENT, freezing the computed total and binding the
// fresh order id.  The deadline predicate keeps an expired session
// from ever reaching payment.  Reports whether this caller won.
func (r *SessionRepo) FreezeForPaymentTx(ctx context.Context, tx *sql.Tx, token string, totalCents int64, orderID string) (bool, error) {
    const q = `UPDATE sessions
               SET state = ?, total_cents = ?, order_id = ?, updated_at = UTC_TIMESTAMP()
               WHERE token = ? AND state = ? AND deadline > UTC_TIMESTAMP()`
    res, err := tx.ExecContext(ctx, q, model.SessionAwaitingPayment, totalCents, orderID,
        token, model.SessionSelecting)
    if err != nil {
        return false, err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return affected == 1, nil
}

// TransitionTx compare-and-swaps the session state and reports
// whether this caller won.  When requireLive is set the transition
// additionally requires the deadline not to have passed, which is
// how a success callback is prevented from settling an expired
// session even before the sweeper has run.
func (r *SessionRepo) TransitionTx(ctx context.Context, tx *sql.Tx, token, from, to string, requireLive bool) (bool, error) {
    q := `UPDATE sessions SET state = ?, updated_at = UTC_TIMESTAMP()
          WHERE token = ? AND state = ?`
    if requireLive {
        q += ` AND deadline > UTC_TIMESTAMP()`
    }
    res, err := tx.ExecContext(ctx, q, to, token, from)
    if err != nil {
        return false, err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return affected == 1, nil
}

// Deadline returns the stored deadline for a session.  Used by the
// extend operation, which is a strict no-op within the original
// window.
func (r *SessionRepo) Deadline(ctx context.Context, token string) (time.Time, error) {
    var d time.Time
    err := r.db.QueryRowContext(ctx, `SELECT deadline FROM sessions WHERE token = ?`, token).Scan(&d)
    if err == sql.ErrNoRows {
        return time.Time{}, ErrSessionNotFound
    }
    return d, err
}
