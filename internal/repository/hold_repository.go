package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

// HoldRepo provides data access to holds and their seat sets.  One
// hold row exists per (slot, checkout session); the claimed seats
// live in hold_seats.  Expiry is always decided by comparing the
// stored expires_at against the database clock at read time; there
// is no timer anywhere.  All timestamps are UTC.
type HoldRepo struct {
    db *sql.DB
}

// NewHoldRepo returns a HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

// CreateTx inserts a hold and its hold_seats rows within the given
// transaction and populates the generated ID on the record.
func (r *HoldRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.Hold, seatIDs []uint64) error {
    const q = `INSERT INTO holds (slot_id, session_token, status, expires_at)
               VALUES (?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, h.SlotID, h.SessionToken, h.Status,
        h.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    h.ID = uint64(id)

    if len(seatIDs) == 0 {
        return nil
    }
    ins := `INSERT INTO hold_seats (hold_id, seat_id) VALUES `
    args := make([]interface{}, 0, len(seatIDs)*2)
    for i, sid := range seatIDs {
        if i > 0 {
            ins += ","
        }
        ins += "(?, ?)"
        args = append(args, h.ID, sid)
    }
    _, err = tx.ExecContext(ctx, ins, args...)
    return err
}

// GetBySessionTx loads the hold owned by a checkout session.
// Returns ErrHoldNotFound when the session has no hold.
func (r *HoldRepo) GetBySessionTx(ctx context.Context, tx *sql.Tx, sessionToken string) (*model.Hold, error) {
    const q = `SELECT id, slot_id, session_token, status, expires_at, created_at
               FROM holds WHERE session_token = ?`
    var h model.Hold
    err := tx.QueryRowContext(ctx, q, sessionToken).Scan(
        &h.ID, &h.SlotID, &h.SessionToken, &h.Status, &h.ExpiresAt, &h.CreatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrHoldNotFound
    }
    if err != nil {
        return nil, err
    }
    return &h, nil
}

// SeatIDsTx returns the seat ids claimed by a hold.
func (r *HoldRepo) SeatIDsTx(ctx context.Context, tx *sql.Tx, holdID uint64) ([]uint64, error) {
    rows, err := tx.QueryContext(ctx, `SELECT seat_id FROM hold_seats WHERE hold_id = ?`, holdID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        ids = append(ids, id)
    }
    return ids, rows.Err()
}

// TransitionTx compare-and-swaps the hold status and reports whether
// this caller won the transition.  Exactly one of any number of
// concurrent callers (release, expiry sweep, settlement) observes
// true; the rest see false and must treat the operation as a no-op.
func (r *HoldRepo) TransitionTx(ctx context.Context, tx *sql.Tx, holdID uint64, from, to string) (bool, error) {
    const q = `UPDATE holds SET status = ? WHERE id = ? AND status = ?`
    res, err := tx.ExecContext(ctx, q, to, holdID, from)
    if err != nil {
        return false, err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return affected == 1, nil
}

// DueHolds returns active holds whose deadline has passed, for the
// expiry sweeper.  The limit bounds the work done per sweep tick.
func (r *HoldRepo) DueHolds(ctx context.Context, limit int) ([]model.Hold, error) {
    const q = `SELECT id, slot_id, session_token, status, expires_at, created_at
               FROM holds
               WHERE status = ? AND expires_at <= UTC_TIMESTAMP()
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, model.HoldActive, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var due []model.Hold
    for rows.Next() {
        var h model.Hold
        if err := rows.Scan(&h.ID, &h.SlotID, &h.SessionToken, &h.Status, &h.ExpiresAt, &h.CreatedAt); err != nil {
            return nil, err
        }
        due = append(due, h)
    }
    return due, rows.Err()
}

// DueHoldsBySlotTx returns the slot's active-but-expired holds for
// the on-access sweep that runs before availability checks.
func (r *HoldRepo) DueHoldsBySlotTx(ctx context.Context, tx *sql.Tx, slotID uint64) ([]model.Hold, error) {
    const q = `SELECT id, slot_id, session_token, status, expires_at, created_at
               FROM holds
               WHERE slot_id = ? AND status = ? AND expires_at <= UTC_TIMESTAMP()`
    rows, err := tx.QueryContext(ctx, q, slotID, model.HoldActive)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var due []model.Hold
    for rows.Next() {
        var h model.Hold
        if err := rows.Scan(&h.ID, &h.SlotID, &h.SessionToken, &h.Status, &h.ExpiresAt, &h.CreatedAt); err != nil {
            return nil, err
        }
        due = append(due, h)
    }
    return due, rows.Err()
}
