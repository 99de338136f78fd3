package repository

import (
    "context"
    "database/sql"
)

// SlotRepo reads slot rows and adjusts the empty-seat counter.  The
// catalog service owns everything else about a slot; the counter is
// the one column this core mutates, always inside the same
// transaction that mutates the seats themselves.
type SlotRepo struct {
    db *sql.DB
}

// NewSlotRepo returns a SlotRepo bound to the provided database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *SlotRepo) DB() *sql.DB { return r.db }

// SlotRecord mirrors the slots table.
type SlotRecord struct {
    ID             uint64
    MovieID        uint64
    CinemaID       uint64
    RoomID         uint64
    StartsAt       sql.NullTime
    BasePriceCents int64
    EmptySeats     uint32
}

// GetByIDTx loads a slot inside an existing transaction.  Returns
// ErrSlotNotFound when no row exists.
func (r *SlotRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*SlotRecord, error) {
    const q = `SELECT id, movie_id, cinema_id, room_id, starts_at, base_price_cents, empty_seats
               FROM slots WHERE id = ?`
    var s SlotRecord
    err := tx.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.MovieID, &s.CinemaID, &s.RoomID, &s.StartsAt, &s.BasePriceCents, &s.EmptySeats,
    )
    if err == sql.ErrNoRows {
        return nil, ErrSlotNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// DecrementEmptySeatsTx subtracts n from the slot's empty-seat
// counter.  The guard keeps the counter from going negative when a
// racing transaction got there first; callers must treat a false
// return as seats no longer being available.
func (r *SlotRepo) DecrementEmptySeatsTx(ctx context.Context, tx *sql.Tx, slotID uint64, n int) (bool, error) {
    const q = `UPDATE slots SET empty_seats = empty_seats - ? WHERE id = ? AND empty_seats >= ?`
    res, err := tx.ExecContext(ctx, q, n, slotID, n)
    if err != nil {
        return false, err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return affected == 1, nil
}

// IncrementEmptySeatsTx returns n seats to the slot's counter when a
// hold is released or expires.
func (r *SlotRepo) IncrementEmptySeatsTx(ctx context.Context, tx *sql.Tx, slotID uint64, n int) error {
    const q = `UPDATE slots SET empty_seats = empty_seats + ? WHERE id = ?`
    _, err := tx.ExecContext(ctx, q, n, slotID)
    return err
}
