package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/cinema-booking-core/internal/model"
)

// SeatRepo provides data access to seats.  Seat status mutations are
// compare-and-swap updates guarded by the current status, so two
// transactions racing over overlapping seat sets cannot both win:
// the loser observes a row count short of its request and rolls
// back.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo returns a SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// placeholders renders "?, ?, ?" for n parameters.
func placeholders(n int) string {
    return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// ListByRoom returns all seats of a room joined with their type
// multiplier, ordered for stable seat-map rendering.
func (r *SeatRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
    const q = `SELECT s.id, s.room_id, s.row_label, s.seat_number, s.seat_type_id, t.multiplier_pct, s.status
               FROM seats s
               JOIN seat_types t ON t.id = s.seat_type_id
               WHERE s.room_id = ?
               ORDER BY s.row_label, s.seat_number`
    rows, err := r.db.QueryContext(ctx, q, roomID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []model.Seat
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.SeatTypeID, &s.MultiplierPct, &s.Status); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    return seats, rows.Err()
}

// GetByIDsTx loads the given seats with their type multipliers inside
// an existing transaction.  The result order is unspecified.
func (r *SeatRepo) GetByIDsTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64) ([]model.Seat, error) {
    if len(seatIDs) == 0 {
        return nil, nil
    }
    q := `SELECT s.id, s.room_id, s.row_label, s.seat_number, s.seat_type_id, t.multiplier_pct, s.status
          FROM seats s
          JOIN seat_types t ON t.id = s.seat_type_id
          WHERE s.id IN (` + placeholders(len(seatIDs)) + `)`
    args := make([]interface{}, 0, len(seatIDs))
    for _, id := range seatIDs {
        args = append(args, id)
    }
    rows, err := tx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var seats []model.Seat
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.ID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.SeatTypeID, &s.MultiplierPct, &s.Status); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    return seats, rows.Err()
}

// ClaimTx flips the listed seats AVAILABLE→HELD in a single guarded
// UPDATE and reports how many rows actually changed.  The room
// predicate pins the claim to the slot being booked: a seat id from
// another room matches zero rows, exactly like a seat that is
// already held.  Callers must roll back on a count short of
// len(seatIDs) to leave all seats untouched.
func (r *SeatRepo) ClaimTx(ctx context.Context, tx *sql.Tx, roomID uint64, seatIDs []uint64) (int64, error) {
    if len(seatIDs) == 0 {
        return 0, nil
    }
    q := `UPDATE seats SET status = ? WHERE status = ? AND room_id = ? AND id IN (` + placeholders(len(seatIDs)) + `)`
    args := make([]interface{}, 0, len(seatIDs)+3)
    args = append(args, model.SeatHeld, model.SeatAvailable, roomID)
    for _, id := range seatIDs {
        args = append(args, id)
    }
    res, err := tx.ExecContext(ctx, q, args...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// TransitionStatusTx moves every listed seat from one status to
// another in a single guarded UPDATE and reports how many rows
// actually changed.  A count short of len(seatIDs) means at least
// one seat was not in the expected status; callers must roll back
// the transaction in that case to leave all seats untouched.
func (r *SeatRepo) TransitionStatusTx(ctx context.Context, tx *sql.Tx, seatIDs []uint64, from, to string) (int64, error) {
    if len(seatIDs) == 0 {
        return 0, nil
    }
    q := `UPDATE seats SET status = ? WHERE status = ? AND id IN (` + placeholders(len(seatIDs)) + `)`
    args := make([]interface{}, 0, len(seatIDs)+2)
    args = append(args, to, from)
    for _, id := range seatIDs {
        args = append(args, id)
    }
    res, err := tx.ExecContext(ctx, q, args...)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
