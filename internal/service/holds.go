package service

import (
    "context"
    "database/sql"

    "github.com/iliyamo/cinema-booking-core/internal/model"
    "github.com/iliyamo/cinema-booking-core/internal/repository"
)

// HoldManager owns the one state transition a hold can make out of
// ACTIVE.  Checkout (cancel), settlement (consume/release) and the
// expiry sweeper all go through TakeoverTx, so the compare-and-swap
// on the hold row is the single arbiter of who wins a race: one
// caller gets the seat list back, everyone else gets a no-op.
type HoldManager struct {
    Holds *repository.HoldRepo
    Seats *repository.SeatRepo
    Slots *repository.SlotRepo
}

// TakeoverTx transitions the session's hold from ACTIVE to the given
// terminal status and applies the matching seat/counter mutation in
// the same transaction:
//
//	HoldConsumed             – seats HELD→SOLD, counter stays decremented
//	HoldReleased/HoldExpired – seats HELD→AVAILABLE, counter restored
//
// It returns the seat ids and true when this caller won the
// transition.  A missing hold or a hold no longer ACTIVE returns
// (nil, false, nil): safe to call twice, the second call is a no-op.
func (m *HoldManager) TakeoverTx(ctx context.Context, tx *sql.Tx, sessionToken, to string) ([]uint64, bool, error) {
    hold, err := m.Holds.GetBySessionTx(ctx, tx, sessionToken)
    if err == repository.ErrHoldNotFound {
        return nil, false, nil
    }
    if err != nil {
        return nil, false, err
    }
    won, err := m.Holds.TransitionTx(ctx, tx, hold.ID, model.HoldActive, to)
    if err != nil || !won {
        return nil, false, err
    }
    seatIDs, err := m.Holds.SeatIDsTx(ctx, tx, hold.ID)
    if err != nil {
        return nil, false, err
    }
    if to == model.HoldConsumed {
        // Sold seats never return to the pool; the empty-seat
        // counter stays decremented permanently.
        if _, err := m.Seats.TransitionStatusTx(ctx, tx, seatIDs, model.SeatHeld, model.SeatSold); err != nil {
            return nil, false, err
        }
        return seatIDs, true, nil
    }
    if _, err := m.Seats.TransitionStatusTx(ctx, tx, seatIDs, model.SeatHeld, model.SeatAvailable); err != nil {
        return nil, false, err
    }
    if err := m.Slots.IncrementEmptySeatsTx(ctx, tx, hold.SlotID, len(seatIDs)); err != nil {
        return nil, false, err
    }
    return seatIDs, true, nil
}

// SweepSlotTx expires the slot's overdue holds before an
// availability check, so a seat whose hold lapsed a moment ago is
// holdable again without waiting for the background sweeper.
func (m *HoldManager) SweepSlotTx(ctx context.Context, tx *sql.Tx, slotID uint64) error {
    due, err := m.Holds.DueHoldsBySlotTx(ctx, tx, slotID)
    if err != nil {
        return err
    }
    for _, h := range due {
        if _, _, err := m.TakeoverTx(ctx, tx, h.SessionToken, model.HoldExpired); err != nil {
            return err
        }
    }
    return nil
}
