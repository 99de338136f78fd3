package model

import "time"

// Checkout session states.  SELECTING and AWAITING_PAYMENT are the
// only non-terminal states; every transition out of them is a
// compare-and-swap so that concurrent finalizers (callback, sweeper,
// cancel) cannot both win.
const (
    SessionSelecting       = "SELECTING"
    SessionAwaitingPayment = "AWAITING_PAYMENT"
    SessionSettled         = "SETTLED"
    SessionFailed          = "FAILED"
    SessionExpired         = "EXPIRED"
    SessionCancelled       = "CANCELLED"
)

// CheckoutSession is the aggregate root for one purchase attempt.
// It is keyed by an opaque server-generated token; nothing about the
// session is trusted from the client.  The total is frozen when the
// session moves to AWAITING_PAYMENT and is never recomputed from
// live catalog prices after that.
//
// Fields:
//  Token      – opaque 64-hex identifier handed to the client.
//  SlotID     – slot being purchased.
//  UserID     – authenticated customer who opened the session.
//  State      – one of the Session* constants above.
//  PromoCode  – optional promotion code applied to the session.
//  TotalCents – frozen grand total; nil until AWAITING_PAYMENT.
//  Deadline   – wall-clock deadline shared with the hold.
//  OrderID    – gateway transaction reference; nil until payment.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last state change.
type CheckoutSession struct {
    Token      string     // sessions.token
    SlotID     uint64     // sessions.slot_id
    UserID     uint64     // sessions.user_id
    State      string     // sessions.state
    PromoCode  *string    // sessions.promo_code (nullable)
    TotalCents *int64     // sessions.total_cents (nullable)
    Deadline   time.Time  // sessions.deadline
    OrderID    *string    // sessions.order_id (nullable)
    CreatedAt  time.Time  // sessions.created_at
    UpdatedAt  time.Time  // sessions.updated_at
}

// Terminal reports whether the session can no longer change state.
func (s *CheckoutSession) Terminal() bool {
    switch s.State {
    case SessionSettled, SessionFailed, SessionExpired, SessionCancelled:
        return true
    }
    return false
}
