package model

import "time"

// Hold statuses.  A hold leaves ACTIVE exactly once: RELEASED on
// cancellation or payment failure, EXPIRED when the sweeper wins the
// deadline race, CONSUMED when the seats are sold.
const (
    HoldActive   = "ACTIVE"
    HoldReleased = "RELEASED"
    HoldExpired  = "EXPIRED"
    HoldConsumed = "CONSUMED"
)

// HoldTTL is the fixed time-to-live of a seat hold.  The same
// deadline governs the whole checkout session.
const HoldTTL = 300 * time.Second

// Hold is a time-bounded exclusive claim on a set of seats for one
// slot, scoped to one checkout session.  Seat ids live in the
// hold_seats join table.  At most one active hold may reference a
// given seat at a time.
//
// Fields:
//  ID           – primary key identifier.
//  SlotID       – slot the seats belong to.
//  SessionToken – checkout session owning the hold.
//  Status       – one of the Hold* constants above.
//  ExpiresAt    – deadline; expiry is decided by comparing this
//                 stored timestamp at read time, never by a timer.
//  CreatedAt    – creation timestamp.
type Hold struct {
    ID           uint64    // holds.id
    SlotID       uint64    // holds.slot_id
    SessionToken string    // holds.session_token
    Status       string    // holds.status
    ExpiresAt    time.Time // holds.expires_at
    CreatedAt    time.Time // holds.created_at
}
