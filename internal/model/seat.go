package model

// Seat statuses.  HELD and SOLD are mutually exclusive per seat at
// any instant; BROKEN seats are never selectable.
const (
    SeatAvailable = "AVAILABLE"
    SeatHeld      = "HELD"
    SeatSold      = "SOLD"
    SeatBroken    = "BROKEN"
)

// Seat belongs to exactly one room.  Its price is derived from the
// slot's base price and the seat type's multiplier.
//
// Fields:
//  ID            – primary key identifier.
//  RoomID        – room the seat belongs to.
//  RowLabel      – row label such as "A" or "B".
//  SeatNumber    – seat number within the row.
//  SeatTypeID    – reference to the seat type carrying the multiplier.
//  MultiplierPct – price multiplier in integer percent (150 = 1.5x),
//                  joined in from seat_types on read.
//  Status        – one of the Seat* constants above.
type Seat struct {
    ID            uint64 // seats.id
    RoomID        uint64 // seats.room_id
    RowLabel      string // seats.row_label
    SeatNumber    uint32 // seats.seat_number
    SeatTypeID    uint64 // seats.seat_type_id
    MultiplierPct int64  // seat_types.multiplier_pct
    Status        string // seats.status
}
