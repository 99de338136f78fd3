package model

import "time"

// Slot identifies a movie playing in a room at a specific time
// window.  The catalog service owns slot rows; this core only reads
// them and adjusts the empty-seat counter as holds are created and
// released.
//
// Fields:
//  ID             – primary key identifier.
//  MovieID        – movie being shown (catalog reference).
//  CinemaID       – cinema the room belongs to (catalog reference).
//  RoomID         – room in which the slot plays.
//  StartsAt       – start of the time window.
//  BasePriceCents – base ticket price in the smallest currency unit.
//  EmptySeats     – current count of seats not held or sold.
type Slot struct {
    ID             uint64    // slots.id
    MovieID        uint64    // slots.movie_id
    CinemaID       uint64    // slots.cinema_id
    RoomID         uint64    // slots.room_id
    StartsAt       time.Time // slots.starts_at
    BasePriceCents int64     // slots.base_price_cents
    EmptySeats     uint32    // slots.empty_seats
}
