// Package repository defines the data access layer and the sentinel
// errors shared across repositories.  Sentinels let handlers and
// services distinguish failure scenarios without string matching:
// ErrSeatUnavailable maps to a 409 the customer can recover from by
// picking other seats, ErrHoldExpired/ErrSessionExpired are terminal
// for the session, and not-found sentinels map to 404.
package repository

import "errors"

// ErrSeatUnavailable is returned when a requested seat is already
// held by another session, already sold, or broken.  The client may
// pick another seat; the operation is never retried automatically.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrSlotNotFound is returned when the referenced slot does not exist.
var ErrSlotNotFound = errors.New("slot not found")

// ErrHoldNotFound is returned when no hold exists for the session.
var ErrHoldNotFound = errors.New("hold not found")

// ErrHoldExpired is returned when the hold's deadline has passed.
var ErrHoldExpired = errors.New("hold expired")

// ErrSessionNotFound is returned when no checkout session matches
// the supplied token or order id.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned when the session deadline has passed.
var ErrSessionExpired = errors.New("session expired")

// ErrPromotionNotFound is returned when a promotion code does not
// exist or is soft-deleted.
var ErrPromotionNotFound = errors.New("promotion not found")

// ErrProductNotFound is returned when a combo references a product
// that does not exist or is soft-deleted.
var ErrProductNotFound = errors.New("product not found")
