// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers to distinguish between failure scenarios: for
// example, ErrForbidden indicates that the current user is not
// authorized to touch a resource owned by someone else, while
// ErrConflict signals that an operation cannot proceed because of
// existing dependent records (e.g. deleting a table with active
// bookings).
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as editing a time slot that
// still has future bookings.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrPendingBooking is returned by booking creation when the user
// already has a booking awaiting staff review.  A user can have at
// most one pending booking at a time.
var ErrPendingBooking = errors.New("user has a pending booking")

// ErrTableTaken is returned when, at commit time, one of the
// requested tables is already attached to a non-rejected booking for
// the same date and time slot.  The availability check and the insert
// run in a single transaction, so two concurrent requests for the
// same table cannot both succeed.
var ErrTableTaken = errors.New("table already booked for this slot")

// ErrOutOfStock is returned by the atomic stock decrement when the
// remaining quantity is lower than the amount requested.  The whole
// order confirmation rolls back when any line hits this.
var ErrOutOfStock = errors.New("insufficient stock")

// ErrCodeSpaceExhausted is returned when the unique-code retry budget
// runs out.  With a 36^9 code space this is unreachable in practice
// and indicates a configuration or data problem, so it surfaces as a
// hard internal error rather than being retried indefinitely.
var ErrCodeSpaceExhausted = errors.New("could not generate a unique code")
