package model

import "time"

// Decision is the staff decision recorded on a booking.  A booking is
// created UNDECIDED and moves to APPROVED or REJECTED exactly once,
// when a staff member reviews it.  Everything else about a booking's
// state (pending, unconfirmed, current, ...) is derived from the
// decision together with the clock; it is never stored.
type Decision string

const (
	DecisionUndecided Decision = "UNDECIDED"
	DecisionApproved  Decision = "APPROVED"
	DecisionRejected  Decision = "REJECTED"
)

// Booking records a user's claim on one or more tables for a date and
// time slot.  The code is a system-generated unique reference shown
// to the guest and used by staff.  Tables attached to the booking
// live in the booking_tables table and must be non-empty.
//
// Fields:
//  ID           – primary key identifier.
//  Code         – unique 9-character alphanumeric reference.
//  Date         – calendar date of the reservation (midnight, no time part).
//  TimeSlotID   – slot within the date.
//  UserID       – owning user.
//  Observations – optional free text from the guest.
//  IssueDate    – date the booking was created; immutable.
//  Decision     – staff decision (UNDECIDED until reviewed).
//  DecisionDate – when the decision was made (nil while UNDECIDED).
type Booking struct {
	ID           uint64     // bookings.id
	Code         string     // bookings.code
	Date         time.Time  // bookings.date
	TimeSlotID   uint64     // bookings.time_slot_id
	UserID       uint64     // bookings.user_id
	Observations string     // bookings.observations
	IssueDate    time.Time  // bookings.issue_date
	Decision     Decision   // bookings.decision
	DecisionDate *time.Time // bookings.decision_date (nullable)
}

// BookingState is the derived lifecycle state of a booking at a given
// instant.  Exactly one state holds for any booking at any time.
type BookingState int

const (
	// StatePending: undecided and the reservation window has not yet
	// fully elapsed; staff can still act on it.
	StatePending BookingState = iota
	// StateUnconfirmed: undecided, but the slot's end time on the
	// booking date is already in the past; staff never acted in time.
	StateUnconfirmed
	// StateRejected: staff rejected the booking.
	StateRejected
	// StateFuture: approved, and the slot has not yet started.
	StateFuture
	// StateCurrent: approved, and the reference instant falls within
	// [start, end] on the booking date.
	StateCurrent
	// StateHistorical: approved, and the slot's end time has passed.
	StateHistorical
)

// String returns the lower-case name used in JSON responses.
func (s BookingState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateUnconfirmed:
		return "unconfirmed"
	case StateRejected:
		return "rejected"
	case StateFuture:
		return "future"
	case StateCurrent:
		return "current"
	case StateHistorical:
		return "historical"
	}
	return "unknown"
}

// ClassifyBooking derives the state of a booking against a single
// (today, now) pair.  The slot supplies the window bounds on the
// booking's date; now is a wall-clock "HH:MM:SS" in the same local
// time source as today.  All callers must fetch today and now once
// per operation and reuse the pair for every comparison, otherwise a
// request straddling midnight could observe contradictory states.
func ClassifyBooking(b Booking, slot TimeSlot, today time.Time, now string) BookingState {
	switch b.Decision {
	case DecisionRejected:
		return StateRejected
	case DecisionUndecided:
		if windowElapsed(b.Date, slot, today, now) {
			return StateUnconfirmed
		}
		return StatePending
	}
	// Approved: refine by time.
	if windowElapsed(b.Date, slot, today, now) {
		return StateHistorical
	}
	if SameDate(b.Date, today) && slot.StartTime <= now {
		return StateCurrent
	}
	return StateFuture
}

// windowElapsed reports whether date+slot.EndTime is in the past.
func windowElapsed(date time.Time, slot TimeSlot, today time.Time, now string) bool {
	if DateBefore(date, today) {
		return true
	}
	return SameDate(date, today) && slot.EndTime < now
}

// SameDate reports whether two instants fall on the same calendar
// date.  Booking dates parsed from requests carry UTC while the
// clock's today carries the restaurant's location, so comparisons must
// look at calendar components, never at the instants themselves.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateBefore reports whether a's calendar date precedes b's,
// location-independent like SameDate.
func DateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
