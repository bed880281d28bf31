package model

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var lunch = TimeSlot{ID: 1, Name: "Lunch", StartTime: "12:00:00", EndTime: "14:00:00"}

func TestClassifyBookingRejectedWinsRegardlessOfTime(t *testing.T) {
	b := Booking{Date: day("2026-09-10"), Decision: DecisionRejected}
	for _, today := range []string{"2026-09-01", "2026-09-10", "2026-09-20"} {
		if got := ClassifyBooking(b, lunch, day(today), "13:00:00"); got != StateRejected {
			t.Errorf("ClassifyBooking(rejected, today=%s) = %v, want rejected", today, got)
		}
	}
}

func TestClassifyBookingUndecided(t *testing.T) {
	b := Booking{Date: day("2026-09-10"), Decision: DecisionUndecided}

	tests := []struct {
		today string
		now   string
		want  BookingState
	}{
		{"2026-09-09", "23:59:59", StatePending},     // day before
		{"2026-09-10", "11:00:00", StatePending},     // before slot
		{"2026-09-10", "14:00:00", StatePending},     // exactly at end, window not elapsed
		{"2026-09-10", "14:00:01", StateUnconfirmed}, // just past end
		{"2026-09-11", "00:00:00", StateUnconfirmed}, // day after
	}
	for _, tt := range tests {
		if got := ClassifyBooking(b, lunch, day(tt.today), tt.now); got != tt.want {
			t.Errorf("ClassifyBooking(undecided, %s %s) = %v, want %v", tt.today, tt.now, got, tt.want)
		}
	}
}

func TestClassifyBookingApproved(t *testing.T) {
	b := Booking{Date: day("2026-09-10"), Decision: DecisionApproved}

	tests := []struct {
		today string
		now   string
		want  BookingState
	}{
		{"2026-09-09", "13:00:00", StateFuture},      // day before
		{"2026-09-10", "11:59:59", StateFuture},      // same day, before start
		{"2026-09-10", "12:00:00", StateCurrent},     // exactly at start
		{"2026-09-10", "13:30:00", StateCurrent},     // inside window
		{"2026-09-10", "14:00:00", StateCurrent},     // exactly at end
		{"2026-09-10", "14:00:01", StateHistorical},  // just past end
		{"2026-09-11", "09:00:00", StateHistorical},  // day after
		{"2026-10-01", "13:00:00", StateHistorical},  // long past
	}
	for _, tt := range tests {
		if got := ClassifyBooking(b, lunch, day(tt.today), tt.now); got != tt.want {
			t.Errorf("ClassifyBooking(approved, %s %s) = %v, want %v", tt.today, tt.now, got, tt.want)
		}
	}
}

// Exactly one state must hold for any (decision, instant) pair.  The
// classifier is a single switch so this mostly guards against future
// edits splitting the decision space.
func TestClassifyBookingExhaustive(t *testing.T) {
	decisions := []Decision{DecisionUndecided, DecisionApproved, DecisionRejected}
	instants := []struct {
		today string
		now   string
	}{
		{"2026-09-09", "13:00:00"},
		{"2026-09-10", "11:00:00"},
		{"2026-09-10", "13:00:00"},
		{"2026-09-10", "15:00:00"},
		{"2026-09-11", "13:00:00"},
	}
	for _, d := range decisions {
		b := Booking{Date: day("2026-09-10"), Decision: d}
		for _, in := range instants {
			got := ClassifyBooking(b, lunch, day(in.today), in.now)
			if got.String() == "unknown" {
				t.Errorf("ClassifyBooking(%s, %s %s) returned unknown state", d, in.today, in.now)
			}
		}
	}
}

func TestBookingStateString(t *testing.T) {
	tests := []struct {
		state BookingState
		want  string
	}{
		{StatePending, "pending"},
		{StateUnconfirmed, "unconfirmed"},
		{StateRejected, "rejected"},
		{StateFuture, "future"},
		{StateCurrent, "current"},
		{StateHistorical, "historical"},
		{BookingState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
