package repository

import (
	"testing"
	"time"
)

func TestBookingDetailClassify(t *testing.T) {
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		decision string
		date     string
		now      string
		want     string
	}{
		{"undecided upcoming", "UNDECIDED", "2026-09-02", "13:00:00", "pending"},
		{"undecided elapsed", "UNDECIDED", "2026-08-31", "13:00:00", "unconfirmed"},
		{"rejected", "REJECTED", "2026-09-02", "13:00:00", "rejected"},
		{"approved tomorrow", "APPROVED", "2026-09-02", "13:00:00", "future"},
		{"approved running", "APPROVED", "2026-09-01", "13:00:00", "current"},
		{"approved elapsed", "APPROVED", "2026-09-01", "14:30:00", "historical"},
	}
	for _, tc := range cases {
		d := BookingDetail{
			Decision:  tc.decision,
			Date:      tc.date,
			StartTime: "12:00:00",
			EndTime:   "14:00:00",
		}
		d.Classify(today, tc.now)
		if d.State != tc.want {
			t.Errorf("%s: State = %q, want %q", tc.name, d.State, tc.want)
		}
	}

	// A malformed date leaves the state empty rather than guessing.
	d := BookingDetail{Decision: "APPROVED", Date: "not-a-date"}
	d.Classify(today, "13:00:00")
	if d.State != "" {
		t.Errorf("State = %q for malformed date, want empty", d.State)
	}
}

func TestBookingDetailOrderable(t *testing.T) {
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	now := "13:00:00"

	detail := func(decision, date, end string) BookingDetail {
		return BookingDetail{Decision: decision, Date: date, EndTime: end}
	}

	cases := []struct {
		name string
		d    BookingDetail
		want bool
	}{
		{"approved tomorrow", detail("APPROVED", "2026-09-02", "14:00:00"), true},
		{"approved today, slot running", detail("APPROVED", "2026-09-01", "14:00:00"), true},
		{"approved today, slot ends exactly now", detail("APPROVED", "2026-09-01", "13:00:00"), true},
		{"approved today, slot elapsed", detail("APPROVED", "2026-09-01", "12:59:59"), false},
		{"approved yesterday", detail("APPROVED", "2026-08-31", "14:00:00"), false},
		{"undecided tomorrow", detail("UNDECIDED", "2026-09-02", "14:00:00"), false},
		{"rejected tomorrow", detail("REJECTED", "2026-09-02", "14:00:00"), false},
	}
	for _, tc := range cases {
		if got := tc.d.Orderable(today, now); got != tc.want {
			t.Errorf("%s: Orderable = %v, want %v", tc.name, got, tc.want)
		}
	}
}
