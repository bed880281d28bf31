// Package clock supplies the reference instant for booking
// classification and availability queries.  Every operation fetches
// one (today, now) pair from a Clock and threads it through all of
// its comparisons, so a single request never mixes two readings of
// the wall clock across a date or slot boundary.
package clock

import "time"

// Clock yields the current instant in the restaurant's local
// timezone.  Repositories and handlers receive a Clock rather than
// calling time.Now directly so that classification logic is
// deterministic in tests.
type Clock interface {
	Now() time.Time
}

// System is the production clock: time.Now in a fixed location.
type System struct {
	Loc *time.Location
}

// NewSystem builds a System clock for the named IANA timezone,
// falling back to time.Local when the name is empty or unknown.
func NewSystem(tz string) System {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return System{Loc: loc}
		}
	}
	return System{Loc: time.Local}
}

func (s System) Now() time.Time {
	loc := s.Loc
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// Fixed is a clock frozen at a single instant, for tests.
type Fixed struct {
	At time.Time
}

func (f Fixed) Now() time.Time { return f.At }

// Split separates an instant into the calendar date at midnight and
// the wall-clock time of day as "HH:MM:SS".  The string form compares
// lexically in the same order as SQL TIME values, so the pair can be
// used both in Go comparisons and as query parameters.
func Split(t time.Time) (time.Time, string) {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return date, t.Format("15:04:05")
}
