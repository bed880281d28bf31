package model

// TimeSlot defines a named recurring daily time window during which
// tables can be reserved (e.g. "Morning" 09:00–12:00).  Start and end
// are wall-clock times of day without a date component; they are
// stored as TIME columns and carried here in "HH:MM:SS" form so that
// lexical comparison matches SQL TIME comparison.  A slot is
// associated with a subset of tables via the time_slot_tables table.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique human label of the window.
//  StartTime – opening wall-clock time ("HH:MM:SS"), strictly before EndTime.
//  EndTime   – closing wall-clock time ("HH:MM:SS").
type TimeSlot struct {
	ID        uint64 // time_slots.id
	Name      string // time_slots.name
	StartTime string // time_slots.start_time
	EndTime   string // time_slots.end_time
}

// ValidWindow reports whether the slot's window is well formed:
// both bounds present and start strictly before end.
func (s TimeSlot) ValidWindow() bool {
	return s.StartTime != "" && s.EndTime != "" && s.StartTime < s.EndTime
}
