package model

import "testing"

func TestNextTableNumber(t *testing.T) {
	tests := []struct {
		name  string
		taken []uint32
		want  uint32
	}{
		{"empty", nil, 1},
		{"dense", []uint32{1, 2, 3}, 4},
		{"gap reused", []uint32{1, 3}, 2},
		{"deleted middle", []uint32{1, 2, 3, 5, 6}, 4},
		{"unordered", []uint32{6, 1, 3, 2}, 4},
		{"one missing at start", []uint32{2, 3}, 1},
	}
	for _, tt := range tests {
		if got := NextTableNumber(tt.taken); got != tt.want {
			t.Errorf("%s: NextTableNumber(%v) = %d, want %d", tt.name, tt.taken, got, tt.want)
		}
	}
}

func TestTimeSlotValidWindow(t *testing.T) {
	tests := []struct {
		start, end string
		want       bool
	}{
		{"12:00:00", "14:00:00", true},
		{"14:00:00", "12:00:00", false},
		{"12:00:00", "12:00:00", false},
		{"09:30:00", "09:30:01", true},
	}
	for _, tt := range tests {
		s := TimeSlot{StartTime: tt.start, EndTime: tt.end}
		if got := s.ValidWindow(); got != tt.want {
			t.Errorf("ValidWindow(%s-%s) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}
