package handler

import (
	"testing"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/cart"
	"github.com/iliyamo/restaurant-table-reservation/internal/clock"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

func TestAvailabilityStatus(t *testing.T) {
	slot := model.TimeSlot{ID: 1, Name: "Almuerzo"}
	table := model.Table{ID: 1, Number: 1, Capacity: 4}

	cases := []struct {
		name       string
		slots      []model.TimeSlot
		slotChosen bool
		tables     []model.Table
		want       string
	}{
		{"no slots left", nil, false, nil, StatusNoSlots},
		{"no slots even with slot chosen", nil, true, nil, StatusNoSlots},
		{"slots listed, none chosen", []model.TimeSlot{slot}, false, nil, StatusAvailable},
		{"chosen slot has free tables", []model.TimeSlot{slot}, true, []model.Table{table}, StatusAvailable},
		{"chosen slot fully booked", []model.TimeSlot{slot}, true, nil, StatusSlotFull},
	}
	for _, tc := range cases {
		if got := availabilityStatus(tc.slots, tc.slotChosen, tc.tables); got != tc.want {
			t.Errorf("%s: availabilityStatus = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// Request dates parse as UTC midnight while the clock's today is
// midnight in the restaurant's location.  The handlers compare the two
// by calendar components; comparing them as instants would reject
// "today" outright in any negative-offset timezone and never match it
// in a positive one.
func TestRequestDateAgainstLocalToday(t *testing.T) {
	cases := []struct {
		name   string
		offset int // seconds east of UTC
	}{
		{"buenos aires", -3 * 3600},
		{"utc", 0},
		{"tokyo", 9 * 3600},
	}
	for _, tc := range cases {
		loc := time.FixedZone(tc.name, tc.offset)
		clk := clock.Fixed{At: time.Date(2026, 9, 1, 12, 0, 0, 0, loc)}
		today, _ := clock.Split(clk.Now())

		date, ok := parseDate("2026-09-01")
		if !ok {
			t.Fatalf("%s: parseDate failed", tc.name)
		}
		if model.DateBefore(date, today) {
			t.Errorf("%s: today's date classified as past", tc.name)
		}
		if !model.SameDate(date, today) {
			t.Errorf("%s: today's date not recognized as today", tc.name)
		}

		tomorrow, _ := parseDate("2026-09-02")
		if model.DateBefore(tomorrow, today) || model.SameDate(tomorrow, today) {
			t.Errorf("%s: tomorrow misclassified", tc.name)
		}
		yesterday, _ := parseDate("2026-08-31")
		if !model.DateBefore(yesterday, today) {
			t.Errorf("%s: yesterday not classified as past", tc.name)
		}
	}
}

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"12:00", "12:00:00", true},
		{"09:30:15", "09:30:15", true},
		{"  18:45 ", "18:45:00", true},
		{"12", "", false},
		{"12:00:00:00", "", false},
		{"ab:cd", "", false},
		{"12-00-00", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeTime(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("normalizeTime(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDedupeIDs(t *testing.T) {
	got := dedupeIDs([]uint64{3, 1, 3, 2, 1})
	want := []uint64{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("dedupeIDs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dedupeIDs = %v, want %v", got, want)
		}
	}
	if out := dedupeIDs(nil); len(out) != 0 {
		t.Errorf("dedupeIDs(nil) = %v, want empty", out)
	}
}

func TestCartItemReqItemKey(t *testing.T) {
	cases := []struct {
		name string
		req  cartItemReq
		want cart.ItemKey
		ok   bool
	}{
		{"product only", cartItemReq{ProductID: 7}, cart.ProductKey(7), true},
		{"combo only", cartItemReq{ComboID: 3}, cart.ComboKey(3), true},
		{"neither", cartItemReq{}, "", false},
		{"both", cartItemReq{ProductID: 7, ComboID: 3}, "", false},
	}
	for _, tc := range cases {
		got, ok := tc.req.itemKey()
		if got != tc.want || ok != tc.ok {
			t.Errorf("%s: itemKey() = %q, %v; want %q, %v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}
