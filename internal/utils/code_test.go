package utils

import (
	"strings"
	"testing"
)

func TestNewBookingCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := NewBookingCode()
		if err != nil {
			t.Fatalf("NewBookingCode: %v", err)
		}
		if len(code) != BookingCodeLength {
			t.Fatalf("len(%q) = %d, want %d", code, len(code), BookingCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(bookingCodeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	// 50 draws from a 36^9 space colliding would point at a broken RNG.
	if len(seen) != 50 {
		t.Errorf("got %d distinct codes out of 50", len(seen))
	}
}

func TestNewOrderCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code := NewOrderCode()
		if !strings.HasPrefix(code, "PDD-") {
			t.Fatalf("code %q missing PDD- prefix", code)
		}
		suffix := strings.TrimPrefix(code, "PDD-")
		if len(suffix) != 8 {
			t.Fatalf("suffix %q has length %d, want 8", suffix, len(suffix))
		}
		for _, c := range suffix {
			if !strings.ContainsRune("0123456789ABCDEF", c) {
				t.Fatalf("code %q contains non-hex %q", code, c)
			}
		}
	}
}
