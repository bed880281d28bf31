package model

import "testing"

func TestProductEffectivePriceCents(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		promoted bool
		pct      uint8
		want     int64
	}{
		{"no promotion", 1000, false, 50, 1000},
		{"promotion zero pct", 1000, true, 0, 1000},
		{"half off", 1000, true, 50, 500},
		{"quarter off rounds down", 999, true, 25, 750}, // 999 - 249
		{"full discount", 1000, true, 100, 0},
	}
	for _, tt := range tests {
		p := Product{PriceCents: tt.price, OnPromotion: tt.promoted, DiscountPercentage: tt.pct}
		if got := p.EffectivePriceCents(); got != tt.want {
			t.Errorf("%s: EffectivePriceCents() = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestComboEffectivePriceCents(t *testing.T) {
	co := Combo{PriceCents: 2500, OnPromotion: true, DiscountPercentage: 80}
	if got := co.EffectivePriceCents(); got != 500 {
		t.Errorf("EffectivePriceCents() = %d, want 500", got)
	}
	co.OnPromotion = false
	if got := co.EffectivePriceCents(); got != 2500 {
		t.Errorf("EffectivePriceCents() without promotion = %d, want 2500", got)
	}
}

func TestValidateRating(t *testing.T) {
	if errs := ValidateRating("Great", "Loved it", 5); len(errs) != 0 {
		t.Errorf("valid rating produced errors: %v", errs)
	}
	errs := ValidateRating("", "", 0)
	for _, field := range []string{"title", "text", "rating"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for field %q", field)
		}
	}
	if errs := ValidateRating("t", "x", 6); len(errs) != 1 {
		t.Errorf("rating 6 should fail only the rating field, got %v", errs)
	}
}
