package cart

import (
	"context"
	"testing"
)

func TestItemKeys(t *testing.T) {
	pk := ProductKey(42)
	if pk != "42" || pk.IsCombo() {
		t.Errorf("ProductKey(42) = %q, IsCombo=%v", pk, pk.IsCombo())
	}
	ck := ComboKey(7)
	if ck != "combo_7" || !ck.IsCombo() {
		t.Errorf("ComboKey(7) = %q, IsCombo=%v", ck, ck.IsCombo())
	}

	if id, ok := pk.ID(); !ok || id != 42 {
		t.Errorf("ProductKey ID() = %d, %v", id, ok)
	}
	if id, ok := ck.ID(); !ok || id != 7 {
		t.Errorf("ComboKey ID() = %d, %v", id, ok)
	}
	for _, bad := range []ItemKey{"", "combo_", "abc", "combo_abc", "0", "combo_0"} {
		if _, ok := bad.ID(); ok {
			t.Errorf("ID(%q) should not parse", bad)
		}
	}
}

func TestAddRespectsCeiling(t *testing.T) {
	items := Items{}
	key := ProductKey(1)

	for i := uint32(1); i <= 3; i++ {
		if !Add(items, key, 3) {
			t.Fatalf("Add #%d rejected below ceiling", i)
		}
		if items[key] != i {
			t.Fatalf("quantity = %d, want %d", items[key], i)
		}
	}
	if Add(items, key, 3) {
		t.Error("Add above ceiling should be rejected")
	}
	if items[key] != 3 {
		t.Errorf("rejected Add mutated quantity to %d", items[key])
	}
}

func TestAddZeroCeiling(t *testing.T) {
	items := Items{}
	if Add(items, ProductKey(5), 0) {
		t.Error("Add with zero ceiling (out-of-stock product) should be rejected")
	}
	if len(items) != 0 {
		t.Errorf("items = %v, want empty", items)
	}
}

func TestRemoveDropsWholeEntry(t *testing.T) {
	items := Items{ProductKey(1): 3, ComboKey(2): 1}
	Remove(items, ProductKey(1))
	if _, ok := items[ProductKey(1)]; ok {
		t.Error("entry should be gone regardless of quantity")
	}
	if items[ComboKey(2)] != 1 {
		t.Errorf("unrelated entry changed: %v", items)
	}
	// Absent key is a no-op.
	Remove(items, ProductKey(9))
	if len(items) != 1 {
		t.Errorf("items = %v, want one entry", items)
	}
}

func TestDecrementRemovesAtZero(t *testing.T) {
	items := Items{ProductKey(1): 2}
	key := ProductKey(1)

	Decrement(items, key)
	if items[key] != 1 {
		t.Errorf("quantity = %d, want 1", items[key])
	}
	Decrement(items, key)
	if _, ok := items[key]; ok {
		t.Error("entry should be removed at zero")
	}
	// Absent key is a no-op.
	Decrement(items, key)
	if len(items) != 0 {
		t.Errorf("items = %v, want empty", items)
	}
}

func TestMemoryStoreIsolatesBookings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, 1, 10, Items{ProductKey(1): 2}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, 1, 20, Items{ComboKey(3): 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Clearing one booking's cart leaves the other untouched.
	if err := s.Clear(ctx, 1, 10); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := s.Items(ctx, 1, 10)
	if err != nil || len(got) != 0 {
		t.Errorf("Items(1,10) = %v, %v; want empty", got, err)
	}
	got, err = s.Items(ctx, 1, 20)
	if err != nil || got[ComboKey(3)] != 1 {
		t.Errorf("Items(1,20) = %v, %v; want combo_3:1", got, err)
	}
}

func TestMemoryStoreCopiesOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := Items{ProductKey(1): 1}
	_ = s.Set(ctx, 1, 10, in)
	in[ProductKey(1)] = 99 // must not leak into the store

	got, _ := s.Items(ctx, 1, 10)
	if got[ProductKey(1)] != 1 {
		t.Errorf("stored quantity = %d, want 1", got[ProductKey(1)])
	}
	got[ProductKey(1)] = 50 // must not leak back either
	again, _ := s.Items(ctx, 1, 10)
	if again[ProductKey(1)] != 1 {
		t.Errorf("quantity after external mutation = %d, want 1", again[ProductKey(1)])
	}
}

func TestMemoryStoreSetEmptyRemovesEntry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Set(ctx, 1, 10, Items{ProductKey(1): 1})
	_ = s.Set(ctx, 1, 10, Items{})
	got, _ := s.Items(ctx, 1, 10)
	if len(got) != 0 {
		t.Errorf("Items = %v, want empty after empty Set", got)
	}
}
