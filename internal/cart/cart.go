// Package cart implements the per-user staging area for order items.
// A cart is a map from booking ID to item quantities; nothing is
// written to MySQL until the cart is confirmed into an order.
package cart

import (
	"strconv"
	"strings"
)

// MaxComboQuantity caps how many units of one combo a cart may hold.
// Combos carry no stock of their own, so the ceiling is fixed.
const MaxComboQuantity = 3

// ItemKey identifies a cart entry: a bare decimal product ID, or a
// combo ID with the "combo_" prefix.
type ItemKey string

const comboPrefix = "combo_"

// ProductKey builds the cart key for a product.
func ProductKey(productID uint64) ItemKey {
	return ItemKey(strconv.FormatUint(productID, 10))
}

// ComboKey builds the cart key for a combo.
func ComboKey(comboID uint64) ItemKey {
	return ItemKey(comboPrefix + strconv.FormatUint(comboID, 10))
}

// IsCombo reports whether the key refers to a combo.
func (k ItemKey) IsCombo() bool { return strings.HasPrefix(string(k), comboPrefix) }

// ID parses the numeric ID out of the key.  ok is false for
// malformed keys, which callers skip.
func (k ItemKey) ID() (uint64, bool) {
	s := string(k)
	if k.IsCombo() {
		s = s[len(comboPrefix):]
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Items is one booking's staged quantities.
type Items map[ItemKey]uint32

// Add increments the key's quantity by one, subject to the ceiling.
// It reports whether the increment was applied; a false return leaves
// the map untouched.
func Add(items Items, key ItemKey, ceiling uint32) bool {
	if items[key] >= ceiling {
		return false
	}
	items[key]++
	return true
}

// Remove drops the key's entry outright, whatever its quantity.
func Remove(items Items, key ItemKey) {
	delete(items, key)
}

// Decrement lowers the key's quantity by one and deletes the entry
// when it reaches zero.  Decrementing an absent key is a no-op.
func Decrement(items Items, key ItemKey) {
	q, ok := items[key]
	if !ok {
		return
	}
	if q <= 1 {
		delete(items, key)
		return
	}
	items[key] = q - 1
}
