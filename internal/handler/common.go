package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

const dateLayout = "2006-01-02"

// classifyBookings fills each detail's derived state against one
// clock reading and returns the slice for inline use.
func classifyBookings(details []repository.BookingDetail, today time.Time, now string) []repository.BookingDetail {
	for i := range details {
		details[i].Classify(today, now)
	}
	return details
}

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWT numeric claims arrive as float64; older tokens may
// carry the subject as a string.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseQueryID parses a positive numeric query parameter value.
func parseQueryID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Availability status constants returned by the customer browse
// endpoints.  Exactly one applies to any (date, slot) lookup.
const (
	StatusNoSlots   = "no_slots_today"   // the chosen date has no bookable slot left
	StatusAvailable = "tables_available" // the chosen slot still has free tables
	StatusSlotFull  = "slot_full"        // every table of the chosen slot is taken
)

// availabilityStatus derives the three-way availability answer shown
// to customers while browsing.
func availabilityStatus(slots []model.TimeSlot, slotChosen bool, tables []model.Table) string {
	if len(slots) == 0 {
		return StatusNoSlots
	}
	if slotChosen && len(tables) == 0 {
		return StatusSlotFull
	}
	return StatusAvailable
}

// parseDate parses a YYYY-MM-DD request value.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// slotJSON shapes a time slot for responses.
func slotJSON(s model.TimeSlot) echo.Map {
	return echo.Map{
		"id":         s.ID,
		"name":       s.Name,
		"start_time": s.StartTime,
		"end_time":   s.EndTime,
	}
}

// slotMaps shapes a slice of slots for responses.
func slotMaps(slots []model.TimeSlot) []echo.Map {
	out := make([]echo.Map, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotJSON(s))
	}
	return out
}

// tableJSON shapes a table for responses.
func tableJSON(t model.Table) echo.Map {
	return echo.Map{
		"id":          t.ID,
		"number":      t.Number,
		"capacity":    t.Capacity,
		"description": t.Description,
	}
}

// productJSON shapes a product for responses, including the price the
// customer would pay right now.
func productJSON(p model.Product) echo.Map {
	return echo.Map{
		"id":                  p.ID,
		"name":                p.Name,
		"description":         p.Description,
		"price_cents":         p.PriceCents,
		"effective_cents":     p.EffectivePriceCents(),
		"quantity":            p.Quantity,
		"category_id":         p.CategoryID,
		"on_promotion":        p.OnPromotion,
		"discount_percentage": p.DiscountPercentage,
		"is_available":        p.IsAvailable,
		"average_rating":      p.AverageRating,
	}
}

// comboJSON shapes a combo for responses.
func comboJSON(co model.Combo) echo.Map {
	return echo.Map{
		"id":                  co.ID,
		"name":                co.Name,
		"description":         co.Description,
		"price_cents":         co.PriceCents,
		"effective_cents":     co.EffectivePriceCents(),
		"on_promotion":        co.OnPromotion,
		"discount_percentage": co.DiscountPercentage,
		"is_active":           co.IsActive,
		"average_rating":      co.AverageRating,
	}
}

// orderJSON shapes an order for responses.
func orderJSON(o model.Order) echo.Map {
	return echo.Map{
		"id":           o.ID,
		"code":         o.Code,
		"buy_date":     o.BuyDate.Format(dateLayout),
		"amount_cents": o.AmountCents,
		"state":        string(o.State),
		"state_label":  o.State.Label(),
		"booking_id":   o.BookingID,
	}
}
