package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/clock"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// StaffHandler bundles repositories for staff to manage time slots,
// tables, the booking review queue and order fulfilment.  Role
// middleware has already run by the time these methods execute.
type StaffHandler struct {
	Slots    *repository.TimeSlotRepo
	Tables   *repository.TableRepo
	Bookings *repository.BookingRepo
	Orders   *repository.OrderRepo
	Clock    clock.Clock
}

// NewStaffHandler constructs a StaffHandler and panics if any
// dependency is nil.
func NewStaffHandler(slots *repository.TimeSlotRepo, tables *repository.TableRepo, bookings *repository.BookingRepo, orders *repository.OrderRepo, clk clock.Clock) *StaffHandler {
	if slots == nil || tables == nil || bookings == nil || orders == nil || clk == nil {
		panic("nil dependency passed to NewStaffHandler")
	}
	return &StaffHandler{Slots: slots, Tables: tables, Bookings: bookings, Orders: orders, Clock: clk}
}

type slotReq struct {
	Name      string   `json:"name"`
	StartTime string   `json:"start_time"` // HH:MM or HH:MM:SS
	EndTime   string   `json:"end_time"`
	TableIDs  []uint64 `json:"table_ids"`
}

// normalizeTime pads HH:MM to HH:MM:SS so lexical comparison against
// MySQL TIME values stays valid.
func normalizeTime(s string) (string, bool) {
	s = strings.TrimSpace(s)
	switch len(s) {
	case 5: // HH:MM
		s += ":00"
	case 8: // HH:MM:SS
	default:
		return "", false
	}
	if s[2] != ':' || s[5] != ':' {
		return "", false
	}
	for i, ch := range s {
		if i == 2 || i == 5 {
			continue
		}
		if ch < '0' || ch > '9' {
			return "", false
		}
	}
	return s, true
}

func (req *slotReq) validate() map[string]string {
	errs := map[string]string{}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errs["name"] = "name is required"
	}
	start, ok := normalizeTime(req.StartTime)
	if !ok {
		errs["start_time"] = "start_time must be HH:MM or HH:MM:SS"
	}
	end, ok := normalizeTime(req.EndTime)
	if !ok {
		errs["end_time"] = "end_time must be HH:MM or HH:MM:SS"
	}
	if len(errs) == 0 {
		req.StartTime, req.EndTime = start, end
		if !(model.TimeSlot{StartTime: start, EndTime: end}).ValidWindow() {
			errs["end_time"] = "end_time must be after start_time"
		}
	}
	return errs
}

// CreateSlot handles POST /v1/staff/time-slots.
func (h *StaffHandler) CreateSlot(c echo.Context) error {
	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	slot, err := h.Slots.Create(c.Request().Context(), req.Name, req.StartTime, req.EndTime, req.TableIDs)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "time slot name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create time slot failed"})
	}
	return c.JSON(http.StatusCreated, slotJSON(*slot))
}

// ListSlots handles GET /v1/staff/time-slots.
func (h *StaffHandler) ListSlots(c echo.Context) error {
	slots, err := h.Slots.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotJSON(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"time_slots": out})
}

// GetSlot handles GET /v1/staff/time-slots/:id, including the IDs of
// the tables assigned to the slot.
func (h *StaffHandler) GetSlot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time slot id"})
	}
	ctx := c.Request().Context()
	slot, err := h.Slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "time slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	tableIDs, err := h.Slots.TableIDs(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	resp := slotJSON(*slot)
	resp["table_ids"] = tableIDs
	return c.JSON(http.StatusOK, resp)
}

// UpdateSlot handles PUT /v1/staff/time-slots/:id.  The update is
// refused while any future non-rejected booking sits in the slot, so
// guests can rely on the window they reserved.
func (h *StaffHandler) UpdateSlot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time slot id"})
	}
	var req slotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}
	today, now := clock.Split(h.Clock.Now())
	err := h.Slots.Update(c.Request().Context(), id, req.Name, req.StartTime, req.EndTime, today, now)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "time slot not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot has future bookings and cannot be changed"})
	case errors.Is(err, repository.ErrSlotNameExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot name already exists"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update time slot failed"})
	}
	if req.TableIDs != nil {
		if err := h.Slots.AssignTables(c.Request().Context(), id, req.TableIDs); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign tables failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteSlot handles DELETE /v1/staff/time-slots/:id with the same
// future-bookings guard as UpdateSlot.
func (h *StaffHandler) DeleteSlot(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time slot id"})
	}
	today, now := clock.Split(h.Clock.Now())
	err := h.Slots.Delete(c.Request().Context(), id, today, now)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "time slot not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot has future bookings and cannot be deleted"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete time slot failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
