package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/clock"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// CustomerHandler groups the repositories customers need to browse
// availability and manage their own bookings.  JWT and role checks
// have already run; methods return 401 only when the user ID cannot
// be extracted from the context.
type CustomerHandler struct {
	Slots    *repository.TimeSlotRepo
	Tables   *repository.TableRepo
	Bookings *repository.BookingRepo
	Clock    clock.Clock
}

// NewCustomerHandler constructs a CustomerHandler and panics if any
// dependency is nil.
func NewCustomerHandler(slots *repository.TimeSlotRepo, tables *repository.TableRepo, bookings *repository.BookingRepo, clk clock.Clock) *CustomerHandler {
	if slots == nil || tables == nil || bookings == nil || clk == nil {
		panic("nil dependency passed to NewCustomerHandler")
	}
	return &CustomerHandler{Slots: slots, Tables: tables, Bookings: bookings, Clock: clk}
}

// Availability handles GET /v1/availability?date=YYYY-MM-DD[&time_slot_id=N].
// It returns the bookable slots for the date, the free tables of the
// chosen slot, and a three-way status: no slots left today, tables
// available, or slot full.
func (h *CustomerHandler) Availability(c echo.Context) error {
	date, ok := parseDate(c.QueryParam("date"))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	today, now := clock.Split(h.Clock.Now())
	// Calendar comparison: the parsed date is UTC midnight while today
	// carries the restaurant's location.
	if model.DateBefore(date, today) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is in the past"})
	}

	ctx := c.Request().Context()
	slots, err := h.Slots.AvailableForDate(ctx, date, today, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var slotID uint64
	slotChosen := false
	if raw := c.QueryParam("time_slot_id"); raw != "" {
		slotID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil || slotID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid time_slot_id"})
		}
		slotChosen = true
	}

	if slotChosen {
		freeTables, err := h.Tables.AvailableForDateAndSlot(ctx, date, slotID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		tables := make([]echo.Map, 0, len(freeTables))
		for _, t := range freeTables {
			tables = append(tables, tableJSON(t))
		}
		return c.JSON(http.StatusOK, echo.Map{
			"date":   date.Format(dateLayout),
			"slots":  slotMaps(slots),
			"tables": tables,
			"status": availabilityStatus(slots, true, freeTables),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"date":   date.Format(dateLayout),
		"slots":  slotMaps(slots),
		"status": availabilityStatus(slots, false, nil),
	})
}

type createBookingReq struct {
	Date         string   `json:"date"`
	TimeSlotID   uint64   `json:"time_slot_id"`
	TableIDs     []uint64 `json:"table_ids"`
	Observations string   `json:"observations"`
}

// CreateBooking handles POST /v1/bookings.  A customer may hold at
// most one booking awaiting review; the requested tables are verified
// to belong to the slot, and the repository re-checks them against
// competing bookings under row locks before inserting.
func (h *CustomerHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	errs := map[string]string{}
	date, ok := parseDate(req.Date)
	today, now := clock.Split(h.Clock.Now())
	if !ok {
		errs["date"] = "date must be YYYY-MM-DD"
	} else if model.DateBefore(date, today) {
		errs["date"] = "date is in the past"
	}
	if req.TimeSlotID == 0 {
		errs["time_slot_id"] = "time_slot_id is required"
	}
	unique := dedupeIDs(req.TableIDs)
	if len(unique) == 0 {
		errs["table_ids"] = "at least one table is required"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx := c.Request().Context()
	slot, err := h.Slots.GetByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "time slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// Booking today is only allowed while the slot has not started.
	if model.SameDate(date, today) && slot.StartTime <= now {
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot already started"})
	}

	assigned, err := h.Slots.TableIDs(ctx, req.TimeSlotID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	inSlot := make(map[uint64]struct{}, len(assigned))
	for _, id := range assigned {
		inSlot[id] = struct{}{}
	}
	for _, id := range unique {
		if _, ok := inSlot[id]; !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "table not offered in this time slot", "table_id": id})
		}
	}

	booking, err := h.Bookings.Create(ctx, repository.CreateBookingParams{
		Date:         date,
		TimeSlotID:   req.TimeSlotID,
		TableIDs:     unique,
		UserID:       userID,
		Observations: strings.TrimSpace(req.Observations),
		Today:        today,
		Now:          now,
	})
	switch {
	case errors.Is(err, repository.ErrPendingBooking):
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a booking awaiting review"})
	case errors.Is(err, repository.ErrTableTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "one or more tables were just booked by someone else"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case errors.Is(err, repository.ErrCodeSpaceExhausted):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not generate booking code"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":           booking.ID,
		"code":         booking.Code,
		"date":         booking.Date.Format(dateLayout),
		"time_slot_id": booking.TimeSlotID,
		"decision":     string(booking.Decision),
	})
}

// MyBookings handles GET /v1/my-bookings: the customer's bookings
// grouped by state, with the next approved booking called out.  Every
// group is classified against the same clock reading.
func (h *CustomerHandler) MyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	today, now := clock.Split(h.Clock.Now())

	pending, err := h.Bookings.PendingForUser(ctx, userID, today, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	unconfirmed, err := h.Bookings.UnconfirmedForUser(ctx, userID, today, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	rejected, err := h.Bookings.RejectedForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	future, err := h.Bookings.FutureForUser(ctx, userID, today, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	history, err := h.Bookings.HistoryApprovedForUser(ctx, userID, today, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	next, err := h.Bookings.NextForUser(ctx, userID, today, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if next != nil {
		next.Classify(today, now)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"pending":     classifyBookings(pending, today, now),
		"unconfirmed": classifyBookings(unconfirmed, today, now),
		"rejected":    classifyBookings(rejected, today, now),
		"future":      classifyBookings(future, today, now),
		"history":     classifyBookings(history, today, now),
		"next":        next,
	})
}

// GetBooking handles GET /v1/bookings/:id for the owning customer.
func (h *CustomerHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	detail, err := h.Bookings.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	today, now := clock.Split(h.Clock.Now())
	detail.Classify(today, now)
	return c.JSON(http.StatusOK, detail)
}

// DeleteBooking handles DELETE /v1/bookings/:id.  Ownership misses
// are reported as 404 so customers never learn about other users'
// bookings.
func (h *CustomerHandler) DeleteBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	err = h.Bookings.DeleteByIDAndUser(c.Request().Context(), id, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete booking failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// dedupeIDs drops zeros and duplicates while preserving order.
func dedupeIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
