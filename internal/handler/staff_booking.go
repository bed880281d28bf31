package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/clock"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// ReviewQueue handles GET /v1/staff/bookings/undecided: every booking
// awaiting a decision whose window has not elapsed, oldest slot first.
func (h *StaffHandler) ReviewQueue(c echo.Context) error {
	today, now := clock.Split(h.Clock.Now())
	queue, err := h.Bookings.Undecided(c.Request().Context(), today, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": classifyBookings(queue, today, now)})
}

// ApproveBooking handles POST /v1/staff/bookings/:id/approve.
func (h *StaffHandler) ApproveBooking(c echo.Context) error {
	return h.decide(c, true)
}

// RejectBooking handles POST /v1/staff/bookings/:id/reject.
func (h *StaffHandler) RejectBooking(c echo.Context) error {
	return h.decide(c, false)
}

// decide applies the staff decision and offers the next undecided
// booking so the queue can be worked through without extra requests.
func (h *StaffHandler) decide(c echo.Context, approve bool) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	today, now := clock.Split(h.Clock.Now())
	err := h.Bookings.Decide(ctx, id, approve, today)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already decided"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "decision failed"})
	}

	resp := echo.Map{"decided": id}
	if approve {
		resp["decision"] = "APPROVED"
	} else {
		resp["decision"] = "REJECTED"
	}
	if next, err := h.Bookings.NextUndecided(ctx, today, now); err == nil && next != nil {
		resp["next"] = next
	}
	return c.JSON(http.StatusOK, resp)
}

type orderStateReq struct {
	State string `json:"state"`
}

// UpdateOrderState handles PUT /v1/staff/orders/:id/state: the
// cashier advances a confirmed order through preparation and delivery.
// Cancellation stays with the customer endpoint and its state guard.
func (h *StaffHandler) UpdateOrderState(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req orderStateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	state := model.OrderState(req.State)
	switch state {
	case model.OrderPreparing, model.OrderSent, model.OrderReceived:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "state must be one of P, E, R"})
	}
	err := h.Orders.SetState(c.Request().Context(), id, state)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update order state failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "state": string(state), "state_label": state.Label()})
}
