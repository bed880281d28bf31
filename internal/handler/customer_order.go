package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/cart"
	"github.com/iliyamo/restaurant-table-reservation/internal/clock"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

// OrderHandler handles the cart staged against a booking and its
// conversion into persisted orders.  The cart lives in the session
// store; orders and stock live in MySQL and are only touched inside
// the confirm transaction.
type OrderHandler struct {
	Bookings *repository.BookingRepo
	Orders   *repository.OrderRepo
	Products *repository.ProductRepo
	Combos   *repository.ComboRepo
	Cart     cart.Store
	Clock    clock.Clock
}

// NewOrderHandler constructs an OrderHandler and panics if any
// dependency is nil.
func NewOrderHandler(bookings *repository.BookingRepo, orders *repository.OrderRepo, products *repository.ProductRepo, combos *repository.ComboRepo, store cart.Store, clk clock.Clock) *OrderHandler {
	if bookings == nil || orders == nil || products == nil || combos == nil || store == nil || clk == nil {
		panic("nil dependency passed to NewOrderHandler")
	}
	return &OrderHandler{Bookings: bookings, Orders: orders, Products: products, Combos: combos, Cart: store, Clock: clk}
}

type cartItemReq struct {
	ProductID uint64 `json:"product_id"`
	ComboID   uint64 `json:"combo_id"`
	Remove    bool   `json:"remove"` // drop the whole entry instead of -1
}

// itemKey converts the request body into a cart key.  Exactly one of
// product_id and combo_id must be set.
func (req cartItemReq) itemKey() (cart.ItemKey, bool) {
	if (req.ProductID == 0) == (req.ComboID == 0) {
		return "", false
	}
	if req.ProductID != 0 {
		return cart.ProductKey(req.ProductID), true
	}
	return cart.ComboKey(req.ComboID), true
}

// bookingForCart loads the booking and verifies ownership.  Cart
// operations are only meaningful against the caller's own booking.
func (h *OrderHandler) bookingForCart(c echo.Context, userID uint64) (*repository.BookingDetail, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
		return nil, false
	}
	detail, err := h.Bookings.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return nil, false
	}
	return detail, true
}

// orderableBooking is bookingForCart plus the staging guard: carts
// only exist against approved bookings whose slot has not elapsed.
func (h *OrderHandler) orderableBooking(c echo.Context, userID uint64) (*repository.BookingDetail, bool) {
	booking, ok := h.bookingForCart(c, userID)
	if !ok {
		return nil, false
	}
	today, now := clock.Split(h.Clock.Now())
	if !booking.Orderable(today, now) {
		_ = c.JSON(http.StatusConflict, echo.Map{"error": "booking is not approved and upcoming"})
		return nil, false
	}
	return booking, true
}

// AddCartItem handles POST /v1/bookings/:id/cart/items: +1 of one
// product or combo, subject to the ceiling (live stock for products,
// a fixed cap for combos).  A rejected add leaves the cart untouched.
func (h *OrderHandler) AddCartItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, ok := h.orderableBooking(c, userID)
	if !ok {
		return nil
	}
	var req cartItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	key, ok := req.itemKey()
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exactly one of product_id and combo_id is required"})
	}

	ctx := c.Request().Context()
	var ceiling uint32
	if key.IsCombo() {
		co, err := h.Combos.GetByID(ctx, req.ComboID)
		if err != nil || !co.IsActive {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "combo not found"})
		}
		ceiling = cart.MaxComboQuantity
	} else {
		p, err := h.Products.GetByID(ctx, req.ProductID)
		if err != nil || !p.IsAvailable {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		ceiling = p.Quantity
	}

	items, err := h.Cart.Items(ctx, userID, booking.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart read failed"})
	}
	if !cart.Add(items, key, ceiling) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "quantity limit reached",
			"item":    string(key),
			"ceiling": ceiling,
		})
	}
	if err := h.Cart.Set(ctx, userID, booking.ID, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart write failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": string(key), "quantity": items[key]})
}

// DecrementCartItem handles DELETE /v1/bookings/:id/cart/items: -1 of
// one item, removing the entry at zero, or the whole entry at once
// when the body sets remove.
func (h *OrderHandler) DecrementCartItem(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, ok := h.orderableBooking(c, userID)
	if !ok {
		return nil
	}
	var req cartItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	key, ok := req.itemKey()
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exactly one of product_id and combo_id is required"})
	}

	ctx := c.Request().Context()
	items, err := h.Cart.Items(ctx, userID, booking.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart read failed"})
	}
	if req.Remove {
		cart.Remove(items, key)
	} else {
		cart.Decrement(items, key)
	}
	if err := h.Cart.Set(ctx, userID, booking.ID, items); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart write failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": string(key), "quantity": items[key]})
}

// ClearCart handles DELETE /v1/bookings/:id/cart: drops every staged
// item for the booking.  Only ownership is checked, so a stale cart
// against a rejected or elapsed booking can still be emptied.
func (h *OrderHandler) ClearCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, ok := h.bookingForCart(c, userID)
	if !ok {
		return nil
	}
	if err := h.Cart.Clear(c.Request().Context(), userID, booking.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart clear failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ViewCart handles GET /v1/bookings/:id/cart.  Subtotals are derived
// from the live discounted prices at view time; entries whose item no
// longer resolves are skipped.
func (h *OrderHandler) ViewCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, ok := h.orderableBooking(c, userID)
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	items, err := h.Cart.Items(ctx, userID, booking.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart read failed"})
	}

	lines := make([]echo.Map, 0, len(items))
	var total int64
	for key, qty := range items {
		id, ok := key.ID()
		if !ok {
			continue
		}
		var name string
		var unit int64
		if key.IsCombo() {
			co, err := h.Combos.GetByID(ctx, id)
			if err != nil {
				continue
			}
			name, unit = co.Name, co.EffectivePriceCents()
		} else {
			p, err := h.Products.GetByID(ctx, id)
			if err != nil {
				continue
			}
			name, unit = p.Name, p.EffectivePriceCents()
		}
		subtotal := unit * int64(qty)
		total += subtotal
		lines = append(lines, echo.Map{
			"item":           string(key),
			"name":           name,
			"quantity":       qty,
			"unit_cents":     unit,
			"subtotal_cents": subtotal,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id":  booking.ID,
		"items":       lines,
		"total_cents": total,
	})
}

// ConfirmCart handles POST /v1/bookings/:id/cart/confirm.  The whole
// conversion is one transaction: order row, one line per resolvable
// cart entry with the subtotal recomputed from the live price, and an
// atomic stock decrement per product line.  Insufficient stock rolls
// everything back.  On commit the booking's cart entry is cleared and
// an order.confirmed event is published.
func (h *OrderHandler) ConfirmCart(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, ok := h.orderableBooking(c, userID)
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	items, err := h.Cart.Items(ctx, userID, booking.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cart read failed"})
	}
	if len(items) == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cart is empty"})
	}

	today, _ := clock.Split(h.Clock.Now())

	tx, err := h.Orders.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	bookingID := booking.ID
	order, err := h.Orders.CreateTx(ctx, tx, userID, &bookingID, today)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	var amount int64
	eventItems := make([]string, 0, len(items))
	lineCount := 0
	for key, qty := range items {
		id, ok := key.ID()
		if !ok {
			continue
		}
		if key.IsCombo() {
			co, err := h.Combos.GetForSaleTx(ctx, tx, id)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue // combo vanished since it was staged
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
			}
			subtotal := co.EffectivePriceCents() * int64(qty)
			if err := h.Orders.AddComboLineTx(ctx, tx, order.ID, id, qty, subtotal); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save order line failed"})
			}
			amount += subtotal
			eventItems = append(eventItems, fmt.Sprintf("%dx %s", qty, co.Name))
			lineCount++
			continue
		}
		p, err := h.Products.GetForSaleTx(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue // product vanished since it was staged
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		if err := h.Products.DecrementStockTx(ctx, tx, id, qty); err != nil {
			if errors.Is(err, repository.ErrOutOfStock) {
				return c.JSON(http.StatusConflict, echo.Map{
					"error":   "insufficient stock",
					"product": p.Name,
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stock update failed"})
		}
		subtotal := p.EffectivePriceCents() * int64(qty)
		if err := h.Orders.AddProductLineTx(ctx, tx, order.ID, id, qty, subtotal); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save order line failed"})
		}
		amount += subtotal
		eventItems = append(eventItems, fmt.Sprintf("%dx %s", qty, p.Name))
		lineCount++
	}
	if lineCount == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no cart item could be resolved"})
	}
	if err := h.Orders.UpdateAmountTx(ctx, tx, order.ID, amount); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save order total failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	// Only this booking's staged items go away; carts against other
	// bookings are untouched.
	_ = h.Cart.Clear(ctx, userID, booking.ID)

	event := queue.OrderConfirmedEvent{
		OrderID:     order.ID,
		Code:        order.Code,
		UserID:      userID,
		BookingID:   booking.ID,
		BookingCode: booking.Code,
		Items:       eventItems,
		AmountCents: amount,
		ConfirmedAt: h.Clock.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	go func() { _ = queue_publisher.PublishOrderConfirmed(context.Background(), event) }()

	order.AmountCents = amount
	return c.JSON(http.StatusCreated, orderJSON(*order))
}

// ListOrders handles GET /v1/bookings/:id/orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	booking, ok := h.bookingForCart(c, userID)
	if !ok {
		return nil
	}
	orders, err := h.Orders.ListByUserAndBooking(c.Request().Context(), userID, booking.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON(o))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// MyOrders handles GET /v1/my-orders.
func (h *OrderHandler) MyOrders(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Orders.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON(o))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// OrderableBookings handles GET /v1/orderable-bookings: the caller's
// approved bookings whose slot has not fully elapsed, i.e. the ones a
// cart can still be staged against.
func (h *OrderHandler) OrderableBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	today, now := clock.Split(h.Clock.Now())
	bookings, err := h.Bookings.UpcomingApprovedForUser(c.Request().Context(), userID, today, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": classifyBookings(bookings, today, now)})
}

// GetOrder handles GET /v1/orders/:id with its lines.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	order, lines, err := h.Orders.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	resp := orderJSON(*order)
	resp["lines"] = lines
	return c.JSON(http.StatusOK, resp)
}

// CancelOrder handles POST /v1/orders/:id/cancel.  Only a Requested
// order can be cancelled.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	err = h.Orders.Cancel(c.Request().Context(), id, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "only a requested order can be cancelled"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel order failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "state": string(model.OrderCancelled)})
}

// DeleteOrder handles DELETE /v1/orders/:id.  A Requested order must
// be cancelled before it can be deleted.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	err = h.Orders.Delete(c.Request().Context(), id, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "cancel the order before deleting it"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete order failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
