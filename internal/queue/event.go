// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedEvent is published after a cart is confirmed into an
// order.  It carries enough information for downstream consumers to
// log, notify, or trigger analytics without querying the primary
// database.
type OrderConfirmedEvent struct {
	OrderID     uint64   `json:"order_id"`
	Code        string   `json:"code"`
	UserID      uint64   `json:"user_id"`
	BookingID   uint64   `json:"booking_id"`
	BookingCode string   `json:"booking_code"`
	Items       []string `json:"items"`
	AmountCents int64    `json:"amount_cents"`
	ConfirmedAt string   `json:"confirmed_at"`
}
