package model

import "time"

// OrderState is the single-character state code stored in orders.state.
// An order is created Requested; staff advance it through Preparing,
// Sent and Received.  Cancellation is permitted only from Requested,
// and a Requested order cannot be deleted outright — it must be
// cancelled first.
type OrderState string

const (
	OrderRequested OrderState = "S" // solicitado
	OrderPreparing OrderState = "P" // preparación
	OrderSent      OrderState = "E" // enviado
	OrderReceived  OrderState = "R" // recibido
	OrderCancelled OrderState = "C" // cancelado
)

// Label returns the human-readable name of the state.
func (s OrderState) Label() string {
	switch s {
	case OrderRequested:
		return "Solicitado"
	case OrderPreparing:
		return "Preparación"
	case OrderSent:
		return "Enviado"
	case OrderReceived:
		return "Recibido"
	case OrderCancelled:
		return "Cancelado"
	}
	return "unknown"
}

// CanCancel reports whether the order may transition to Cancelled.
func (s OrderState) CanCancel() bool { return s == OrderRequested }

// CanDelete reports whether the order row may be deleted.  A
// Requested order must be cancelled before deletion.
func (s OrderState) CanDelete() bool { return s != OrderRequested }

// Order is the persisted record created by confirming a cart.  The
// amount is the sum of line subtotals, each recomputed from the live
// (possibly discounted) unit price at confirmation time.
//
// Fields:
//  ID          – primary key identifier.
//  Code        – unique "PDD-XXXXXXXX" reference.
//  BuyDate     – date of confirmation.
//  AmountCents – total in cents.
//  State       – lifecycle state code.
//  UserID      – purchasing user.
//  BookingID   – booking the order is scoped to (nullable).
type Order struct {
	ID          uint64    // orders.id
	Code        string    // orders.code
	BuyDate     time.Time // orders.buy_date
	AmountCents int64     // orders.amount (stored as DECIMAL)
	State       OrderState
	UserID      uint64  // orders.user_id
	BookingID   *uint64 // orders.booking_id (nullable)
}
