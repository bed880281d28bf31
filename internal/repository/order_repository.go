package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/utils"
)

// OrderRepo persists orders and their product/combo lines.  The
// confirm flow runs entirely inside one transaction owned by the
// caller, so every mutating method here has a ...Tx form.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle for cross-repository transactions.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new Requested order with amount zero and fills
// in its ID and code.  Code collisions retry within the budget; a
// duplicate insert cannot slip through because the column is UNIQUE.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64, bookingID *uint64, buyDate time.Time) (*model.Order, error) {
	const q = `INSERT INTO orders (code, buy_date, amount, state, user_id, booking_id)
	           VALUES (?, ?, 0, 'S', ?, ?)`
	for i := 0; i < codeRetryBudget; i++ {
		code := utils.NewOrderCode()
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE code = ?)`, code).Scan(&exists); err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		res, err := tx.ExecContext(ctx, q, code, buyDate.Format(dateLayout), userID, bookingID)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		return &model.Order{
			ID:        uint64(id),
			Code:      code,
			BuyDate:   buyDate,
			State:     model.OrderRequested,
			UserID:    userID,
			BookingID: bookingID,
		}, nil
	}
	return nil, ErrCodeSpaceExhausted
}

// AddProductLineTx appends a product line with its recomputed subtotal.
func (r *OrderRepo) AddProductLineTx(ctx context.Context, tx *sql.Tx, orderID, productID uint64, qty uint32, subtotalCents int64) error {
	const q = `INSERT INTO order_products (order_id, product_id, quantity, subtotal)
	           VALUES (?, ?, ?, ? / 100)`
	_, err := tx.ExecContext(ctx, q, orderID, productID, qty, subtotalCents)
	return err
}

// AddComboLineTx appends a combo line with its recomputed subtotal.
func (r *OrderRepo) AddComboLineTx(ctx context.Context, tx *sql.Tx, orderID, comboID uint64, qty uint32, subtotalCents int64) error {
	const q = `INSERT INTO order_combos (order_id, combo_id, quantity, subtotal)
	           VALUES (?, ?, ?, ? / 100)`
	_, err := tx.ExecContext(ctx, q, orderID, comboID, qty, subtotalCents)
	return err
}

// UpdateAmountTx persists the final accumulated total.
func (r *OrderRepo) UpdateAmountTx(ctx context.Context, tx *sql.Tx, orderID uint64, amountCents int64) error {
	const q = `UPDATE orders SET amount = ? / 100 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, amountCents, orderID)
	return err
}

const orderSelect = `SELECT id, code, buy_date, CAST(ROUND(amount * 100) AS SIGNED),
                            state, user_id, booking_id
                     FROM orders`

func scanOrder(row interface{ Scan(...interface{}) error }) (*model.Order, error) {
	var o model.Order
	var state string
	var bookingID sql.NullInt64
	err := row.Scan(&o.ID, &o.Code, &o.BuyDate, &o.AmountCents, &state, &o.UserID, &bookingID)
	if err != nil {
		return nil, err
	}
	o.State = model.OrderState(state)
	if bookingID.Valid {
		id := uint64(bookingID.Int64)
		o.BookingID = &id
	}
	return &o, nil
}

// ListByUserAndBooking returns the user's orders for one booking,
// newest first.
func (r *OrderRepo) ListByUserAndBooking(ctx context.Context, userID, bookingID uint64) ([]model.Order, error) {
	q := orderSelect + ` WHERE user_id = ? AND booking_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ListByUser returns all of the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	q := orderSelect + ` WHERE user_id = ? ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// OrderLineDetail is an order line joined with its item name, shaped
// for display.
type OrderLineDetail struct {
	Item          string `json:"item"`
	IsCombo       bool   `json:"is_combo"`
	Quantity      uint32 `json:"quantity"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

// GetByIDForUser returns one order owned by the user with its lines.
// Missing and not-owned both surface as sql.ErrNoRows.
func (r *OrderRepo) GetByIDForUser(ctx context.Context, orderID, userID uint64) (*model.Order, []OrderLineDetail, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE id = ? AND user_id = ?`, orderID, userID))
	if err != nil {
		return nil, nil, err
	}
	const q = `SELECT p.name AS item, FALSE AS is_combo, op.quantity,
	                  CAST(ROUND(op.subtotal * 100) AS SIGNED) AS subtotal_cents
	           FROM order_products op JOIN products p ON p.id = op.product_id
	           WHERE op.order_id = ?
	           UNION ALL
	           SELECT c.name, TRUE, oc.quantity, CAST(ROUND(oc.subtotal * 100) AS SIGNED)
	           FROM order_combos oc JOIN combos c ON c.id = oc.combo_id
	           WHERE oc.order_id = ?
	           ORDER BY is_combo, item`
	rows, err := r.db.QueryContext(ctx, q, orderID, orderID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	lines := make([]OrderLineDetail, 0)
	for rows.Next() {
		var l OrderLineDetail
		if err := rows.Scan(&l.Item, &l.IsCombo, &l.Quantity, &l.SubtotalCents); err != nil {
			return nil, nil, err
		}
		lines = append(lines, l)
	}
	return o, lines, rows.Err()
}

// Cancel moves an order from Requested to Cancelled.  Any other state
// returns ErrConflict; a missing or foreign order returns
// sql.ErrNoRows.
func (r *OrderRepo) Cancel(ctx context.Context, orderID, userID uint64) error {
	const q = `UPDATE orders SET state = 'C' WHERE id = ? AND user_id = ? AND state = 'S'`
	res, err := r.db.ExecContext(ctx, q, orderID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM orders WHERE id = ? AND user_id = ?)`, orderID, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrConflict
	}
	return nil
}

// SetState advances an order's lifecycle state (staff).
func (r *OrderRepo) SetState(ctx context.Context, orderID uint64, state model.OrderState) error {
	const q = `UPDATE orders SET state = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, string(state), orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an order owned by the user together with its lines.
// A still-Requested order cannot be deleted; cancel it first.
func (r *OrderRepo) Delete(ctx context.Context, orderID, userID uint64) error {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE id = ? AND user_id = ?`, orderID, userID))
	if err != nil {
		return err
	}
	if !o.State.CanDelete() {
		return ErrConflict
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_products WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_combos WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, orderID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
