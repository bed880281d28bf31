package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// TableRepo provides persistence for restaurant tables and the
// availability query over them.  Table numbers are assigned inside a
// transaction that locks existing rows, so two concurrent creations
// cannot claim the same number.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// Create inserts a table, assigning the smallest unused positive
// number.  Capacity must be positive; callers validate first.
func (r *TableRepo) Create(ctx context.Context, capacity uint32, description string) (*model.Table, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	// Lock existing rows so concurrent creations serialize on number
	// assignment.
	rows, err := tx.QueryContext(ctx, `SELECT number FROM tables FOR UPDATE`)
	if err != nil {
		return nil, err
	}
	taken := make([]uint32, 0)
	for rows.Next() {
		var n uint32
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, err
		}
		taken = append(taken, n)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	number := model.NextTableNumber(taken)
	const q = `INSERT INTO tables (number, capacity, description) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, number, capacity, description)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &model.Table{ID: uint64(id), Number: number, Capacity: capacity, Description: description}, nil
}

// GetByID returns a single table or sql.ErrNoRows.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
	const q = `SELECT id, number, capacity, description FROM tables WHERE id = ?`
	var t model.Table
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Number, &t.Capacity, &t.Description); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all tables ordered by number.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	const q = `SELECT id, number, capacity, description FROM tables ORDER BY number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &t.Description); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// AvailableForDateAndSlot returns the tables assigned to the slot
// minus those already attached to a non-rejected booking for the
// exact (date, slot) pair, deduplicated and ordered by number.  A
// zero slot id yields an empty result.
func (r *TableRepo) AvailableForDateAndSlot(ctx context.Context, date time.Time, slotID uint64) ([]model.Table, error) {
	if slotID == 0 {
		return []model.Table{}, nil
	}
	const q = `SELECT DISTINCT t.id, t.number, t.capacity, t.description
	           FROM tables t
	           JOIN time_slot_tables st ON st.table_id = t.id
	           WHERE st.time_slot_id = ?
	             AND t.id NOT IN (
	                 SELECT bt.table_id
	                 FROM booking_tables bt
	                 JOIN bookings b ON b.id = bt.booking_id
	                 WHERE b.date = ? AND b.time_slot_id = ? AND b.decision <> 'REJECTED')
	           ORDER BY t.number`
	day := date.Format(dateLayout)
	rows, err := r.db.QueryContext(ctx, q, slotID, day, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.Number, &t.Capacity, &t.Description); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// ActiveBookingCodes returns the codes of non-rejected, not-yet-elapsed
// bookings the table is attached to.  A non-empty result blocks
// deletion and capacity changes; handlers include the codes in the
// conflict message so staff know which reservations are in the way.
func (r *TableRepo) ActiveBookingCodes(ctx context.Context, tableID uint64, today time.Time, now string) ([]string, error) {
	const q = `SELECT b.code
	           FROM bookings b
	           JOIN booking_tables bt ON bt.booking_id = b.id
	           JOIN time_slots ts ON ts.id = b.time_slot_id
	           WHERE bt.table_id = ? AND b.decision <> 'REJECTED'
	             AND (b.date > ? OR (b.date = ? AND ts.end_time >= ?))
	           ORDER BY b.date, ts.start_time`
	day := today.Format(dateLayout)
	rows, err := r.db.QueryContext(ctx, q, tableID, day, day, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	codes := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// UpdateCapacity changes a table's capacity.  It returns ErrConflict
// while the table is attached to an active booking and sql.ErrNoRows
// when the table does not exist.  Description updates carry no guard.
func (r *TableRepo) UpdateCapacity(ctx context.Context, id uint64, capacity uint32, description string, today time.Time, now string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	codes, err := r.ActiveBookingCodes(ctx, id, today, now)
	if err != nil {
		return err
	}
	if len(codes) > 0 {
		return ErrConflict
	}
	const q = `UPDATE tables SET capacity = ?, description = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, capacity, description, id)
	return err
}

// Delete removes a table and its slot assignments.  Deletion is
// blocked while the table is attached to an active booking.
func (r *TableRepo) Delete(ctx context.Context, id uint64, today time.Time, now string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	codes, err := r.ActiveBookingCodes(ctx, id, today, now)
	if err != nil {
		return err
	}
	if len(codes) > 0 {
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slot_tables WHERE table_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// inPlaceholders builds "?,?,?" for n values.  Shared by the booking
// and order repositories when expanding id lists.
func inPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
