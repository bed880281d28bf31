package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// TimeSlotRepo provides CRUD and availability queries for time slots.
// A slot's window fields are guarded: while any future non-rejected
// booking exists in the slot, the name and times cannot change and
// the slot cannot be deleted.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo returns a new TimeSlotRepo bound to the given database.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

// ErrSlotNameExists is returned when creating or renaming a slot to a
// name already in use.
var ErrSlotNameExists = errors.New("time slot name already exists")

const dateLayout = "2006-01-02"

// Create inserts a slot and assigns its tables in one transaction.
// The window must be valid (start < end) — callers validate before
// reaching the repository, but the constraint is cheap to restate.
func (r *TimeSlotRepo) Create(ctx context.Context, name, start, end string, tableIDs []uint64) (*model.TimeSlot, error) {
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
	const q = `INSERT INTO time_slots (name, start_time, end_time) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, name, start, end)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return nil, ErrSlotNameExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	slot := &model.TimeSlot{ID: uint64(id), Name: name, StartTime: start, EndTime: end}
	if err := assignTablesTx(ctx, tx, slot.ID, tableIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return slot, nil
}

// assignTablesTx replaces the slot's table assignment inside tx.
func assignTablesTx(ctx context.Context, tx *sql.Tx, slotID uint64, tableIDs []uint64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slot_tables WHERE time_slot_id = ?`, slotID); err != nil {
		return err
	}
	if len(tableIDs) == 0 {
		return nil
	}
	query := `INSERT INTO time_slot_tables (time_slot_id, table_id) VALUES `
	args := make([]interface{}, 0, len(tableIDs)*2)
	for i, tid := range tableIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, slotID, tid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// AssignTables replaces the set of tables associated with a slot.
func (r *TimeSlotRepo) AssignTables(ctx context.Context, slotID uint64, tableIDs []uint64) error {
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
	if err := assignTablesTx(ctx, tx, slotID, tableIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a single slot or sql.ErrNoRows.
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	const q = `SELECT id, name, start_time, end_time FROM time_slots WHERE id = ?`
	var s model.TimeSlot
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns all slots ordered by start time.
func (r *TimeSlotRepo) List(ctx context.Context) ([]model.TimeSlot, error) {
	const q = `SELECT id, name, start_time, end_time FROM time_slots ORDER BY start_time`
	return r.scanSlots(ctx, q)
}

// AvailableForDate returns the slots a guest can still pick on the
// given date.  For today only slots that have not yet started remain;
// any other date returns every slot.  The (today, now) pair comes
// from one clock reading.
func (r *TimeSlotRepo) AvailableForDate(ctx context.Context, date, today time.Time, now string) ([]model.TimeSlot, error) {
	if date.Format(dateLayout) == today.Format(dateLayout) {
		const q = `SELECT id, name, start_time, end_time FROM time_slots WHERE start_time > ? ORDER BY start_time`
		return r.scanSlots(ctx, q, now)
	}
	return r.List(ctx)
}

func (r *TimeSlotRepo) scanSlots(ctx context.Context, q string, args ...interface{}) ([]model.TimeSlot, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.TimeSlot, 0)
	for rows.Next() {
		var s model.TimeSlot
		if err := rows.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// TableIDs returns the ids of the tables assigned to a slot.
func (r *TimeSlotRepo) TableIDs(ctx context.Context, slotID uint64) ([]uint64, error) {
	const q = `SELECT table_id FROM time_slot_tables WHERE time_slot_id = ?`
	rows, err := r.db.QueryContext(ctx, q, slotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasFutureBookings reports whether any non-rejected booking in this
// slot has not yet fully elapsed.  Such bookings freeze the slot's
// window fields and block deletion.
func (r *TimeSlotRepo) HasFutureBookings(ctx context.Context, slotID uint64, today time.Time, now string) (bool, error) {
	const q = `SELECT EXISTS (
	               SELECT 1 FROM bookings b
	               JOIN time_slots ts ON ts.id = b.time_slot_id
	               WHERE b.time_slot_id = ? AND b.decision <> 'REJECTED'
	                 AND (b.date > ? OR (b.date = ? AND ts.end_time >= ?)))`
	var exists bool
	day := today.Format(dateLayout)
	err := r.db.QueryRowContext(ctx, q, slotID, day, day, now).Scan(&exists)
	return exists, err
}

// Update renames a slot or changes its window.  It returns
// ErrConflict while future bookings exist and sql.ErrNoRows when the
// slot does not exist.
func (r *TimeSlotRepo) Update(ctx context.Context, id uint64, name, start, end string, today time.Time, now string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	busy, err := r.HasFutureBookings(ctx, id, today, now)
	if err != nil {
		return err
	}
	if busy {
		return ErrConflict
	}
	const q = `UPDATE time_slots SET name = ?, start_time = ?, end_time = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, name, start, end, id); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrSlotNameExists
		}
		return err
	}
	return nil
}

// Delete removes a slot and its table assignment.  Deletion is
// blocked entirely while future bookings exist.
func (r *TimeSlotRepo) Delete(ctx context.Context, id uint64, today time.Time, now string) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	busy, err := r.HasFutureBookings(ctx, id, today, now)
	if err != nil {
		return err
	}
	if busy {
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slot_tables WHERE time_slot_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slots WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
