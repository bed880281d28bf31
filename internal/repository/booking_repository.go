package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/utils"
)

// BookingRepo provides creation, classification and the review
// workflow for bookings.  Every classification query takes one
// (today, now) pair fetched once by the caller, so all clauses of a
// query compare against the same instant.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// codeRetryBudget bounds the rejection-sampling loop for booking
// codes.  Exhausting it with a 36^9 space means something is wrong
// with the data, not bad luck.
const codeRetryBudget = 10

// CreateBookingParams carries everything booking creation needs.
// Today/Now are the caller's single clock reading.
type CreateBookingParams struct {
	Date         time.Time
	TimeSlotID   uint64
	TableIDs     []uint64
	UserID       uint64
	Observations string
	Today        time.Time
	Now          string
}

// Create inserts a new UNDECIDED booking with its tables.  It fails
// with ErrPendingBooking when the user already has a booking awaiting
// review, and with ErrTableTaken when any requested table is attached
// to a non-rejected booking for the same (date, slot) at commit time.
// The pending check, the availability re-check and the insert share
// one transaction: the user row lock serializes creations by the same
// user, the table row locks serialize creations for the same tables.
func (r *BookingRepo) Create(ctx context.Context, p CreateBookingParams) (*model.Booking, error) {
	day := p.Today.Format(dateLayout)

	code, err := r.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

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

	// Serialize same-user creations on the user row, then check for an
	// existing pending booking under that lock.  Two concurrent creates
	// by one user cannot both pass.
	var uid uint64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE id = ? FOR UPDATE`, p.UserID).Scan(&uid); err != nil {
		return nil, err
	}
	const pendingQ = `SELECT EXISTS (
	                      SELECT 1 FROM bookings b
	                      JOIN time_slots ts ON ts.id = b.time_slot_id
	                      WHERE b.user_id = ? AND b.decision = 'UNDECIDED'
	                        AND (b.date > ? OR (b.date = ? AND ts.end_time >= ?)))`
	var pending bool
	if err := tx.QueryRowContext(ctx, pendingQ, p.UserID, day, day, p.Now).Scan(&pending); err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrPendingBooking
	}

	// Lock the requested table rows so concurrent creations for the
	// same tables serialize here.
	lockQ := `SELECT id FROM tables WHERE id IN (` + inPlaceholders(len(p.TableIDs)) + `) FOR UPDATE`
	lockArgs := make([]interface{}, 0, len(p.TableIDs))
	for _, id := range p.TableIDs {
		lockArgs = append(lockArgs, id)
	}
	lockRows, err := tx.QueryContext(ctx, lockQ, lockArgs...)
	if err != nil {
		return nil, err
	}
	locked := 0
	for lockRows.Next() {
		var id uint64
		if err := lockRows.Scan(&id); err != nil {
			lockRows.Close()
			return nil, err
		}
		locked++
	}
	if err := lockRows.Err(); err != nil {
		lockRows.Close()
		return nil, err
	}
	lockRows.Close()
	if locked != len(p.TableIDs) {
		return nil, sql.ErrNoRows
	}

	// Re-check, under the lock, that none of the tables is already
	// booked for this date and slot.
	takenQ := `SELECT EXISTS (
	               SELECT 1 FROM booking_tables bt
	               JOIN bookings b ON b.id = bt.booking_id
	               WHERE b.date = ? AND b.time_slot_id = ? AND b.decision <> 'REJECTED'
	                 AND bt.table_id IN (` + inPlaceholders(len(p.TableIDs)) + `))`
	takenArgs := []interface{}{p.Date.Format(dateLayout), p.TimeSlotID}
	takenArgs = append(takenArgs, lockArgs...)
	var taken bool
	if err := tx.QueryRowContext(ctx, takenQ, takenArgs...).Scan(&taken); err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrTableTaken
	}

	const insQ = `INSERT INTO bookings (code, date, time_slot_id, user_id, observations, issue_date, decision)
	              VALUES (?, ?, ?, ?, ?, ?, 'UNDECIDED')`
	res, err := tx.ExecContext(ctx, insQ, code, p.Date.Format(dateLayout), p.TimeSlotID, p.UserID, p.Observations, day)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	linkQ := `INSERT INTO booking_tables (booking_id, table_id) VALUES `
	linkArgs := make([]interface{}, 0, len(p.TableIDs)*2)
	for i, tid := range p.TableIDs {
		if i > 0 {
			linkQ += ","
		}
		linkQ += "(?, ?)"
		linkArgs = append(linkArgs, id, tid)
	}
	if _, err := tx.ExecContext(ctx, linkQ, linkArgs...); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	return &model.Booking{
		ID:           uint64(id),
		Code:         code,
		Date:         p.Date,
		TimeSlotID:   p.TimeSlotID,
		UserID:       p.UserID,
		Observations: p.Observations,
		IssueDate:    p.Today,
		Decision:     model.DecisionUndecided,
	}, nil
}

// uniqueCode rejection-samples a booking code against existing rows,
// bounded by codeRetryBudget.
func (r *BookingRepo) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < codeRetryBudget; i++ {
		code, err := utils.NewBookingCode()
		if err != nil {
			return "", err
		}
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM bookings WHERE code = ?)`, code).Scan(&exists); err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// BookedTable is one table attached to a booking.
type BookedTable struct {
	TableID  uint64 `json:"table_id"`
	Number   uint32 `json:"number"`
	Capacity uint32 `json:"capacity"`
}

// BookingDetail is a booking joined with its slot and tables, shaped
// for display.  Dates and times are strings in their SQL formats.
type BookingDetail struct {
	ID           uint64        `json:"id"`
	Code         string        `json:"code"`
	Date         string        `json:"date"`
	TimeSlotID   uint64        `json:"time_slot_id"`
	SlotName     string        `json:"slot_name"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	UserID       uint64        `json:"user_id"`
	Observations string        `json:"observations,omitempty"`
	IssueDate    string        `json:"issue_date"`
	Decision     string        `json:"decision"`
	DecisionDate *string       `json:"decision_date,omitempty"`
	OrderCount   uint32        `json:"order_count"`
	Tables       []BookedTable `json:"tables"`
	State        string        `json:"state,omitempty"`
}

// Classify fills the derived lifecycle state against one clock
// reading.  Handlers call this right before shaping a response; the
// state is never stored.
func (d *BookingDetail) Classify(today time.Time, now string) {
	date, err := time.Parse(dateLayout, d.Date)
	if err != nil {
		return
	}
	b := model.Booking{Date: date, Decision: model.Decision(d.Decision)}
	slot := model.TimeSlot{StartTime: d.StartTime, EndTime: d.EndTime}
	d.State = model.ClassifyBooking(b, slot, today, now).String()
}

// Orderable reports whether a cart may be staged against the booking:
// approved, and the slot window not yet fully elapsed.  The same
// bounds UpcomingApprovedForUser applies in SQL; Date and EndTime
// compare lexically in their SQL string forms.
func (d BookingDetail) Orderable(today time.Time, now string) bool {
	if d.Decision != string(model.DecisionApproved) {
		return false
	}
	day := today.Format(dateLayout)
	return d.Date > day || (d.Date == day && d.EndTime >= now)
}

const detailSelect = `SELECT b.id, b.code, DATE_FORMAT(b.date, '%Y-%m-%d'), b.time_slot_id,
                             ts.name, ts.start_time, ts.end_time,
                             b.user_id, b.observations, DATE_FORMAT(b.issue_date, '%Y-%m-%d'),
                             b.decision, DATE_FORMAT(b.decision_date, '%Y-%m-%d'),
                             (SELECT COUNT(*) FROM orders o WHERE o.booking_id = b.id)
                      FROM bookings b
                      JOIN time_slots ts ON ts.id = b.time_slot_id`

// listDetails runs a detail query and populates each booking's tables
// with one additional IN query, in the same two-phase pattern as the
// rest of the list endpoints.
func (r *BookingRepo) listDetails(ctx context.Context, where, order string, args ...interface{}) ([]BookingDetail, error) {
	q := detailSelect + " WHERE " + where
	if order != "" {
		q += " ORDER BY " + order
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d BookingDetail
		var obs sql.NullString
		var decisionDate sql.NullString
		if err := rows.Scan(
			&d.ID, &d.Code, &d.Date, &d.TimeSlotID,
			&d.SlotName, &d.StartTime, &d.EndTime,
			&d.UserID, &obs, &d.IssueDate,
			&d.Decision, &decisionDate,
			&d.OrderCount,
		); err != nil {
			return nil, err
		}
		if obs.Valid {
			d.Observations = obs.String
		}
		if decisionDate.Valid {
			dd := decisionDate.String
			d.DecisionDate = &dd
		}
		d.Tables = []BookedTable{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	ids := make([]interface{}, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	tq := `SELECT bt.booking_id, t.id, t.number, t.capacity
	       FROM booking_tables bt
	       JOIN tables t ON t.id = bt.table_id
	       WHERE bt.booking_id IN (` + inPlaceholders(len(ids)) + `)
	       ORDER BY bt.booking_id, t.number`
	trows, err := r.db.QueryContext(ctx, tq, ids...)
	if err != nil {
		return nil, err
	}
	defer trows.Close()
	for trows.Next() {
		var bid, tid uint64
		var number, capacity uint32
		if err := trows.Scan(&bid, &tid, &number, &capacity); err != nil {
			return nil, err
		}
		idx, ok := index[bid]
		if !ok {
			continue
		}
		details[idx].Tables = append(details[idx].Tables, BookedTable{TableID: tid, Number: number, Capacity: capacity})
	}
	if err := trows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// PendingForUser returns the user's bookings awaiting staff review
// whose window has not yet elapsed.  At most one should ever exist;
// creation enforces that.
func (r *BookingRepo) PendingForUser(ctx context.Context, userID uint64, today time.Time, now string) ([]BookingDetail, error) {
	day := today.Format(dateLayout)
	return r.listDetails(ctx,
		`b.user_id = ? AND b.decision = 'UNDECIDED' AND (b.date > ? OR (b.date = ? AND ts.end_time >= ?))`,
		`b.date, ts.start_time`,
		userID, day, day, now)
}

// UnconfirmedForUser returns bookings whose window elapsed before
// staff acted.
func (r *BookingRepo) UnconfirmedForUser(ctx context.Context, userID uint64, today time.Time, now string) ([]BookingDetail, error) {
	day := today.Format(dateLayout)
	return r.listDetails(ctx,
		`b.user_id = ? AND b.decision = 'UNDECIDED' AND (b.date < ? OR (b.date = ? AND ts.end_time < ?))`,
		`b.date DESC, ts.start_time DESC`,
		userID, day, day, now)
}

// RejectedForUser returns the user's rejected bookings, newest first.
func (r *BookingRepo) RejectedForUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	return r.listDetails(ctx,
		`b.user_id = ? AND b.decision = 'REJECTED'`,
		`b.date DESC, ts.start_time DESC`,
		userID)
}

// FutureForUser returns approved bookings whose slot has not started.
func (r *BookingRepo) FutureForUser(ctx context.Context, userID uint64, today time.Time, now string) ([]BookingDetail, error) {
	day := today.Format(dateLayout)
	return r.listDetails(ctx,
		`b.user_id = ? AND b.decision = 'APPROVED' AND (b.date > ? OR (b.date = ? AND ts.start_time > ?))`,
		`b.date, ts.start_time`,
		userID, day, day, now)
}

// HistoryApprovedForUser returns approved bookings whose window has
// fully elapsed, newest first.
func (r *BookingRepo) HistoryApprovedForUser(ctx context.Context, userID uint64, today time.Time, now string) ([]BookingDetail, error) {
	day := today.Format(dateLayout)
	return r.listDetails(ctx,
		`b.user_id = ? AND b.decision = 'APPROVED' AND (b.date < ? OR (b.date = ? AND ts.end_time < ?))`,
		`b.date DESC, ts.start_time DESC`,
		userID, day, day, now)
}

// NextForUser returns the user's next approved booking: ascending by
// (date, start_time), first whose slot has not fully elapsed.  Nil
// when there is none.
func (r *BookingRepo) NextForUser(ctx context.Context, userID uint64, today time.Time, now string) (*BookingDetail, error) {
	day := today.Format(dateLayout)
	details, err := r.listDetails(ctx,
		`b.user_id = ? AND b.decision = 'APPROVED' AND (b.date > ? OR (b.date = ? AND ts.end_time >= ?))`,
		`b.date, ts.start_time`,
		userID, day, day, now)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// UpcomingApprovedForUser returns approved bookings a cart can be
// staged against: slot not yet fully elapsed, ascending.
func (r *BookingRepo) UpcomingApprovedForUser(ctx context.Context, userID uint64, today time.Time, now string) ([]BookingDetail, error) {
	day := today.Format(dateLayout)
	return r.listDetails(ctx,
		`b.user_id = ? AND b.decision = 'APPROVED' AND (b.date > ? OR (b.date = ? AND ts.end_time >= ?))`,
		`b.date, ts.start_time`,
		userID, day, day, now)
}

// Undecided returns the staff review queue: all UNDECIDED bookings
// whose window has not elapsed, ascending by date and start time.
func (r *BookingRepo) Undecided(ctx context.Context, today time.Time, now string) ([]BookingDetail, error) {
	day := today.Format(dateLayout)
	return r.listDetails(ctx,
		`b.decision = 'UNDECIDED' AND (b.date > ? OR (b.date = ? AND ts.end_time >= ?))`,
		`b.date, ts.start_time`,
		day, day, now)
}

// NextUndecided returns the head of the review queue, or nil.
func (r *BookingRepo) NextUndecided(ctx context.Context, today time.Time, now string) (*BookingDetail, error) {
	queue, err := r.Undecided(ctx, today, now)
	if err != nil {
		return nil, err
	}
	if len(queue) == 0 {
		return nil, nil
	}
	return &queue[0], nil
}

// GetByIDForUser returns one booking owned by the user.  Missing and
// not-owned both surface as sql.ErrNoRows so a caller can never learn
// about other users' bookings.
func (r *BookingRepo) GetByIDForUser(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
	details, err := r.listDetails(ctx, `b.id = ? AND b.user_id = ?`, "", bookingID, userID)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, sql.ErrNoRows
	}
	return &details[0], nil
}

// Decide records the staff decision on an UNDECIDED booking.
// approve=false rejects.  It returns sql.ErrNoRows when the booking
// does not exist and ErrConflict when it was already decided.
func (r *BookingRepo) Decide(ctx context.Context, bookingID uint64, approve bool, today time.Time) error {
	decision := string(model.DecisionApproved)
	if !approve {
		decision = string(model.DecisionRejected)
	}
	const q = `UPDATE bookings SET decision = ?, decision_date = ? WHERE id = ? AND decision = 'UNDECIDED'`
	res, err := r.db.ExecContext(ctx, q, decision, today.Format(dateLayout), bookingID)
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
			`SELECT EXISTS (SELECT 1 FROM bookings WHERE id = ?)`, bookingID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
		return ErrConflict
	}
	return nil
}

// DeleteByIDAndUser removes a booking owned by the user, in any
// state.  Self-service cancellation carries no penalty logic.  It
// returns sql.ErrNoRows when the booking does not exist and
// ErrForbidden when it belongs to someone else.
func (r *BookingRepo) DeleteByIDAndUser(ctx context.Context, bookingID, userID uint64) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM bookings WHERE id = ?`, bookingID).Scan(&ownerID)
	if err != nil {
		return err
	}
	if ownerID != userID {
		return ErrForbidden
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_tables WHERE booking_id = ?`, bookingID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, bookingID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
