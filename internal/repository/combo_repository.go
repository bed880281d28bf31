package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrComboNameExists is returned when a combo name is already in use.
var ErrComboNameExists = errors.New("combo name already exists")

// ComboRepo persists combos and their product membership.
type ComboRepo struct {
	db *sql.DB
}

// NewComboRepo returns a new ComboRepo bound to the given database.
func NewComboRepo(db *sql.DB) *ComboRepo { return &ComboRepo{db: db} }

const comboSelect = `SELECT id, name, description, CAST(ROUND(price * 100) AS SIGNED),
                            on_promotion, discount_percentage, is_active, average_rating
                     FROM combos`

func scanCombo(row interface{ Scan(...interface{}) error }) (*model.Combo, error) {
	var co model.Combo
	err := row.Scan(
		&co.ID, &co.Name, &co.Description, &co.PriceCents,
		&co.OnPromotion, &co.DiscountPercentage, &co.IsActive, &co.AverageRating,
	)
	if err != nil {
		return nil, err
	}
	return &co, nil
}

// Create inserts a combo with its member products in one transaction.
func (r *ComboRepo) Create(ctx context.Context, co *model.Combo, productIDs []uint64) error {
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

	const q = `INSERT INTO combos
	               (name, description, price, on_promotion, discount_percentage,
	                is_active, average_rating)
	           VALUES (?, ?, ? / 100, ?, ?, ?, 0)`
	res, err := tx.ExecContext(ctx, q,
		co.Name, co.Description, co.PriceCents,
		co.OnPromotion, co.DiscountPercentage, co.IsActive)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrComboNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	co.ID = uint64(id)

	if err := r.setProductsTx(ctx, tx, co.ID, productIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Update rewrites a combo's columns and replaces its product set in
// one transaction.
func (r *ComboRepo) Update(ctx context.Context, co *model.Combo, productIDs []uint64) error {
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

	const q = `UPDATE combos
	           SET name = ?, description = ?, price = ? / 100,
	               on_promotion = ?, discount_percentage = ?, is_active = ?
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q,
		co.Name, co.Description, co.PriceCents,
		co.OnPromotion, co.DiscountPercentage, co.IsActive, co.ID)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrComboNameExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM combos WHERE id = ?)`, co.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM combo_products WHERE combo_id = ?`, co.ID); err != nil {
		return err
	}
	if err := r.setProductsTx(ctx, tx, co.ID, productIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// setProductsTx bulk-inserts the combo's product links.
func (r *ComboRepo) setProductsTx(ctx context.Context, tx *sql.Tx, comboID uint64, productIDs []uint64) error {
	if len(productIDs) == 0 {
		return nil
	}
	q := `INSERT INTO combo_products (combo_id, product_id) VALUES `
	args := make([]interface{}, 0, len(productIDs)*2)
	for i, pid := range productIDs {
		if i > 0 {
			q += ","
		}
		q += "(?, ?)"
		args = append(args, comboID, pid)
	}
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// Delete removes a combo and its product links.  Existing order lines
// restrict the delete (1451 -> ErrConflict).
func (r *ComboRepo) Delete(ctx context.Context, id uint64) error {
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM combo_products WHERE combo_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM combos WHERE id = ?`, id)
	if err != nil {
		if strings.Contains(err.Error(), "1451") {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns one combo.
func (r *ComboRepo) GetByID(ctx context.Context, id uint64) (*model.Combo, error) {
	return scanCombo(r.db.QueryRowContext(ctx, comboSelect+` WHERE id = ?`, id))
}

// List returns combos, optionally only active ones.
func (r *ComboRepo) List(ctx context.Context, activeOnly bool) ([]model.Combo, error) {
	q := comboSelect
	if activeOnly {
		q += ` WHERE is_active = TRUE`
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	combos := make([]model.Combo, 0)
	for rows.Next() {
		co, err := scanCombo(rows)
		if err != nil {
			return nil, err
		}
		combos = append(combos, *co)
	}
	return combos, rows.Err()
}

// ProductIDs returns the IDs of a combo's member products.
func (r *ComboRepo) ProductIDs(ctx context.Context, comboID uint64) ([]uint64, error) {
	const q = `SELECT product_id FROM combo_products WHERE combo_id = ? ORDER BY product_id`
	rows, err := r.db.QueryContext(ctx, q, comboID)
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

// GetForSaleTx loads a combo inside an order transaction.  Missing
// and inactive both return sql.ErrNoRows so the confirm flow skips
// the line.
func (r *ComboRepo) GetForSaleTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Combo, error) {
	return scanCombo(tx.QueryRowContext(ctx, comboSelect+` WHERE id = ? AND is_active = TRUE`, id))
}
