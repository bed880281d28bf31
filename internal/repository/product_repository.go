package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrProductNameExists is returned when a product name is already in
// use (MySQL duplicate key 1062 on products.name).
var ErrProductNameExists = errors.New("product name already exists")

// ProductRepo persists menu products.  DECIMAL price columns cross
// the boundary as whole cents: reads use ROUND(price * 100), writes
// divide back.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productSelect = `SELECT id, name, description, CAST(ROUND(price * 100) AS SIGNED),
                              quantity, category_id, on_promotion, discount_percentage,
                              is_available, average_rating
                       FROM products`

func scanProduct(row interface{ Scan(...interface{}) error }) (*model.Product, error) {
	var p model.Product
	var categoryID sql.NullInt64
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.PriceCents,
		&p.Quantity, &categoryID, &p.OnPromotion, &p.DiscountPercentage,
		&p.IsAvailable, &p.AverageRating,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := uint64(categoryID.Int64)
		p.CategoryID = &id
	}
	return &p, nil
}

// Create inserts a product and fills in its new ID.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const q = `INSERT INTO products
	               (name, description, price, quantity, category_id,
	                on_promotion, discount_percentage, is_available, average_rating)
	           VALUES (?, ?, ? / 100, ?, ?, ?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, q,
		p.Name, p.Description, p.PriceCents, p.Quantity, p.CategoryID,
		p.OnPromotion, p.DiscountPercentage, p.IsAvailable)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrProductNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update rewrites every editable column of a product.  Missing rows
// surface as sql.ErrNoRows.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	const q = `UPDATE products
	           SET name = ?, description = ?, price = ? / 100, quantity = ?,
	               category_id = ?, on_promotion = ?, discount_percentage = ?,
	               is_available = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		p.Name, p.Description, p.PriceCents, p.Quantity,
		p.CategoryID, p.OnPromotion, p.DiscountPercentage,
		p.IsAvailable, p.ID)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrProductNameExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)`, p.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}
	return nil
}

// Delete removes a product.  A foreign-key restriction (1451) from
// existing order lines or ratings surfaces as ErrConflict.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
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
	return nil
}

// GetByID returns one product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE id = ?`, id))
}

// List returns every product, for staff management views.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	return r.listWhere(ctx, "", nil)
}

// ListAvailable returns products shown on the public menu.
func (r *ProductRepo) ListAvailable(ctx context.Context) ([]model.Product, error) {
	return r.listWhere(ctx, `WHERE is_available = TRUE`, nil)
}

// ListByCategory returns available products in one category.
func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID uint64) ([]model.Product, error) {
	return r.listWhere(ctx, `WHERE is_available = TRUE AND category_id = ?`, []interface{}{categoryID})
}

func (r *ProductRepo) listWhere(ctx context.Context, where string, args []interface{}) ([]model.Product, error) {
	q := productSelect
	if where != "" {
		q += " " + where
	}
	q += ` ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// GetForSaleTx loads a product inside an order transaction.  Missing
// and unavailable both return sql.ErrNoRows so the confirm flow skips
// the line.
func (r *ProductRepo) GetForSaleTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Product, error) {
	return scanProduct(tx.QueryRowContext(ctx, productSelect+` WHERE id = ? AND is_available = TRUE`, id))
}

// DecrementStockTx takes qty units off a product's stock.  The guard
// in the WHERE clause makes the decrement atomic: when stock is
// insufficient zero rows are affected and ErrOutOfStock is returned,
// so two concurrent confirms can never oversell.
func (r *ProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	const q = `UPDATE products SET quantity = quantity - ? WHERE id = ? AND quantity >= ?`
	res, err := tx.ExecContext(ctx, q, qty, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOutOfStock
	}
	return nil
}

// RecomputeAverageTx refreshes a product's average_rating from its
// ratings inside the rating-creation transaction.
func (r *ProductRepo) RecomputeAverageTx(ctx context.Context, tx *sql.Tx, productID uint64) error {
	const q = `UPDATE products
	           SET average_rating = COALESCE(
	               (SELECT AVG(rating) FROM ratings WHERE product_id = ?), 0)
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, productID, productID)
	return err
}
