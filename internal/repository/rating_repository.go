package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// RatingRepo persists customer product ratings.  Creating a rating
// and refreshing the product's average happen in one transaction so
// the stored average never drifts from the rows.
type RatingRepo struct {
	db       *sql.DB
	products *ProductRepo
}

// NewRatingRepo returns a new RatingRepo bound to the given database
// and product repository.
func NewRatingRepo(db *sql.DB, products *ProductRepo) *RatingRepo {
	return &RatingRepo{db: db, products: products}
}

// Create stores a rating and recomputes the product's average.  A
// missing product surfaces as sql.ErrNoRows before anything is
// written.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating) error {
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

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE id = ?)`, rt.ProductID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return sql.ErrNoRows
	}

	const q = `INSERT INTO ratings (title, text, rating, product_id, user_id, created_at)
	           VALUES (?, ?, ?, ?, ?, NOW())`
	res, err := tx.ExecContext(ctx, q, rt.Title, rt.Text, rt.Rating, rt.ProductID, rt.UserID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)

	if err := r.products.RecomputeAverageTx(ctx, tx, rt.ProductID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListForProduct returns a product's ratings, newest first.
func (r *RatingRepo) ListForProduct(ctx context.Context, productID uint64) ([]model.Rating, error) {
	const q = `SELECT id, title, text, rating, product_id, user_id
	           FROM ratings WHERE product_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ratings := make([]model.Rating, 0)
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.Title, &rt.Text, &rt.Rating, &rt.ProductID, &rt.UserID); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}
