package products

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo persists products and answer units in Postgres.
type PGRepo struct {
	DB *sql.DB
}

// CreateProduct inserts a product row.
func (r *PGRepo) CreateProduct(ctx context.Context, product Product) error {
	const query = `
INSERT INTO products (id, user_id, name, category, audience, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		product.ID,
		product.UserID,
		product.Name,
		nullableString(product.Category),
		nullableString(product.Audience),
		product.CreatedAt,
	)
	return err
}

// GetProduct returns a product by ID for a user.
func (r *PGRepo) GetProduct(ctx context.Context, userID, productID string) (Product, error) {
	const query = `
SELECT id, user_id, name, category, audience, created_at, updated_at
FROM products
WHERE id = $1
LIMIT 1`
	var product Product
	var category sql.NullString
	var audience sql.NullString
	err := r.DB.QueryRowContext(ctx, query, productID).Scan(
		&product.ID,
		&product.UserID,
		&product.Name,
		&category,
		&audience,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	if category.Valid {
		product.Category = category.String
	}
	if audience.Valid {
		product.Audience = audience.String
	}
	if product.UserID != userID {
		return Product{}, ErrForbidden
	}
	return product, nil
}

// ListProducts returns a user's products, newest first.
func (r *PGRepo) ListProducts(ctx context.Context, userID string, limit, offset int) ([]Product, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, name, category, audience, created_at, updated_at
FROM products
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0, limit)
	for rows.Next() {
		var product Product
		var category sql.NullString
		var audience sql.NullString
		if err := rows.Scan(
			&product.ID,
			&product.UserID,
			&product.Name,
			&category,
			&audience,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if category.Valid {
			product.Category = category.String
		}
		if audience.Valid {
			product.Audience = audience.String
		}
		out = append(out, product)
	}
	return out, rows.Err()
}

// UpsertAnswerUnit inserts or replaces an answer unit row.
func (r *PGRepo) UpsertAnswerUnit(ctx context.Context, unit AnswerUnit) error {
	const query = `
INSERT INTO answer_units (id, product_id, question_id, content, requires_js, requires_auth, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
ON CONFLICT (id) DO UPDATE SET
  question_id = EXCLUDED.question_id,
  content = EXCLUDED.content,
  requires_js = EXCLUDED.requires_js,
  requires_auth = EXCLUDED.requires_auth,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		unit.ID,
		unit.ProductID,
		unit.QuestionID,
		unit.Text,
		unit.RequiresJS,
		unit.RequiresAuth,
		unit.CreatedAt,
	)
	return err
}

// ListAnswerUnits returns a product's answer units in creation order.
func (r *PGRepo) ListAnswerUnits(ctx context.Context, productID string) ([]AnswerUnit, error) {
	const query = `
SELECT id, product_id, question_id, content, requires_js, requires_auth, created_at, updated_at
FROM answer_units
WHERE product_id = $1
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnswerUnit
	for rows.Next() {
		var unit AnswerUnit
		if err := rows.Scan(
			&unit.ID,
			&unit.ProductID,
			&unit.QuestionID,
			&unit.Text,
			&unit.RequiresJS,
			&unit.RequiresAuth,
			&unit.CreatedAt,
			&unit.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, unit)
	}
	return out, rows.Err()
}

// GetAnswerUnit returns one answer unit by ID.
func (r *PGRepo) GetAnswerUnit(ctx context.Context, productID, unitID string) (AnswerUnit, error) {
	const query = `
SELECT id, product_id, question_id, content, requires_js, requires_auth, created_at, updated_at
FROM answer_units
WHERE product_id = $1 AND id = $2
LIMIT 1`
	var unit AnswerUnit
	err := r.DB.QueryRowContext(ctx, query, productID, unitID).Scan(
		&unit.ID,
		&unit.ProductID,
		&unit.QuestionID,
		&unit.Text,
		&unit.RequiresJS,
		&unit.RequiresAuth,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnswerUnit{}, ErrNotFound
		}
		return AnswerUnit{}, err
	}
	return unit, nil
}

// UpdateAnswerUnitText replaces one answer unit's content.
func (r *PGRepo) UpdateAnswerUnitText(ctx context.Context, productID, unitID, text string) error {
	const query = `
UPDATE answer_units
SET content = $3, updated_at = $4
WHERE product_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, productID, unitID, text, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimGuest reassigns every product owned by guestUserID to authedUserID.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	const query = `UPDATE products SET user_id = $1, updated_at = now() WHERE user_id = $2`
	res, err := r.DB.ExecContext(ctx, query, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
