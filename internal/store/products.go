package store

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/models"
)

// ListProducts retrieves all products, newest first.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products ORDER BY created_at DESC")
	return products, err
}

// GetProductByID retrieves a product by ID. Returns (nil, nil) when no
// such product exists.
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a product and fills in its generated fields.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, image, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, product, query,
		product.Name, product.Description, product.Price, product.Image, product.Active)
}

// UpdateProduct updates all mutable fields of a product.
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image = $4, active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	return s.db.GetContext(ctx, &product.UpdatedAt, query,
		product.Name, product.Description, product.Price, product.Image, product.Active,
		product.ID)
}

// DeleteProduct deletes a product row. Order items referencing it keep
// their snapshotted price and a NULL product reference.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}
