package store

import (
	"context"
	"fmt"

	"storefront/internal/models"
)

// CreateOrderWithItems persists an order and all of its items in a
// single transaction. On any failure the whole creation rolls back, so
// no partial order can remain.
func (s *Store) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (email, amount, status, stripe_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	if err := tx.GetContext(ctx, order, query,
		order.Email, order.Amount, order.Status, order.StripeID); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.GetContext(ctx, &items[i].ID, itemQuery,
			items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].Price); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// ListOrders retrieves all orders, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// OrderItemDetail is an order item joined with a snapshot of its
// product. The product columns are nullable because the product may
// have been deleted after purchase.
type OrderItemDetail struct {
	models.OrderItem
	ProductName  *string  `db:"product_name"`
	ProductPrice *float64 `db:"product_price"`
	ProductImage *string  `db:"product_image"`
}

// ListOrderItemDetails retrieves all order items with their product
// snapshots, in insertion order.
func (s *Store) ListOrderItemDetails(ctx context.Context) ([]OrderItemDetail, error) {
	var items []OrderItemDetail
	err := s.db.SelectContext(ctx, &items, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price,
		       p.name AS product_name, p.price AS product_price, p.image AS product_image
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		ORDER BY oi.id`)
	return items, err
}
