// Package cart holds the in-progress shopping cart of a storefront
// client. The cart is an ordered set of distinct products with
// write-through persistence: every mutation ends with a save to the
// configured durable storage, and the cart rehydrates once from that
// storage when constructed.
package cart

import (
	"encoding/json"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/util"
)

const storageKey = "cart"

// Cart is a client-side cart state container. Re-adding a product that
// is already present is a no-op; quantities are not incremented, and
// the total ignores quantity accordingly.
//
// Cart is not safe for concurrent use; it models single-session client
// state.
type Cart struct {
	items   []models.Product
	storage Storage
	logger  *zap.Logger
}

// New creates a cart backed by the given storage. A nil storage yields
// a purely in-memory cart. When storage holds a previously persisted
// cart, the cart rehydrates from it; an unreadable snapshot is logged
// and discarded.
func New(storage Storage) *Cart {
	c := &Cart{
		items:   []models.Product{},
		storage: storage,
		logger:  util.GetLogger(),
	}

	if storage == nil {
		return c
	}

	saved, err := storage.Get(storageKey)
	if err != nil {
		c.logger.Warn("Failed to load saved cart", zap.Error(err))
		return c
	}
	if saved == "" {
		return c
	}

	if err := json.Unmarshal([]byte(saved), &c.items); err != nil {
		c.logger.Warn("Discarding unreadable saved cart", zap.Error(err))
		c.items = []models.Product{}
	}
	return c
}

// Add appends a product to the cart. Adding a product whose id is
// already present is a no-op.
func (c *Cart) Add(product models.Product) {
	for _, item := range c.items {
		if item.ID == product.ID {
			return
		}
	}

	c.items = append(c.items, product)
	c.persist()
}

// Remove deletes the product with the given id, if present.
func (c *Cart) Remove(productID int64) {
	filtered := c.items[:0]
	for _, item := range c.items {
		if item.ID != productID {
			filtered = append(filtered, item)
		}
	}
	c.items = filtered
	c.persist()
}

// Clear empties the cart and purges the persisted copy.
func (c *Cart) Clear() {
	c.items = []models.Product{}

	if c.storage == nil {
		return
	}
	if err := c.storage.Remove(storageKey); err != nil {
		c.logger.Warn("Failed to purge saved cart", zap.Error(err))
	}
}

// Items returns the cart contents in insertion order.
func (c *Cart) Items() []models.Product {
	items := make([]models.Product, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.items)
}

// TotalPrice sums the unit prices of all products currently in the
// cart. Quantity is intentionally ignored, consistent with the
// no-quantity-increment model.
func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Price
	}
	return total
}

// persist writes the full cart through to storage.
func (c *Cart) persist() {
	if c.storage == nil {
		return
	}

	encoded, err := json.Marshal(c.items)
	if err != nil {
		c.logger.Error("Failed to encode cart", zap.Error(err))
		return
	}

	if err := c.storage.Set(storageKey, string(encoded)); err != nil {
		c.logger.Warn("Failed to save cart", zap.Error(err))
	}
}
