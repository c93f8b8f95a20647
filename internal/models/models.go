package models

import "time"

// Product represents a catalog product. Price is in major currency
// units (e.g. euros); order items snapshot prices in minor units.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Image       *string   `db:"image" json:"image"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Order represents a completed checkout. Amount is in minor currency
// units as reported by the payment provider. Orders are created once
// by webhook reconciliation and never updated afterwards.
type Order struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Amount    int64     `db:"amount" json:"amount"`
	Status    string    `db:"status" json:"status"`
	StripeID  string    `db:"stripe_id" json:"stripe_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OrderItem is a line of an order. ProductID is nullable because the
// referenced product may have been deleted since purchase. Price is the
// minor-unit amount captured at checkout time, never the live product
// price.
type OrderItem struct {
	ID        int64  `db:"id" json:"id"`
	OrderID   int64  `db:"order_id" json:"order_id"`
	ProductID *int64 `db:"product_id" json:"product_id"`
	Quantity  int64  `db:"quantity" json:"quantity"`
	Price     int64  `db:"price" json:"price"`
}

// Setting is a key/value row holding provider credentials. Read-only
// from this service; looked up by exact key on every checkout and
// webhook call so credentials can rotate without a restart.
type Setting struct {
	Key   string `db:"key" json:"key"`
	Value string `db:"value" json:"value"`
}

// Order statuses
const (
	OrderStatusPaid = "PAID"
)

// Setting keys for Stripe credentials
const (
	SettingStripeSecretKey  = "STRIPE_SECRET_KEY"
	SettingStripeWebhookKey = "STRIPE_WEBHOOK_SECRET"
)

// FallbackCustomerEmail is recorded when the provider event carries no
// customer email.
const FallbackCustomerEmail = "unknown@example.com"
