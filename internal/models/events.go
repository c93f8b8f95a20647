package models

import "time"

// Event types
const (
	EventTypeOrderPaid = "ORDER_PAID"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPaidEvent is published after a completed checkout session has
// been reconciled into a persisted order.
type OrderPaidEvent struct {
	BaseEvent
	OrderID   int64           `json:"order_id"`
	Email     string          `json:"email"`
	Amount    int64           `json:"amount"`
	SessionID string          `json:"session_id"`
	Items     []OrderItemData `json:"items"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}
