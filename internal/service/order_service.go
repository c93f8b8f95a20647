package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/store"
	"storefront/internal/util"
)

// OrderStore is the slice of the store the order service needs.
type OrderStore interface {
	CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrderItemDetails(ctx context.Context) ([]store.OrderItemDetail, error)
}

// OrderEventPublisher publishes order domain events. May be nil when
// no broker is configured.
type OrderEventPublisher interface {
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
}

// OrderService reconciles provider webhook events into orders and
// serves the order dashboard reads.
type OrderService struct {
	store     OrderStore
	provider  payment.Provider
	publisher OrderEventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store OrderStore, provider payment.Provider, publisher OrderEventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		provider:  provider,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// ProcessWebhook verifies a raw provider event and, for a completed
// checkout session, persists the corresponding order. Verified events
// of any other type are acknowledged as no-ops.
//
// Replays of the same event id are not deduplicated: a redelivered
// completed event creates a second order. Known gap.
func (s *OrderService) ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) (*payment.Event, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ProcessWebhook")
	defer span.End()

	event, err := s.provider.VerifyWebhook(ctx, payload, sigHeader)
	if err != nil {
		util.WebhookVerifyFailedTotal.Inc()
		return nil, err
	}

	util.WebhookEventsTotal.WithLabelValues(event.Type).Inc()

	if event.Completed == nil {
		s.logger.Debug("Ignoring webhook event", zap.String("type", event.Type))
		return event, nil
	}

	if _, err := s.recordCompletedCheckout(ctx, event.Completed); err != nil {
		util.OrdersPersistFailedTotal.Inc()
		s.logger.Error("Failed to persist order from webhook",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.Completed.SessionID),
			zap.Error(err))
		return event, err
	}

	return event, nil
}

// recordCompletedCheckout creates one order plus one item per metadata
// record, atomically. Item prices come from the metadata snapshot, not
// from the live catalog.
func (s *OrderService) recordCompletedCheckout(ctx context.Context, completed *payment.CheckoutCompleted) (*models.Order, error) {
	email := completed.CustomerEmail
	if email == "" {
		email = models.FallbackCustomerEmail
	}

	order := &models.Order{
		Email:    email,
		Amount:   completed.AmountTotal,
		Status:   models.OrderStatusPaid,
		StripeID: completed.SessionID,
	}

	items := make([]models.OrderItem, 0, len(completed.Cart))
	for _, record := range completed.Cart {
		productID := record.ID
		items = append(items, models.OrderItem{
			ProductID: &productID,
			Quantity:  record.Quantity,
			Price:     record.UnitAmount,
		})
	}

	if err := s.store.CreateOrderWithItems(ctx, order, items); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created from completed checkout",
		zap.Int64("order_id", order.ID),
		zap.String("session_id", order.StripeID),
		zap.Int("items", len(items)))

	s.publishOrderPaid(ctx, order, items)
	return order, nil
}

// publishOrderPaid emits the ORDER_PAID domain event. Best-effort: a
// broker failure is logged, never surfaced to the provider.
func (s *OrderService) publishOrderPaid(ctx context.Context, order *models.Order, items []models.OrderItem) {
	if s.publisher == nil {
		return
	}

	eventItems := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		var productID int64
		if item.ProductID != nil {
			productID = *item.ProductID
		}
		eventItems = append(eventItems, models.OrderItemData{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}

	event := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID:   order.ID,
		Email:     order.Email,
		Amount:    order.Amount,
		SessionID: order.StripeID,
		Items:     eventItems,
	}

	if err := s.publisher.PublishOrderPaid(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPaid event",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
	}
}

// ProductSnapshot is the product view nested under an order item. Nil
// when the product has been deleted since purchase.
type ProductSnapshot struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image *string `json:"image"`
}

// OrderItemView is an order item as served to the dashboard.
type OrderItemView struct {
	ID       int64            `json:"id"`
	Quantity int64            `json:"quantity"`
	Price    int64            `json:"price"`
	Product  *ProductSnapshot `json:"product"`
}

// OrderView is an order with its items as served to the dashboard.
type OrderView struct {
	ID        int64           `json:"id"`
	Email     string          `json:"email"`
	Amount    int64           `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []OrderItemView `json:"items"`
}

// ListOrders returns all orders newest-first, each annotated with its
// items and product snapshots. When an order has no stored amount the
// displayed amount falls back to summing item price times quantity.
func (s *OrderService) ListOrders(ctx context.Context) ([]OrderView, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	details, err := s.store.ListOrderItemDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	itemsByOrder := make(map[int64][]OrderItemView, len(orders))
	for _, detail := range details {
		view := OrderItemView{
			ID:       detail.ID,
			Quantity: detail.Quantity,
			Price:    detail.Price,
		}
		if detail.ProductID != nil && detail.ProductName != nil {
			view.Product = &ProductSnapshot{
				ID:    *detail.ProductID,
				Name:  *detail.ProductName,
				Image: detail.ProductImage,
			}
			if detail.ProductPrice != nil {
				view.Product.Price = *detail.ProductPrice
			}
		}
		itemsByOrder[detail.OrderID] = append(itemsByOrder[detail.OrderID], view)
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		items := itemsByOrder[order.ID]
		if items == nil {
			items = []OrderItemView{}
		}

		amount := order.Amount
		if amount == 0 {
			for _, item := range items {
				amount += item.Price * item.Quantity
			}
		}

		views = append(views, OrderView{
			ID:        order.ID,
			Email:     order.Email,
			Amount:    amount,
			Status:    order.Status,
			CreatedAt: order.CreatedAt,
			Items:     items,
		})
	}

	return views, nil
}
