package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/payment"
)

func completedEvent() *payment.Event {
	return &payment.Event{
		ID:   "evt_1",
		Type: "checkout.session.completed",
		Completed: &payment.CheckoutCompleted{
			SessionID:     "cs_1",
			AmountTotal:   1998,
			CustomerEmail: "buyer@example.com",
			Cart: []payment.MetadataItem{
				{ID: 1, Name: "Widget", Quantity: 2, UnitAmount: 999},
			},
		},
	}
}

func TestProcessWebhook_CompletedCreatesOrder(t *testing.T) {
	db := newFakeOrderStore()
	publisher := &fakePublisher{}
	svc := NewOrderService(db, &fakeProvider{event: completedEvent()}, publisher)

	event, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	require.NotNil(t, event.Completed)

	require.Len(t, db.orders, 1)
	order := db.orders[0]
	assert.Equal(t, "buyer@example.com", order.Email)
	assert.Equal(t, int64(1998), order.Amount)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, "cs_1", order.StripeID)

	require.Len(t, db.items, 1)
	item := db.items[0]
	require.NotNil(t, item.ProductID)
	assert.Equal(t, int64(1), *item.ProductID)
	assert.Equal(t, int64(2), item.Quantity)
	// Price comes from the metadata snapshot, not the live catalog.
	assert.Equal(t, int64(999), item.Price)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.EventTypeOrderPaid, publisher.events[0].EventType)
	assert.Equal(t, order.ID, publisher.events[0].OrderID)
}

func TestProcessWebhook_MultipleItems(t *testing.T) {
	event := completedEvent()
	event.Completed.Cart = []payment.MetadataItem{
		{ID: 1, Name: "Widget", Quantity: 2, UnitAmount: 999},
		{ID: 2, Name: "Gadget", Quantity: 1, UnitAmount: 50},
		{ID: 3, Name: "Gizmo", Quantity: 4, UnitAmount: 1250},
	}

	db := newFakeOrderStore()
	svc := NewOrderService(db, &fakeProvider{event: event}, nil)

	_, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	require.Len(t, db.orders, 1)
	require.Len(t, db.items, 3)
	for i, want := range event.Completed.Cart {
		assert.Equal(t, want.UnitAmount, db.items[i].Price)
		assert.Equal(t, want.Quantity, db.items[i].Quantity)
	}
}

func TestProcessWebhook_BadSignatureCreatesNothing(t *testing.T) {
	db := newFakeOrderStore()
	provider := &fakeProvider{verifyErr: fmt.Errorf("%w: bad header", payment.ErrVerification)}
	svc := NewOrderService(db, provider, nil)

	_, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "bad")
	require.Error(t, err)
	assert.True(t, errors.Is(err, payment.ErrVerification))
	assert.Empty(t, db.orders)
	assert.Empty(t, db.items)
}

func TestProcessWebhook_OtherEventTypeIsNoOp(t *testing.T) {
	db := newFakeOrderStore()
	event := &payment.Event{ID: "evt_2", Type: "payment_intent.created"}
	svc := NewOrderService(db, &fakeProvider{event: event}, nil)

	got, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Nil(t, got.Completed)
	assert.Empty(t, db.orders)
}

func TestProcessWebhook_MissingEmailFallsBack(t *testing.T) {
	event := completedEvent()
	event.Completed.CustomerEmail = ""

	db := newFakeOrderStore()
	svc := NewOrderService(db, &fakeProvider{event: event}, nil)

	_, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	require.Len(t, db.orders, 1)
	assert.Equal(t, models.FallbackCustomerEmail, db.orders[0].Email)
}

func TestProcessWebhook_PersistenceFailureSurfaces(t *testing.T) {
	db := newFakeOrderStore()
	db.failTx = true
	svc := NewOrderService(db, &fakeProvider{event: completedEvent()}, nil)

	_, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.Error(t, err)
	assert.False(t, errors.Is(err, payment.ErrVerification))
	assert.Empty(t, db.orders)
}

// Replays of the same event id are not deduplicated. This documents a
// known limitation: a redelivered completed event creates a duplicate
// order.
func TestProcessWebhook_ReplayCreatesDuplicateOrders(t *testing.T) {
	db := newFakeOrderStore()
	svc := NewOrderService(db, &fakeProvider{event: completedEvent()}, nil)

	_, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	_, err = svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)

	assert.Len(t, db.orders, 2)
}

func TestProcessWebhook_PublishFailureDoesNotFailWebhook(t *testing.T) {
	db := newFakeOrderStore()
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewOrderService(db, &fakeProvider{event: completedEvent()}, publisher)

	_, err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig")
	require.NoError(t, err)
	assert.Len(t, db.orders, 1)
}

func TestListOrders_AmountFallback(t *testing.T) {
	db := newFakeOrderStore()
	svc := NewOrderService(db, &fakeProvider{}, nil)

	productID := int64(1)
	require.NoError(t, db.CreateOrderWithItems(context.Background(),
		&models.Order{Email: "a@example.com", Amount: 0, Status: models.OrderStatusPaid, StripeID: "cs_a"},
		[]models.OrderItem{
			{ProductID: &productID, Quantity: 2, Price: 999},
			{ProductID: &productID, Quantity: 1, Price: 50},
		}))

	views, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	// No stored amount: falls back to sum(price * quantity).
	assert.Equal(t, int64(2*999+50), views[0].Amount)
	assert.Len(t, views[0].Items, 2)
}

func TestListOrders_NewestFirstWithStoredAmount(t *testing.T) {
	db := newFakeOrderStore()
	svc := NewOrderService(db, &fakeProvider{}, nil)

	require.NoError(t, db.CreateOrderWithItems(context.Background(),
		&models.Order{Email: "first@example.com", Amount: 100, Status: models.OrderStatusPaid, StripeID: "cs_1"}, nil))
	require.NoError(t, db.CreateOrderWithItems(context.Background(),
		&models.Order{Email: "second@example.com", Amount: 200, Status: models.OrderStatusPaid, StripeID: "cs_2"}, nil))

	views, err := svc.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "second@example.com", views[0].Email)
	assert.Equal(t, int64(200), views[0].Amount)
	assert.Equal(t, "first@example.com", views[1].Email)
	assert.NotNil(t, views[1].Items)
}
