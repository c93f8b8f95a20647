package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/payment"
	"storefront/internal/store"
)

// fakeOrderStore records created orders in memory.
type fakeOrderStore struct {
	orders  []models.Order
	items   []models.OrderItem
	failTx  bool
	nextID  int64
	listErr error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{}
}

func (f *fakeOrderStore) CreateOrderWithItems(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if f.failTx {
		return errors.New("db unreachable")
	}

	f.nextID++
	order.ID = f.nextID
	f.orders = append(f.orders, *order)
	for i := range items {
		items[i].OrderID = order.ID
		items[i].ID = int64(len(f.items) + 1)
		f.items = append(f.items, items[i])
	}
	return nil
}

func (f *fakeOrderStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	// Newest first, mirroring the real store's ordering.
	orders := make([]models.Order, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		orders = append(orders, f.orders[i])
	}
	return orders, nil
}

func (f *fakeOrderStore) ListOrderItemDetails(ctx context.Context) ([]store.OrderItemDetail, error) {
	details := make([]store.OrderItemDetail, 0, len(f.items))
	for _, item := range f.items {
		details = append(details, store.OrderItemDetail{OrderItem: item})
	}
	return details, nil
}

// fakeProvider returns canned verification results and counts calls.
type fakeProvider struct {
	event        *payment.Event
	verifyErr    error
	sessionURL   string
	sessionErr   error
	sessionCalls int
}

func (f *fakeProvider) CreateCheckoutSession(ctx context.Context, cart []payment.CartItem) (string, error) {
	f.sessionCalls++
	if f.sessionErr != nil {
		return "", f.sessionErr
	}
	return f.sessionURL, nil
}

func (f *fakeProvider) VerifyWebhook(ctx context.Context, payload []byte, sigHeader string) (*payment.Event, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.event, nil
}

// fakePublisher records published order events.
type fakePublisher struct {
	events []*models.OrderPaidEvent
	err    error
}

func (f *fakePublisher) PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// fakeCatalogStore is a map-backed catalog.
type fakeCatalogStore struct {
	products map[int64]models.Product
	nextID   int64
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{products: make(map[int64]models.Product)}
}

func (f *fakeCatalogStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeCatalogStore) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeCatalogStore) CreateProduct(ctx context.Context, product *models.Product) error {
	f.nextID++
	product.ID = f.nextID
	f.products[product.ID] = *product
	return nil
}

func (f *fakeCatalogStore) UpdateProduct(ctx context.Context, product *models.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return fmt.Errorf("product %d missing", product.ID)
	}
	f.products[product.ID] = *product
	return nil
}

func (f *fakeCatalogStore) DeleteProduct(ctx context.Context, id int64) error {
	delete(f.products, id)
	return nil
}
