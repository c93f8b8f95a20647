package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/payment"
)

func TestCreateSession_EmptyCart(t *testing.T) {
	provider := &fakeProvider{sessionURL: "https://checkout.stripe.com/pay/cs_1"}
	svc := NewCheckoutService(provider)

	_, err := svc.CreateSession(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.CreateSession(context.Background(), []payment.CartItem{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	// The provider must never be reached for an empty cart.
	assert.Zero(t, provider.sessionCalls)
}

func TestCreateSession_ReturnsProviderURL(t *testing.T) {
	provider := &fakeProvider{sessionURL: "https://checkout.stripe.com/pay/cs_1"}
	svc := NewCheckoutService(provider)

	url, err := svc.CreateSession(context.Background(), []payment.CartItem{
		{ID: 1, Name: "Widget", Price: 9.99, Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_1", url)
	assert.Equal(t, 1, provider.sessionCalls)
}

func TestCreateSession_ProviderFailure(t *testing.T) {
	provider := &fakeProvider{sessionErr: errors.New("stripe: invalid api key")}
	svc := NewCheckoutService(provider)

	_, err := svc.CreateSession(context.Background(), []payment.CartItem{
		{ID: 1, Name: "Widget", Price: 9.99},
	})
	assert.Error(t, err)
}
