package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/payment"
	"storefront/internal/util"
)

// CheckoutService turns client carts into hosted checkout sessions.
type CheckoutService struct {
	provider payment.Provider
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(provider payment.Provider) *CheckoutService {
	return &CheckoutService{
		provider: provider,
		logger:   util.GetLogger(),
	}
}

// CreateSession validates the cart and requests a hosted checkout
// session from the payment provider, returning its payment page URL.
// An empty or absent cart fails before any provider call is made.
func (s *CheckoutService) CreateSession(ctx context.Context, cart []payment.CartItem) (string, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.CreateSession")
	defer span.End()

	if len(cart) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return "", fmt.Errorf("%w: cart is empty", ErrInvalidInput)
	}

	url, err := s.provider.CreateCheckoutSession(ctx, cart)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("provider_error").Inc()
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		return "", err
	}

	util.CheckoutSessionsTotal.Inc()
	return url, nil
}
