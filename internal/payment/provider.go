// Package payment integrates the storefront with its payment provider.
// It creates hosted checkout sessions from cart contents and verifies
// and decodes the webhook events the provider sends back.
package payment

import (
	"context"
	"errors"
)

// ErrVerification reports a webhook payload whose signature did not
// match the configured signing secret. Callers answer the provider with
// a client error and must not create any order.
var ErrVerification = errors.New("webhook signature verification failed")

// CartItem is one entry of the client cart as submitted to checkout.
// Price is in major currency units; Quantity defaults to 1 when zero
// or negative.
type CartItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// CheckoutCompleted carries the fields of a completed checkout session
// needed to reconcile it into an order.
type CheckoutCompleted struct {
	SessionID     string
	AmountTotal   int64
	CustomerEmail string
	Cart          []MetadataItem
}

// Event is a verified webhook event in provider-neutral form.
// Completed is non-nil only for checkout-completed events; every other
// event type is acknowledged as a no-op.
type Event struct {
	ID        string
	Type      string
	Completed *CheckoutCompleted
}

// Provider abstracts the operations required from the upstream payment
// provider.
type Provider interface {
	// CreateCheckoutSession opens a hosted checkout session for the
	// given cart and returns the URL of its payment page.
	CreateCheckoutSession(ctx context.Context, cart []CartItem) (string, error)

	// VerifyWebhook checks the signature of a raw webhook body and
	// decodes the event. Returns ErrVerification (possibly wrapped)
	// when the signature does not match.
	VerifyWebhook(ctx context.Context, payload []byte, sigHeader string) (*Event, error)
}

// CredentialSource supplies provider credentials. Implementations are
// consulted on every call so that rotated credentials take effect
// without a restart.
type CredentialSource interface {
	SecretKey(ctx context.Context) (string, error)
	WebhookSecret(ctx context.Context) (string, error)
}
