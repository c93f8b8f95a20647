package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"storefront/internal/util"
)

const (
	eventTypeCheckoutCompleted = "checkout.session.completed"

	// metadataCartKey is the metadata field the cart reconstruction
	// records are stored under; it is echoed back verbatim in webhook
	// events.
	metadataCartKey = "cart"
)

// StripeConfig holds the fixed parts of a checkout session.
type StripeConfig struct {
	SuccessURL string
	CancelURL  string
	Currency   string
}

// StripeProvider implements Provider against the Stripe API. The API
// client is rebuilt per call from the credential source, so credential
// rotation in the settings table takes effect immediately.
type StripeProvider struct {
	creds  CredentialSource
	cfg    StripeConfig
	logger *zap.Logger
}

// NewStripeProvider creates a Stripe-backed payment provider.
func NewStripeProvider(creds CredentialSource, cfg StripeConfig) *StripeProvider {
	if cfg.Currency == "" {
		cfg.Currency = "eur"
	}
	return &StripeProvider{
		creds:  creds,
		cfg:    cfg,
		logger: util.GetLogger(),
	}
}

// CreateCheckoutSession builds one price-bearing line item per cart
// entry, embeds the reconstruction records as session metadata and
// requests a hosted payment page from Stripe.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, cart []CartItem) (string, error) {
	ctx, span := util.StartSpan(ctx, "StripeProvider.CreateCheckoutSession")
	defer span.End()

	key, err := p.creds.SecretKey(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load secret key: %w", err)
	}

	metadata, err := EncodeCartMetadata(cart)
	if err != nil {
		return "", err
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(cart))
	for _, item := range cart {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(p.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(UnitAmount(item.Price)),
			},
			Quantity: stripe.Int64(normalizeQuantity(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(p.cfg.SuccessURL),
		CancelURL:          stripe.String(p.cfg.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(metadataCartKey, metadata)

	sc := client.New(key, nil)
	session, err := sc.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session creation failed: %w", err)
	}

	p.logger.Info("Checkout session created",
		zap.String("session_id", session.ID),
		zap.Int("line_items", len(cart)))

	return session.URL, nil
}

// VerifyWebhook verifies the signature of a raw webhook body against
// the signing secret from the settings table and decodes the event.
func (p *StripeProvider) VerifyWebhook(ctx context.Context, payload []byte, sigHeader string) (*Event, error) {
	_, span := util.StartSpan(ctx, "StripeProvider.VerifyWebhook")
	defer span.End()

	secret, err := p.creds.WebhookSecret(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook secret: %w", err)
	}

	stripeEvent, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerification, err)
	}

	event := &Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}

	if event.Type != eventTypeCheckoutCompleted {
		return event, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	cart, err := DecodeCartMetadata(session.Metadata[metadataCartKey])
	if err != nil {
		return nil, err
	}

	completed := &CheckoutCompleted{
		SessionID:   session.ID,
		AmountTotal: session.AmountTotal,
		Cart:        cart,
	}
	if session.CustomerDetails != nil {
		completed.CustomerEmail = session.CustomerDetails.Email
	}
	event.Completed = completed

	return event, nil
}
