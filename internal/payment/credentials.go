package payment

import (
	"context"

	"storefront/internal/models"
)

// SettingsReader is the slice of the store needed to read credentials.
type SettingsReader interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// SettingsCredentials reads Stripe credentials from the settings table
// on every call. A missing row yields an empty credential, which the
// provider rejects downstream; that mirrors how the storefront has
// always behaved before credentials are configured.
type SettingsCredentials struct {
	settings SettingsReader
}

// NewSettingsCredentials creates a credential source backed by the
// settings table.
func NewSettingsCredentials(settings SettingsReader) *SettingsCredentials {
	return &SettingsCredentials{settings: settings}
}

func (c *SettingsCredentials) SecretKey(ctx context.Context) (string, error) {
	return c.settings.GetSetting(ctx, models.SettingStripeSecretKey)
}

func (c *SettingsCredentials) WebhookSecret(ctx context.Context) (string, error) {
	return c.settings.GetSetting(ctx, models.SettingStripeWebhookKey)
}
