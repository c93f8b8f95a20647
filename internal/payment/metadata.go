package payment

import (
	"encoding/json"
	"fmt"
	"math"
)

// MetadataItem is the compact reconstruction record embedded in a
// checkout session's metadata. It carries everything the webhook
// reconciler needs to build order items without re-reading the catalog,
// so prices stay snapshotted at checkout time.
type MetadataItem struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
	UnitAmount int64  `json:"unit_amount"`
}

// UnitAmount converts a major-unit price to minor units, rounding to
// the nearest cent.
func UnitAmount(price float64) int64 {
	return int64(math.Round(price * 100))
}

// normalizeQuantity defaults missing or non-positive quantities to 1.
func normalizeQuantity(q int64) int64 {
	if q <= 0 {
		return 1
	}
	return q
}

// EncodeCartMetadata serializes a cart into the metadata string
// attached to a checkout session.
func EncodeCartMetadata(cart []CartItem) (string, error) {
	records := make([]MetadataItem, 0, len(cart))
	for _, item := range cart {
		records = append(records, MetadataItem{
			ID:         item.ID,
			Name:       item.Name,
			Quantity:   normalizeQuantity(item.Quantity),
			UnitAmount: UnitAmount(item.Price),
		})
	}

	encoded, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart metadata: %w", err)
	}
	return string(encoded), nil
}

// DecodeCartMetadata recovers the reconstruction records embedded at
// session-creation time. An empty string decodes to an empty cart, the
// same as a session created without metadata.
func DecodeCartMetadata(encoded string) ([]MetadataItem, error) {
	if encoded == "" {
		return []MetadataItem{}, nil
	}

	var records []MetadataItem
	if err := json.Unmarshal([]byte(encoded), &records); err != nil {
		return nil, fmt.Errorf("failed to decode cart metadata: %w", err)
	}
	return records, nil
}
