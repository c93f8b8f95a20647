package store

import (
	"context"
	"database/sql"
	"errors"
)

// GetSetting looks up a setting value by exact key. A missing key
// yields an empty value, not an error; callers pass empty credentials
// through to the provider, which rejects them downstream.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = $1", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}
