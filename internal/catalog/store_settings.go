package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SetSetting upserts a key/value pair in the settings table.
func (s *Store) SetSetting(ctx context.Context, key, value, description string) error {
	if key == "" {
		return errors.New("setting key is required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO settings (key, value, description, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (key) DO UPDATE SET
             value = excluded.value,
             description = CASE WHEN excluded.description IS NOT NULL THEN excluded.description ELSE settings.description END,
             updated_at = excluded.updated_at`,
		key,
		value,
		nullableString(description),
		timestamp,
		timestamp,
	); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// GetSetting returns the stored value for a key, with ok=false when absent.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting: %w", err)
	}
	return value, true, nil
}
