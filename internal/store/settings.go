package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dayblock/dayblock/internal/models"
)

// schedulingConfigKey is the settings-table key holding the scheduling config
const schedulingConfigKey = "scheduling_config"

// SettingsRepository handles the key-value settings store
type SettingsRepository struct {
	store *Store
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(store *Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Get returns the raw value for a key, or ErrNotFound
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	query := r.store.rebind(`SELECT value FROM settings WHERE key = ?`)

	var value string
	err := r.store.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

// Set writes the value for a key, inserting or replacing as needed
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	query := r.store.rebind(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if _, err := r.store.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// LoadSchedulingConfig returns the persisted scheduling configuration, or the
// defaults when nothing has been saved yet
func (r *SettingsRepository) LoadSchedulingConfig(ctx context.Context) (models.SchedulingConfig, error) {
	raw, err := r.Get(ctx, schedulingConfigKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.DefaultSchedulingConfig(), nil
		}
		return models.DefaultSchedulingConfig(), err
	}

	var cfg models.SchedulingConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return models.DefaultSchedulingConfig(), fmt.Errorf("failed to decode scheduling config: %w", err)
	}
	return cfg, nil
}

// SaveSchedulingConfig persists the scheduling configuration
func (r *SettingsRepository) SaveSchedulingConfig(ctx context.Context, cfg models.SchedulingConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode scheduling config: %w", err)
	}
	return r.Set(ctx, schedulingConfigKey, string(raw))
}
