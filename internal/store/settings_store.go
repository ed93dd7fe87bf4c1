package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/feral-file/ff-vault/internal/registry"
	"github.com/feral-file/ff-vault/internal/store/schema"
)

const hubSettingsKey = "hub_settings"

// SettingsStore defines the interface for storing and retrieving the hub settings
type SettingsStore interface {
	// LoadSettings returns the saved settings, or nil when none were saved yet
	LoadSettings(ctx context.Context) (*registry.Settings, error)
	// SaveSettings overwrites the saved settings
	SaveSettings(ctx context.Context, settings *registry.Settings) error
}

type settingsStore struct {
	db *gorm.DB
}

// NewSettingsStore creates a new settings store
func NewSettingsStore(db *gorm.DB) SettingsStore {
	return &settingsStore{db: db}
}

// LoadSettings retrieves the hub settings
func (s *settingsStore) LoadSettings(ctx context.Context) (*registry.Settings, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", hubSettingsKey).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil if the hub was never bootstrapped
		}
		return nil, fmt.Errorf("failed to get hub settings: %w", err)
	}

	var settings registry.Settings
	if err := json.Unmarshal([]byte(kv.Value), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse hub settings: %w", err)
	}

	return &settings, nil
}

// SaveSettings stores the hub settings
func (s *settingsStore) SaveSettings(ctx context.Context, settings *registry.Settings) error {
	return saveSettings(s.db.WithContext(ctx), settings)
}

func saveSettings(db *gorm.DB, settings *registry.Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal hub settings: %w", err)
	}

	kv := schema.KeyValueStore{
		Key:   hubSettingsKey,
		Value: string(value),
	}

	if err := db.Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set hub settings: %w", err)
	}

	return nil
}
