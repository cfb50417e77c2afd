package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/04rishabhgupta/ST-Homer/internal/models"
)

const settingsKey = "manager-settings"

// SettingsRepository persists the manager settings as one opaque key-value
// record, loaded and saved whole.
type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Load returns the stored settings, falling back to defaults when no record
// exists yet. Unknown stored fields are ignored; missing fields keep their
// default values.
func (r *SettingsRepository) Load() (models.Settings, error) {
	settings := models.DefaultSettings()

	var value string
	err := r.db.QueryRow(`SELECT value FROM kv_records WHERE key = ?`, settingsKey).Scan(&value)
	if err == sql.ErrNoRows {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		return models.DefaultSettings(), fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// Seed writes the given settings only when no record exists yet, so boot
// defaults never clobber values the manager already tuned.
func (r *SettingsRepository) Seed(settings models.Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO kv_records (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO NOTHING
	`
	if _, err := r.db.Exec(query, settingsKey, string(value)); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	return nil
}

// Save stores the full settings record.
func (r *SettingsRepository) Save(settings models.Settings) error {
	value, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	query := `
		INSERT INTO kv_records (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, settingsKey, string(value)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
