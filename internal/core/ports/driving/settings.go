package driving

import "github.com/custodia-labs/wikirec/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Values returns every recognised key with its effective value,
	// defaults included.
	Values() (map[string]string, error)

	// SetValue parses and stores a single key.
	SetValue(key, raw string) error

	// Validate checks if current settings are complete enough to serve.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
