package driving

import "github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"

// SettingsService resolves application settings.
type SettingsService interface {
	// Get returns settings from the config file with environment overrides applied.
	Get() (*domain.Settings, error)

	// Set persists a single config key.
	Set(key string, value any) error

	// KnownKeys lists the config keys Set accepts.
	KnownKeys() []string
}
