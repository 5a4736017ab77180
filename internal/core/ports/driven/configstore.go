package driven

import "time"

// ConfigStore holds flat dotted settings keys such as "embedding.provider"
// or "crawl.tenant_timeout". Typed getters return the zero value for a
// missing key or one that cannot be converted.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat(key string) float64
	// GetDuration parses strings with time.ParseDuration and reads integers as seconds.
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string

	// Set persists immediately; a failed write leaves the previous value in place.
	Set(key string, value any) error
	Save() error
	Load() error
	// Path is the backing file, or a placeholder for non-file stores.
	Path() string
}
