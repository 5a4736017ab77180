package memory

import (
	"sync"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/config/configval"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a map. Save and Load do nothing, so it
// stands in for config.toml in service and overlay tests.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore returns an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) value(key string) any {
	val, _ := s.Get(key)
	return val
}

func (s *ConfigStore) GetString(key string) string { return configval.String(s.value(key)) }
func (s *ConfigStore) GetInt(key string) int       { return configval.Int(s.value(key)) }
func (s *ConfigStore) GetFloat(key string) float64 { return configval.Float(s.value(key)) }
func (s *ConfigStore) GetBool(key string) bool     { return configval.Bool(s.value(key)) }

func (s *ConfigStore) GetStringSlice(key string) []string {
	return configval.StringSlice(s.value(key))
}

func (s *ConfigStore) GetDuration(key string) time.Duration {
	return configval.Duration(s.value(key))
}

func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Save() error  { return nil }
func (s *ConfigStore) Load() error  { return nil }
func (s *ConfigStore) Path() string { return ":memory:" }
