// Package env layers environment variables over a driven.ConfigStore.
//
// The key "embedding.api_key" is overridden by FORGE_EMBEDDING_API_KEY.
// Overrides are read-only: Set, Save and Load act on the wrapped store.
package env

import (
	"os"
	"strings"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/config/configval"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure Overlay implements the interface.
var _ driven.ConfigStore = (*Overlay)(nil)

// DefaultPrefix is prepended to every derived variable name.
const DefaultPrefix = "FORGE_"

// Overlay is a driven.ConfigStore whose reads prefer environment variables.
type Overlay struct {
	base   driven.ConfigStore
	prefix string
	lookup func(string) (string, bool)
}

// New wraps base with FORGE_* overrides from the process environment.
func New(base driven.ConfigStore) *Overlay {
	return NewWithLookup(base, DefaultPrefix, os.LookupEnv)
}

// NewWithLookup wraps base using a custom prefix and variable lookup.
func NewWithLookup(base driven.ConfigStore, prefix string, lookup func(string) (string, bool)) *Overlay {
	return &Overlay{base: base, prefix: prefix, lookup: lookup}
}

// VarName returns the environment variable that overrides key.
func (o *Overlay) VarName(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return o.prefix + strings.ToUpper(r.Replace(key))
}

// Get returns the environment value when set, otherwise the stored value.
func (o *Overlay) Get(key string) (any, bool) {
	if v, ok := o.lookup(o.VarName(key)); ok {
		return v, true
	}
	return o.base.Get(key)
}

// GetString retrieves a string configuration value.
func (o *Overlay) GetString(key string) string {
	v, _ := o.Get(key)
	return configval.String(v)
}

// GetInt retrieves an integer configuration value.
func (o *Overlay) GetInt(key string) int {
	v, _ := o.Get(key)
	return configval.Int(v)
}

// GetBool retrieves a boolean configuration value.
func (o *Overlay) GetBool(key string) bool {
	v, _ := o.Get(key)
	return configval.Bool(v)
}

// GetFloat retrieves a numeric configuration value.
func (o *Overlay) GetFloat(key string) float64 {
	v, _ := o.Get(key)
	return configval.Float(v)
}

// GetDuration retrieves a duration configuration value.
func (o *Overlay) GetDuration(key string) time.Duration {
	v, _ := o.Get(key)
	return configval.Duration(v)
}

// GetStringSlice retrieves a string slice. Environment values are comma separated.
func (o *Overlay) GetStringSlice(key string) []string {
	v, _ := o.Get(key)
	return configval.StringSlice(v)
}

// Set stores a value in the wrapped store. An environment override still wins on read.
func (o *Overlay) Set(key string, value any) error {
	return o.base.Set(key, value)
}

// Save persists the wrapped store.
func (o *Overlay) Save() error {
	return o.base.Save()
}

// Load reloads the wrapped store.
func (o *Overlay) Load() error {
	return o.base.Load()
}

// Path returns the wrapped store's file path.
func (o *Overlay) Path() string {
	return o.base.Path()
}
