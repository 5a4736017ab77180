package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/storage/memory"
)

func mapLookup(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestOverlay_VarName(t *testing.T) {
	o := New(memory.NewConfigStore())

	assert.Equal(t, "FORGE_EMBEDDING_API_KEY", o.VarName("embedding.api_key"))
	assert.Equal(t, "FORGE_SCHEDULER_NIGHTLY_CRAWL_INTERVAL", o.VarName("scheduler.nightly-crawl.interval"))
}

func TestOverlay_EnvironmentWins(t *testing.T) {
	base := memory.NewConfigStore()
	require.NoError(t, base.Set("embedding.model", "nomic-embed-text"))
	require.NoError(t, base.Set("crawl.max_pages", 50))

	o := NewWithLookup(base, DefaultPrefix, mapLookup(map[string]string{
		"FORGE_EMBEDDING_MODEL":       "mxbai-embed-large",
		"FORGE_CRAWL_TENANT_TIMEOUT":  "90s",
		"FORGE_SCHEDULER_ENABLED":     "false",
		"FORGE_CRAWL_REQUESTS":        "1.5",
		"FORGE_STORAGE_ALLOWED_TYPES": "text/html, text/plain",
	}))

	assert.Equal(t, "mxbai-embed-large", o.GetString("embedding.model"))
	assert.Equal(t, 50, o.GetInt("crawl.max_pages"))
	assert.Equal(t, 90*time.Second, o.GetDuration("crawl.tenant_timeout"))
	assert.InDelta(t, 1.5, o.GetFloat("crawl.requests"), 1e-9)
	assert.Equal(t, []string{"text/html", "text/plain"}, o.GetStringSlice("storage.allowed_types"))

	_, exists := o.Get("scheduler.enabled")
	assert.True(t, exists)
	assert.False(t, o.GetBool("scheduler.enabled"))

	_, exists = o.Get("missing.key")
	assert.False(t, exists)
}

func TestOverlay_SetWritesThrough(t *testing.T) {
	base := memory.NewConfigStore()
	o := NewWithLookup(base, DefaultPrefix, mapLookup(map[string]string{"FORGE_CRON_SECRET": "from-env"}))

	require.NoError(t, o.Set("cron_secret", "from-file"))

	assert.Equal(t, "from-file", base.GetString("cron_secret"))
	assert.Equal(t, "from-env", o.GetString("cron_secret"))
}
