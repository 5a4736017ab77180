package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyDataDir            = "data_dir"
	KeyListenAddr         = "listen_addr"
	KeyCronSecret         = "cron_secret"
	KeyWebhookURL         = "webhook_url"
	KeyMaxRequeueAttempts = "requeue.max_attempts"

	KeyEmbedProvider      = "embedding.provider"
	KeyEmbedModel         = "embedding.model"
	KeyEmbedBaseURL       = "embedding.base_url"
	KeyEmbedAPIKey        = "embedding.api_key"
	KeyEmbedDimensions    = "embedding.dimensions"
	KeyEmbedBatchSize     = "embedding.batch_size"
	KeyEmbedBatchDelay    = "embedding.batch_delay"
	KeyEmbedMaxInputChars = "embedding.max_input_chars"
	KeyEmbedRPS           = "embedding.requests_per_second"

	KeyChunkSize    = "chunking.size"
	KeyChunkOverlap = "chunking.overlap"

	KeyStorageBackend     = "storage.backend"
	KeyStorageRoot        = "storage.root"
	KeyStorageBucket      = "storage.bucket"
	KeyStorageCredentials = "storage.credentials_file"

	KeyCrawlMaxPages      = "crawl.max_pages"
	KeyCrawlTenantTimeout = "crawl.tenant_timeout"
	KeyCrawlConcurrency   = "crawl.concurrency"
	KeyCrawlUserAgent     = "crawl.user_agent"
	KeyCrawlRPS           = "crawl.requests_per_second"
	KeyCrawlMaxBodyBytes  = "crawl.max_body_bytes"

	KeySchedulerEnabled = "scheduler.enabled"
)

// Per-task scheduler keys are "scheduler.<task id>.enabled" and
// "scheduler.<task id>.interval".
func taskKey(taskID, field string) string {
	return "scheduler." + taskID + "." + field
}

// knownKeys returns every key Set accepts, sorted.
func knownKeys() []string {
	keys := []string{
		KeyDataDir, KeyListenAddr, KeyCronSecret, KeyWebhookURL, KeyMaxRequeueAttempts,
		KeyEmbedProvider, KeyEmbedModel, KeyEmbedBaseURL, KeyEmbedAPIKey, KeyEmbedDimensions,
		KeyEmbedBatchSize, KeyEmbedBatchDelay, KeyEmbedMaxInputChars, KeyEmbedRPS,
		KeyChunkSize, KeyChunkOverlap,
		KeyStorageBackend, KeyStorageRoot, KeyStorageBucket, KeyStorageCredentials,
		KeyCrawlMaxPages, KeyCrawlTenantTimeout, KeyCrawlConcurrency, KeyCrawlUserAgent,
		KeyCrawlRPS, KeyCrawlMaxBodyBytes,
		KeySchedulerEnabled,
	}
	for id := range domain.DefaultSchedulerConfig().TaskConfigs {
		keys = append(keys, taskKey(id, "enabled"), taskKey(id, "interval"))
	}
	slices.Sort(keys)
	return keys
}

// SettingsService resolves application settings from the config store.
// Environment overrides are applied by the store itself.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// KnownKeys returns the keys accepted by Set.
func (s *SettingsService) KnownKeys() []string {
	return knownKeys()
}

// Get resolves settings over DefaultSettings. An unknown provider or
// storage backend is an error rather than a silent default.
func (s *SettingsService) Get() (*domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := &domain.Settings{
		DataDir:            s.getString(KeyDataDir, d.DataDir),
		ListenAddr:         s.getString(KeyListenAddr, d.ListenAddr),
		CronSecret:         s.configStore.GetString(KeyCronSecret),
		WebhookURL:         s.configStore.GetString(KeyWebhookURL),
		MaxRequeueAttempts: s.getInt(KeyMaxRequeueAttempts, d.MaxRequeueAttempts),
		Embedding: domain.EmbeddingSettings{
			Provider:          domain.AIProvider(s.configStore.GetString(KeyEmbedProvider)),
			Model:             s.configStore.GetString(KeyEmbedModel),
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions:        s.configStore.GetInt(KeyEmbedDimensions),
			BatchSize:         s.getInt(KeyEmbedBatchSize, d.Embedding.BatchSize),
			BatchDelay:        s.getDuration(KeyEmbedBatchDelay, d.Embedding.BatchDelay),
			MaxInputChars:     s.getInt(KeyEmbedMaxInputChars, d.Embedding.MaxInputChars),
			RequestsPerSecond: s.configStore.GetFloat(KeyEmbedRPS),
		},
		Chunking: domain.ChunkSettings{
			Size:    s.getInt(KeyChunkSize, d.Chunking.Size),
			Overlap: s.getInt(KeyChunkOverlap, d.Chunking.Overlap),
		},
		Storage: domain.StorageSettings{
			Backend:         domain.ObjectStoreBackend(s.getString(KeyStorageBackend, string(d.Storage.Backend))),
			Root:            s.configStore.GetString(KeyStorageRoot),
			Bucket:          s.configStore.GetString(KeyStorageBucket),
			CredentialsFile: s.configStore.GetString(KeyStorageCredentials),
		},
		Crawl: domain.CrawlSettings{
			MaxPages:          s.getInt(KeyCrawlMaxPages, d.Crawl.MaxPages),
			TenantTimeout:     s.getDuration(KeyCrawlTenantTimeout, d.Crawl.TenantTimeout),
			Concurrency:       s.getInt(KeyCrawlConcurrency, d.Crawl.Concurrency),
			UserAgent:         s.getString(KeyCrawlUserAgent, d.Crawl.UserAgent),
			RequestsPerSecond: s.getFloat(KeyCrawlRPS, d.Crawl.RequestsPerSecond),
			MaxBodyBytes:      int64(s.getInt(KeyCrawlMaxBodyBytes, int(d.Crawl.MaxBodyBytes))),
		},
		Scheduler: s.schedulerConfig(d.Scheduler),
	}

	if p := settings.Embedding.Provider; p != "" && !p.IsValid() {
		return nil, fmt.Errorf("%s %q: %w", KeyEmbedProvider, p, domain.ErrUnsupportedType)
	}
	switch settings.Storage.Backend {
	case domain.ObjectStoreFilesystem:
	case domain.ObjectStoreGCS:
		if settings.Storage.Bucket == "" {
			return nil, fmt.Errorf("%s is required for the gcs backend: %w", KeyStorageBucket, domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%s %q: %w", KeyStorageBackend, settings.Storage.Backend, domain.ErrUnsupportedType)
	}
	if settings.Chunking.Overlap >= settings.Chunking.Size {
		return nil, fmt.Errorf("%s must be smaller than %s: %w", KeyChunkOverlap, KeyChunkSize, domain.ErrInvalidInput)
	}
	return settings, nil
}

// Set persists a single config key. Unknown keys are rejected.
func (s *SettingsService) Set(key string, value any) error {
	if _, found := slices.BinarySearch(knownKeys(), key); !found {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}
	if key == KeyEmbedProvider {
		if p := domain.AIProvider(fmt.Sprint(value)); p != "" && !p.IsValid() {
			return fmt.Errorf("invalid embedding provider: %s: %w", p, domain.ErrInvalidInput)
		}
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) schedulerConfig(defaults domain.SchedulerConfig) domain.SchedulerConfig {
	cfg := domain.SchedulerConfig{
		Enabled:     s.getBool(KeySchedulerEnabled, defaults.Enabled),
		TaskConfigs: make(map[string]domain.TaskConfig, len(defaults.TaskConfigs)),
	}
	for id, def := range defaults.TaskConfigs {
		cfg.TaskConfigs[id] = domain.TaskConfig{
			Enabled:  s.getBool(taskKey(id, "enabled"), def.Enabled),
			Interval: s.getDuration(taskKey(id, "interval"), def.Interval),
		}
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
