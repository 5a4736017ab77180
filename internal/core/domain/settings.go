package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or a compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// ObjectStoreBackend selects where uploaded files are kept.
type ObjectStoreBackend string

// Object store backends.
const (
	ObjectStoreFilesystem ObjectStoreBackend = "filesystem"
	ObjectStoreGCS        ObjectStoreBackend = "gcs"
)

// EmbeddingSettings holds embedding provider and batching configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int

	// BatchSize is how many chunks are embedded concurrently.
	BatchSize int

	// BatchDelay is the pause between batches.
	BatchDelay time.Duration

	// MaxInputChars truncates each input before it is sent.
	MaxInputChars int

	// RequestsPerSecond limits calls to the provider. Zero disables the limiter.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ChunkSettings holds chunker configuration.
type ChunkSettings struct {
	Size    int
	Overlap int
}

// StorageSettings holds object store configuration.
type StorageSettings struct {
	// Backend is filesystem or gcs.
	Backend ObjectStoreBackend

	// Root is the filesystem root for the filesystem backend.
	Root string

	// Bucket is the GCS bucket for the gcs backend.
	Bucket string

	// CredentialsFile is an optional service account key for GCS.
	CredentialsFile string
}

// CrawlSettings holds crawler and nightly scheduler configuration.
type CrawlSettings struct {
	// MaxPages caps pages fetched per domain.
	MaxPages int

	// TenantTimeout bounds each tenant's crawl in a run.
	TenantTimeout time.Duration

	// Concurrency is how many tenants crawl at once.
	Concurrency int

	// UserAgent is sent with every request.
	UserAgent string

	// RequestsPerSecond limits fetches per domain.
	RequestsPerSecond float64

	// MaxBodyBytes caps a single page body.
	MaxBodyBytes int64
}

// Settings holds all application settings.
type Settings struct {
	// DataDir holds the sqlite database.
	DataDir string

	// ListenAddr is the HTTP API address.
	ListenAddr string

	// CronSecret is the shared secret expected on the scheduled trigger.
	CronSecret string

	// WebhookURL receives outbox events. Empty disables delivery.
	WebhookURL string

	// MaxRequeueAttempts bounds requeues without a successful completion.
	MaxRequeueAttempts int

	Embedding EmbeddingSettings
	Chunking  ChunkSettings
	Storage   StorageSettings
	Crawl     CrawlSettings
	Scheduler SchedulerConfig
}

// DefaultSettings returns settings with sensible defaults.
// The embedding provider is left unconfigured.
func DefaultSettings() Settings {
	return Settings{
		ListenAddr:         ":8080",
		MaxRequeueAttempts: 3,
		Embedding: EmbeddingSettings{
			BatchSize:     5,
			BatchDelay:    200 * time.Millisecond,
			MaxInputChars: 8000,
		},
		Chunking: ChunkSettings{
			Size:    1000,
			Overlap: 200,
		},
		Storage: StorageSettings{
			Backend: ObjectStoreFilesystem,
		},
		Crawl: CrawlSettings{
			MaxPages:          50,
			TenantTimeout:     10 * time.Minute,
			Concurrency:       4,
			UserAgent:         "forge-crawler/1.0",
			RequestsPerSecond: 2,
			MaxBodyBytes:      5 << 20,
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
