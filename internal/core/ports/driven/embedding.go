package driven

import "context"

// EmbeddingService is one embedding provider (OpenAI-compatible or Ollama).
// It makes a single provider call per EmbedBatch; truncation, batching and
// pacing between batches belong to the caller. Throttling is reported as
// domain.ErrRateLimited and an unreachable or unauthorised provider as
// domain.ErrEmbeddingUnavailable.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch returns one vector per input, aligned by index. An entry the
	// provider skipped is nil.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions is the only vector length ever written to a chunk.
	Dimensions() int
	ModelName() string
	Ping(ctx context.Context) error
	Close() error
}
