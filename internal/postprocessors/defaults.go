package postprocessors

import (
	"fmt"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/postprocessors/chunker"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/postprocessors/corruption"
)

// Processor names.
const (
	NameChunker          = "chunker"
	NameCorruptionFilter = "corruption-filter"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(NameChunker, buildChunker)
	r.Register(NameCorruptionFilter, buildCorruptionFilter)
}

// NewIngestPipeline builds the ingestion pipeline: chunking followed by the
// corruption filter.
func NewIngestPipeline(cfg domain.ChunkSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	chunkCfg := map[string]any{
		"chunk_size": cfg.Size,
		"overlap":    cfg.Overlap,
	}

	p := NewPipeline()
	for _, name := range []string{NameChunker, NameCorruptionFilter} {
		var procCfg map[string]any
		if name == NameChunker {
			procCfg = chunkCfg
		}
		proc, err := r.Build(name, procCfg)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", name, err)
		}
		p.Add(proc)
	}
	return p, nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if overlap := getIntFromConfig(cfg, "overlap"); overlap >= 0 {
			opts = append(opts, chunker.WithOverlap(overlap))
		}
	}

	return chunker.New(opts...), nil
}

// buildCorruptionFilter takes no config.
func buildCorruptionFilter(map[string]any) (driven.PostProcessor, error) {
	return corruption.NewFilter(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
