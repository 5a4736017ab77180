// Package ai builds the configured embedding provider.
package ai

import (
	"fmt"

	ollamaembed "github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/embedding/openai"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// CreateEmbeddingService creates the embedding service named by settings.
// Returns nil, nil if no provider is configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	model := settings.Model
	if model == "" {
		model = domain.DefaultEmbeddingModels()[settings.Provider]
	}
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[model]
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             model,
			Dimensions:        dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}
