// Package embedding provides factory functions for the title embedders.
// The providers themselves live in the fasttext, ollama and openai
// subpackages.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/embedding/fasttext"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/wikirec/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// ErrNotConfigured is returned when the embedding settings are incomplete.
var ErrNotConfigured = errors.New("embedding provider not configured")

// New creates the embedding service selected by settings.
func New(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, ErrNotConfigured
	}

	switch settings.Provider {
	case domain.EmbeddingProviderFastText:
		svc, err := fasttext.NewEmbeddingService(fasttext.Config{
			Path:  settings.Path,
			Model: settings.Model,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.EmbeddingProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.EmbeddingProviderOpenAI:
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// NewAndValidate creates an embedding service and checks that it answers.
// The returned error tells the user how to fix the configuration.
func NewAndValidate(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'wikirec settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'wikirec settings wizard' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}
