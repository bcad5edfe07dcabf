// Package openai embeds article titles with the OpenAI embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/wikirec/internal/adapters/driven/embedding/remote"
	"github.com/custodia-labs/wikirec/internal/core/domain"
	"github.com/custodia-labs/wikirec/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults applied by NewEmbeddingService.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

// nativeDimensions is the output size of each known model. Only the
// text-embedding-3 family accepts a shorter size in the request.
var nativeDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

const fallbackDimensions = 1536

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is required.
	APIKey string

	// BaseURL points at the API root; compatible gateways work too.
	BaseURL string

	Model   string
	Timeout time.Duration

	// Dimensions must match the catalog vectors. Zero uses the model's
	// native size.
	Dimensions int
}

// EmbeddingService turns titles into vectors through the OpenAI API.
type EmbeddingService struct {
	api        *remote.Client
	model      string
	dimensions int
	shorten    bool
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewEmbeddingService validates cfg and fills defaults.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	native, known := nativeDimensions[cfg.Model]
	if !known {
		native = fallbackDimensions
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = native
	}

	header := http.Header{"Authorization": {"Bearer " + cfg.APIKey}}
	return &EmbeddingService{
		api:        remote.NewClient("openai", cfg.BaseURL, cfg.Timeout, header),
		model:      cfg.Model,
		dimensions: dims,
		shorten:    strings.HasPrefix(cfg.Model, "text-embedding-3-") && dims != native,
	}, nil
}

// Embed returns the vector for one title.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := remote.CheckText(text); err != nil {
		return nil, err
	}
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch embeds all texts in one request. The API may answer out of
// order, so rows are placed by their index field, and every input must
// come back exactly once.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := embeddingRequest{Model: s.model, Input: texts}
	if s.shorten {
		req.Dimensions = s.dimensions
	}
	var resp embeddingResponse
	if err := s.api.PostJSON(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for _, row := range resp.Data {
		if row.Index < 0 || row.Index >= len(texts) || out[row.Index] != nil {
			return nil, fmt.Errorf("%w: openai returned index %d for %d inputs",
				domain.ErrEmbedding, row.Index, len(texts))
		}
		v, err := remote.Vector("openai", row.Embedding, s.dimensions)
		if err != nil {
			return nil, err
		}
		out[row.Index] = v
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: openai returned %d embeddings for %d inputs",
			domain.ErrEmbedding, len(resp.Data), len(texts))
	}
	return out, nil
}

// Dimensions returns the vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the configured model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.Ping(ctx, "/models")
}

// Close is a no-op.
func (s *EmbeddingService) Close() error {
	return nil
}
