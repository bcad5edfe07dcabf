// Package remote holds the HTTP plumbing shared by the hosted embedding
// providers: JSON round trips, provider error bodies and vector checks.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

// maxErrorBody bounds how much of a failed response ends up in an error.
const maxErrorBody = 4 << 10

// Client talks JSON to one provider's HTTP API.
type Client struct {
	provider string
	baseURL  string
	header   http.Header
	http     *http.Client
}

// NewClient returns a client for provider rooted at baseURL. header is sent
// with every request.
func NewClient(provider, baseURL string, timeout time.Duration, header http.Header) *Client {
	if header == nil {
		header = http.Header{}
	}
	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		header:   header,
		http:     &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PostJSON sends in to path and decodes a 200 reply into out. Every failure
// wraps domain.ErrEmbedding.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %s: marshal request: %v", domain.ErrEmbedding, c.provider, err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %w", domain.ErrEmbedding, c.statusError(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", domain.ErrEmbedding, c.provider, err)
	}
	return nil
}

// Ping issues a GET to path and wants a 200. Failures wrap
// domain.ErrEmbeddingUnavailable so startup can tell the user to fix
// settings.
func (c *Client) Ping(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, c.statusError(resp))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", c.provider, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.provider, err)
	}
	return resp, nil
}

// statusError prefers the provider's own message. OpenAI nests it as
// {"error":{"message":...}}, Ollama sends {"error":"..."}.
func (c *Client) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &envelope) == nil && len(envelope.Error) > 0 {
		var text string
		var nested struct {
			Message string `json:"message"`
		}
		switch {
		case json.Unmarshal(envelope.Error, &text) == nil && text != "":
			msg = text
		case json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "":
			msg = nested.Message
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("%s status %d: %s", c.provider, resp.StatusCode, msg)
}

// Vector narrows a decoded embedding to float32. It must have exactly dim
// finite components; anything else cannot be ranked against the catalog.
func Vector(provider string, raw []float64, dim int) ([]float32, error) {
	if len(raw) != dim {
		return nil, fmt.Errorf("%w: %s returned %d dimensions, expected %d",
			domain.ErrEmbedding, provider, len(raw), dim)
	}
	out := make([]float32, dim)
	for i, v := range raw {
		f := float32(v)
		if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
			return nil, fmt.Errorf("%w: %s component %d (%g) does not fit float32",
				domain.ErrEmbedding, provider, i, v)
		}
		out[i] = f
	}
	return out, nil
}

// CheckText rejects titles that would embed to noise.
func CheckText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty text", domain.ErrEmbedding)
	}
	return nil
}
