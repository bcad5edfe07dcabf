package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wikirec/internal/core/domain"
)

func newServer(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewEmbeddingService(Config{BaseURL: srv.URL + "/", Dimensions: 3})
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	s := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultBaseURL, s.api.BaseURL())
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultDimensions, s.Dimensions())
	assert.NoError(t, s.Close())
}

func TestEmbed(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, []string{"Moscow"}, req.Input)

		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{0.5, -1, 2}}})
	})

	got, err := s.Embed(context.Background(), "Moscow")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1, 2}, got)
}

func TestEmbed_Errors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			text: "x",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model not loaded", http.StatusInternalServerError)
			},
		},
		{
			name: "wrong dimension",
			text: "x",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float64{{1}}})
			},
		},
		{
			name: "model not pulled",
			text: "x",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model \"nomic-embed-text\" not found, try pulling it first"}`))
			},
		},
		{
			name: "no rows",
			text: "x",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(embedResponse{})
			},
		},
		{
			name: "bad json",
			text: "x",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("{"))
			},
		},
		{
			name: "empty text",
			text: "   ",
			handler: func(_ http.ResponseWriter, _ *http.Request) {
				t.Error("no request expected for empty text")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newServer(t, tt.handler)
			_, err := s.Embed(context.Background(), tt.text)
			assert.ErrorIs(t, err, domain.ErrEmbedding)
		})
	}
}

func TestEmbedBatch(t *testing.T) {
	s := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		var resp embedResponse
		for _, in := range req.Input {
			v := float64(len(in))
			resp.Embeddings = append(resp.Embeddings, []float64{v, v, v})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	got, err := s.EmbedBatch(context.Background(), []string{"a", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1, 1}, {3, 3, 3}}, got)

	got, err = s.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPing(t *testing.T) {
	ok := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, ok.Ping(context.Background()))

	down := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	assert.ErrorIs(t, down.Ping(context.Background()), domain.ErrEmbeddingUnavailable)
}
