package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/pkg/errors"
)

func TestOllamaGenerateBatchEmbeddings(t *testing.T) {
	var captured ollamaEmbedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Model: captured.Model,
			Embeddings: [][]float32{
				{0.1, 0.2},
				{0.3, 0.4},
			},
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "nomic-embed-text", 2, 0)

	embs, err := provider.GenerateBatchEmbeddings(context.Background(), []string{"one", "two"})
	require.NoError(t, err)

	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, embs)
	assert.Equal(t, "nomic-embed-text", captured.Model)
	assert.Equal(t, []string{"one", "two"}, captured.Input)
}

func TestOllamaGenerateEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float32{{0.5, 0.6}},
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "", 0, 0)

	emb, err := provider.GenerateEmbedding(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.6}, emb)
}

func TestOllamaEmbedValidation(t *testing.T) {
	provider := NewOllamaProvider("http://localhost:1", "", 0, 0)

	_, err := provider.GenerateEmbedding(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = provider.GenerateBatchEmbeddings(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestOllamaEmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float32{{0.1}},
		})
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "", 0, 0)

	_, err := provider.GenerateBatchEmbeddings(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrExternal))
}

func TestOllamaEmbedServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	provider := NewOllamaProvider(server.URL, "", 0, 0)

	_, err := provider.GenerateBatchEmbeddings(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
}

func TestOllamaDefaults(t *testing.T) {
	provider := NewOllamaProvider("", "", 0, 0)

	assert.Equal(t, "nomic-embed-text", provider.Name())
	assert.Equal(t, 768, provider.Dimensions())
}
