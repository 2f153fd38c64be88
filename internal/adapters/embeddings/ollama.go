package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"hermes/pkg/errors"
	"hermes/pkg/logger"
)

// OllamaProvider generates embeddings with a local Ollama server via /api/embed
type OllamaProvider struct {
	baseURL    string
	model      string
	dimensions int
	timeout    time.Duration
	client     *http.Client
	log        *logger.Logger
}

// NewOllamaProvider creates an embedding provider backed by local Ollama
func NewOllamaProvider(baseURL, model string, dimensions int, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if dimensions == 0 {
		dimensions = 768 // nomic-embed-text
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &OllamaProvider{
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		timeout:    timeout,
		client:     &http.Client{Timeout: timeout},
		log:        logger.Get().With("component", "ollama_embeddings", "model", model),
	}
}

// GenerateEmbedding creates a vector embedding for the given text
func (p *OllamaProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "text cannot be empty")
	}

	embs, err := p.GenerateBatchEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embs[0], nil
}

// GenerateBatchEmbeddings creates embeddings for multiple texts in one API call
func (p *OllamaProvider) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "texts cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := json.Marshal(ollamaEmbedRequest{
		Model: p.model,
		Input: texts,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal embed request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModelUnavailable, "ollama embed at %s: %v", p.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read embed response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrExternal, "ollama embed API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var embedResp ollamaEmbedResponse
	if err := json.Unmarshal(respBody, &embedResp); err != nil {
		return nil, errors.Wrap(err, "unmarshal embed response")
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, errors.Wrapf(errors.ErrExternal,
			"expected %d embeddings, got %d", len(texts), len(embedResp.Embeddings))
	}

	p.log.Debugw("Generated batch embeddings",
		"batch_size", len(texts),
		"embedding_dims", len(embedResp.Embeddings[0]))

	return embedResp.Embeddings, nil
}

// Dimensions returns the dimensionality of embeddings
func (p *OllamaProvider) Dimensions() int {
	return p.dimensions
}

// Name returns the model name
func (p *OllamaProvider) Name() string {
	return p.model
}

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}
