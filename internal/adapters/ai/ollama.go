package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"hermes/pkg/errors"
)

// Ensure OllamaProvider implements ChatProvider
var _ ChatProvider = (*OllamaProvider)(nil)

// OllamaProvider talks to a local Ollama server via its /api/chat endpoint.
type OllamaProvider struct {
	baseURL     string
	keepAlive   string
	timeout     time.Duration
	rateLimiter *Limiter
	client      *http.Client
}

// OllamaConfig configures the Ollama chat provider
type OllamaConfig struct {
	BaseURL           string
	KeepAlive         string
	Timeout           time.Duration
	RequestsPerMinute int
}

// NewOllamaProvider creates a chat provider backed by a local Ollama server
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.KeepAlive == "" {
		cfg.KeepAlive = "30m"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &OllamaProvider{
		baseURL:     cfg.BaseURL,
		keepAlive:   cfg.KeepAlive,
		timeout:     cfg.Timeout,
		rateLimiter: NewLimiter("ollama", cfg.RequestsPerMinute),
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Chat sends a chat completion request to the Ollama server.
// A transport-level failure maps to ErrModelUnavailable so callers can
// distinguish "backend down" from "backend answered badly".
func (p *OllamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "model is required")
	}

	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	ollamaReq := ollamaChatRequest{
		Model:     req.Model,
		Stream:    false,
		KeepAlive: p.keepAlive,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}
	if req.JSONMode {
		ollamaReq.Format = "json"
	}
	for _, msg := range req.Messages {
		ollamaReq.Messages = append(ollamaReq.Messages, ollamaMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	body, err := json.Marshal(ollamaReq)
	if err != nil {
		return nil, errors.Wrap(err, "marshal ollama request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create HTTP request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrModelUnavailable, "ollama at %s: %v", p.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read ollama response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, errors.Wrapf(errors.ErrExternal, "ollama API error (%d): %s",
				resp.StatusCode, errResp.Error)
		}
		return nil, errors.Wrapf(errors.ErrExternal, "ollama API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var ollamaResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return nil, errors.Wrap(err, "unmarshal ollama response")
	}

	return &ChatResponse{
		Model:   ollamaResp.Model,
		Content: ollamaResp.Message.Content,
		Usage: Usage{
			PromptTokens:     ollamaResp.PromptEvalCount,
			CompletionTokens: ollamaResp.EvalCount,
			TotalTokens:      ollamaResp.PromptEvalCount + ollamaResp.EvalCount,
		},
	}, nil
}

// Ollama request/response types

type ollamaChatRequest struct {
	Model     string          `json:"model"`
	Messages  []ollamaMessage `json:"messages"`
	Stream    bool            `json:"stream"`
	Format    string          `json:"format,omitempty"`
	KeepAlive string          `json:"keep_alive,omitempty"`
	Options   ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count,omitempty"`
	EvalCount       int           `json:"eval_count,omitempty"`
}
