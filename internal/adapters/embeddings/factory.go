package embeddings

import (
	"hermes/internal/adapters/config"
	"hermes/pkg/errors"
)

// NewProvider creates the embedding provider named by the config
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Embeddings.Provider {
	case "ollama", "":
		return NewOllamaProvider(
			cfg.Ollama.BaseURL,
			cfg.Embeddings.Model,
			cfg.Embeddings.Dimensions,
			cfg.Ollama.Timeout,
		), nil

	case "openai":
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.Embeddings.Model, cfg.OpenAI.Timeout)

	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"unsupported embedding provider: %s", cfg.Embeddings.Provider)
	}
}
