package ai

import (
	"hermes/internal/adapters/config"
	"hermes/pkg/errors"
)

// NewProvider creates the chat provider named by the agents config
func NewProvider(cfg *config.Config) (ChatProvider, error) {
	switch cfg.Agents.ChatProvider {
	case "ollama", "":
		return NewOllamaProvider(OllamaConfig{
			BaseURL:           cfg.Ollama.BaseURL,
			KeepAlive:         cfg.Ollama.KeepAlive,
			Timeout:           cfg.Ollama.Timeout,
			RequestsPerMinute: cfg.Agents.RequestsPerMinute,
		}), nil

	case "openai":
		return NewOpenAIProvider(OpenAIChatConfig{
			APIKey:            cfg.OpenAI.APIKey,
			Timeout:           cfg.OpenAI.Timeout,
			RequestsPerMinute: cfg.Agents.RequestsPerMinute,
		})

	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput,
			"unsupported chat provider: %s", cfg.Agents.ChatProvider)
	}
}
