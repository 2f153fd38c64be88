package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"hermes/pkg/errors"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Postgres      PostgresConfig
	Ollama        OllamaConfig
	OpenAI        OpenAIConfig
	Embeddings    EmbeddingsConfig
	Agents        AgentsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"hermes"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Version  string `envconfig:"APP_VERSION" default:"dev"`
}

type ServerConfig struct {
	Port int `envconfig:"HTTP_PORT" default:"8080"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"hermes"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"hermes"`
	Database string `envconfig:"POSTGRES_DB" default:"hermes"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// OllamaConfig points at a local Ollama server used for both chat and embeddings
type OllamaConfig struct {
	BaseURL   string        `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	Timeout   time.Duration `envconfig:"OLLAMA_TIMEOUT" default:"120s"`
	KeepAlive string        `envconfig:"OLLAMA_KEEP_ALIVE" default:"30m"`
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"OPENAI_API_KEY"`
	Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
}

type EmbeddingsConfig struct {
	Provider string `envconfig:"EMBEDDINGS_PROVIDER" default:"ollama"`
	Model    string `envconfig:"EMBEDDINGS_MODEL" default:"nomic-embed-text"`
	// Dimensions must match the vector column in the records table
	Dimensions int `envconfig:"EMBEDDINGS_DIMENSIONS" default:"768"`
}

// AgentsConfig drives the specialist and marketer agents.
// Model names follow Ollama conventions by default; any model the configured
// chat provider can serve is valid.
type AgentsConfig struct {
	ChatProvider      string  `envconfig:"CHAT_PROVIDER" default:"ollama"`
	SentimentModel    string  `envconfig:"SENTIMENT_MODEL" default:"gemma2:9b"`
	PurchaseModel     string  `envconfig:"PURCHASE_MODEL" default:"mistral:7b"`
	CampaignModel     string  `envconfig:"CAMPAIGN_MODEL" default:"llama3.1:8b"`
	MarketerModel     string  `envconfig:"MARKETER_MODEL" default:"llama3.1:8b"`
	TopK              int     `envconfig:"AGENT_TOP_K" default:"4"`
	EvidenceCharLimit int     `envconfig:"AGENT_EVIDENCE_CHAR_LIMIT" default:"1000"`
	Temperature       float64 `envconfig:"AGENT_TEMPERATURE" default:"0.2"`
	MaxTokens         int     `envconfig:"AGENT_MAX_TOKENS" default:"400"`
	RequestsPerMinute int     `envconfig:"AGENT_REQUESTS_PER_MINUTE" default:"120"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables.
// It first tries to load a .env file (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
