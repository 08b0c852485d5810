package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider variant names. Selected by configuration, never by code edits.
const (
	ProviderHostedAPI       = "hosted-api"
	ProviderLocalModel      = "local-model"
	ProviderAlternateVendor = "alternate-vendor"
)

// Config holds application configuration
type Config struct {
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Storage struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Bucket  string `yaml:"bucket"`
	} `yaml:"storage"`
	Provider struct {
		Variant        string `yaml:"variant"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		OpenAI         struct {
			APIKey             string `yaml:"api_key"`
			EmbeddingModel     string `yaml:"embedding_model"`
			EmbeddingDimension int    `yaml:"embedding_dimension"`
			ChatModel          string `yaml:"chat_model"`
		} `yaml:"openai"`
		Ollama struct {
			BaseURL            string `yaml:"base_url"`
			EmbeddingModel     string `yaml:"embedding_model"`
			EmbeddingDimension int    `yaml:"embedding_dimension"`
			ChatModel          string `yaml:"chat_model"`
		} `yaml:"ollama"`
		Gemini struct {
			APIKey             string `yaml:"api_key"`
			EmbeddingModel     string `yaml:"embedding_model"`
			EmbeddingDimension int    `yaml:"embedding_dimension"`
			ChatModel          string `yaml:"chat_model"`
		} `yaml:"gemini"`
	} `yaml:"provider"`
	Store struct {
		Backend string `yaml:"backend"` // "postgres" or "memory"
	} `yaml:"store"`
	Chunking struct {
		MaxChars     int `yaml:"max_chars"`
		OverlapChars int `yaml:"overlap_chars"`
	} `yaml:"chunking"`
	Retrieval struct {
		TopK int `yaml:"top_k"`
	} `yaml:"retrieval"`
	Ingest struct {
		Workers                int `yaml:"workers"`
		QueueSize              int `yaml:"queue_size"`
		DownloadTimeoutSeconds int `yaml:"download_timeout_seconds"`
	} `yaml:"ingest"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // "json" or "console"
	} `yaml:"logging"`
}

// Load loads configuration from the given file (or the default location when
// path is empty), applying environment variable overrides on top. A missing
// config file is not an error; a missing .env file is not an error either.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".tutor", "config.yaml")
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()

	return cfg, nil
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}

	cfg.Database.DSN = "postgres://postgres@localhost/tutor?sslmode=disable"
	cfg.Provider.Variant = ProviderHostedAPI
	cfg.Provider.TimeoutSeconds = 60
	cfg.Provider.OpenAI.EmbeddingModel = "text-embedding-3-small"
	cfg.Provider.OpenAI.EmbeddingDimension = 1536
	cfg.Provider.OpenAI.ChatModel = "gpt-4o-mini"
	cfg.Provider.Ollama.BaseURL = "http://localhost:11434"
	cfg.Provider.Ollama.EmbeddingModel = "nomic-embed-text"
	cfg.Provider.Ollama.EmbeddingDimension = 768
	cfg.Provider.Ollama.ChatModel = "llama3.1"
	cfg.Provider.Gemini.EmbeddingModel = "text-embedding-004"
	cfg.Provider.Gemini.EmbeddingDimension = 768
	cfg.Provider.Gemini.ChatModel = "gemini-2.5-flash"
	cfg.Store.Backend = "postgres"
	cfg.Chunking.MaxChars = 1200
	cfg.Chunking.OverlapChars = 100
	cfg.Retrieval.TopK = 10
	cfg.Ingest.Workers = 4
	cfg.Ingest.QueueSize = 64
	cfg.Ingest.DownloadTimeoutSeconds = 20
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}

// applyEnv overrides config fields from environment variables.
func (c *Config) applyEnv() {
	setString(&c.Database.DSN, "DATABASE_URL")
	setString(&c.Storage.BaseURL, "SUPABASE_URL")
	setString(&c.Storage.APIKey, "SUPABASE_KEY")
	setString(&c.Storage.Bucket, "SUPABASE_BUCKET")
	setString(&c.Provider.Variant, "TUTOR_PROVIDER")
	setString(&c.Provider.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.Provider.OpenAI.EmbeddingModel, "OPENAI_EMBEDDING_MODEL")
	setInt(&c.Provider.OpenAI.EmbeddingDimension, "OPENAI_EMBEDDING_DIMENSION")
	setString(&c.Provider.OpenAI.ChatModel, "OPENAI_CHAT_MODEL")
	setString(&c.Provider.Ollama.BaseURL, "OLLAMA_BASE_URL")
	setString(&c.Provider.Gemini.APIKey, "GOOGLE_API_KEY")
	setString(&c.Store.Backend, "TUTOR_STORE")
	setString(&c.Logging.Level, "TUTOR_LOG_LEVEL")
	setString(&c.Logging.Format, "TUTOR_LOG_FORMAT")
}

// Validate checks that the selected provider variant has credentials.
// Missing credentials must fail loudly at startup, not degrade answers later.
func (c *Config) Validate() error {
	switch c.Provider.Variant {
	case ProviderHostedAPI:
		if c.Provider.OpenAI.APIKey == "" {
			return fmt.Errorf("provider variant %q selected but OPENAI_API_KEY is not set", c.Provider.Variant)
		}
	case ProviderLocalModel:
		if c.Provider.Ollama.BaseURL == "" {
			return fmt.Errorf("provider variant %q selected but ollama base_url is empty", c.Provider.Variant)
		}
	case ProviderAlternateVendor:
		if c.Provider.Gemini.APIKey == "" {
			return fmt.Errorf("provider variant %q selected but GOOGLE_API_KEY is not set", c.Provider.Variant)
		}
	default:
		return fmt.Errorf("unknown provider variant: %q", c.Provider.Variant)
	}

	switch c.Store.Backend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}

	if c.Chunking.MaxChars <= 0 {
		return fmt.Errorf("chunking max_chars must be positive, got %d", c.Chunking.MaxChars)
	}
	if c.Chunking.OverlapChars < 0 || c.Chunking.OverlapChars >= c.Chunking.MaxChars {
		return fmt.Errorf("chunking overlap_chars must be in [0, max_chars), got %d", c.Chunking.OverlapChars)
	}

	return nil
}

// Save saves configuration to file
func (c *Config) Save() error {
	configDir := filepath.Join(os.Getenv("HOME"), ".tutor")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
