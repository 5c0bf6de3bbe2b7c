// Package config loads ragchat configuration from an optional TOML file, a
// .env file and the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/papercomputeco/ragchat/pkg/docs"
)

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Model       ModelConfig       `toml:"model"`
	Retry       RetryConfig       `toml:"retry"`
	Documents   DocumentsConfig   `toml:"documents"`
	Transcripts TranscriptsConfig `toml:"transcripts"`
}

type ServerConfig struct {
	Listen      string `toml:"listen" validate:"required"`
	CORSOrigins string `toml:"cors_origins"`
	Debug       bool   `toml:"debug"`
	LogFormat   string `toml:"log_format" validate:"omitempty,oneof=console json"`
}

type ModelConfig struct {
	Provider  string        `toml:"provider" validate:"required,oneof=groq openai gemini ollama"`
	Model     string        `toml:"model" validate:"required"`
	BaseURL   string        `toml:"base_url" validate:"omitempty,url"`
	APIKeyEnv string        `toml:"api_key_env"`
	Timeout   time.Duration `toml:"timeout" validate:"gte=0"`

	// APIKey is resolved from the APIKeyEnv variable and never read from the file.
	APIKey string `toml:"-"`
}

type RetryConfig struct {
	MaxTries        uint          `toml:"max_tries" validate:"gte=1,lte=10"`
	InitialInterval time.Duration `toml:"initial_interval" validate:"gte=0"`
	MaxInterval     time.Duration `toml:"max_interval" validate:"gte=0"`
}

type DocumentsConfig struct {
	Path   string   `toml:"path" validate:"required"`
	Fields []string `toml:"fields" validate:"dive,startswith=/"`

	// Cache loads the collection once and reloads it when the file changes.
	// When false the file is read on every RAG request.
	Cache bool `toml:"cache"`
}

type TranscriptsConfig struct {
	Enabled bool   `toml:"enabled"`
	Backend string `toml:"backend" validate:"oneof=memory sqlite"`
	Path    string `toml:"path" validate:"required_if=Backend sqlite"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:    ":8080",
			LogFormat: "console",
		},
		Model: ModelConfig{
			Provider:  "groq",
			Model:     "llama-3.1-8b-instant",
			APIKeyEnv: "GROQ_API_KEY",
			Timeout:   5 * time.Minute,
		},
		Retry: RetryConfig{
			MaxTries:        3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		Documents: DocumentsConfig{
			Path:   "data/data.json",
			Fields: append([]string(nil), docs.DefaultFields...),
		},
		Transcripts: TranscriptsConfig{
			Backend: "memory",
			Path:    "ragchat.db",
		},
	}
}

// EnvConfigPath names the variable holding the config file path used when no
// path is passed to Load.
const EnvConfigPath = "RAGCHAT_CONFIG"

// Load builds the configuration. An empty path falls back to RAGCHAT_CONFIG,
// which may also come from the .env file; dotenv names a .env file whose
// absence is not an error.
func Load(path, dotenv string) (Config, error) {
	cfg := Default()

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&cfg.Server.Listen, "RAGCHAT_LISTEN")
	override(&cfg.Model.Provider, "RAGCHAT_PROVIDER")
	override(&cfg.Model.Model, "RAGCHAT_MODEL")
	override(&cfg.Model.BaseURL, "RAGCHAT_BASE_URL")
	override(&cfg.Documents.Path, "RAGCHAT_DOCUMENTS")

	if cfg.Model.APIKeyEnv != "" {
		cfg.Model.APIKey = os.Getenv(cfg.Model.APIKeyEnv)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every section.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
