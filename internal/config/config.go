// Package config resolves TalentScout settings from defaults, the JSON config
// file and TALENTSCOUT_* environment variables, in that order.
package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Ollama    OllamaConfig
	OpenAI    OpenAIConfig
	Screening ScreeningConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string
}

// EngineConfig selects the text-generation backend. Timeout bounds every
// model call; on expiry the templated fallback is used.
type EngineConfig struct {
	Backend string
	Timeout time.Duration
}

type OllamaConfig struct {
	BaseURL   string
	ChatModel string
}

type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type ScreeningConfig struct {
	// PolicyFile is an optional YAML file overriding validation rules and
	// conversation thresholds.
	PolicyFile string
}

type LogConfig struct {
	Level string
}

// Backend names accepted in engine.backend.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendNone   = "none"
)

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8501,
		},
		Engine: EngineConfig{
			Backend: BackendOllama,
			Timeout: 30 * time.Second,
		},
		Ollama: OllamaConfig{
			BaseURL:   "http://localhost:11434",
			ChatModel: "llama2",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/talentscout/config.json and applies TALENTSCOUT_*
// environment overrides. Secrets (API token, OpenAI key) come from the
// environment only.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Engine.Timeout <= 0 {
		return fmt.Errorf("engine.timeout must be positive, got %s", c.Engine.Timeout)
	}
	switch c.Engine.Backend {
	case BackendOllama, BackendNone:
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("missing required config: OpenAI API key. Set it via environment variable TALENTSCOUT_OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("engine.backend must be one of %s, %s, %s; got %q",
			BackendOllama, BackendOpenAI, BackendNone, c.Engine.Backend)
	}
	return nil
}

// ChatModel returns the model name of the selected backend, or "" when
// the screening runs on templates alone.
func (c Config) ChatModel() string {
	switch c.Engine.Backend {
	case BackendOllama:
		return c.Ollama.ChatModel
	case BackendOpenAI:
		return c.OpenAI.Model
	}
	return ""
}
