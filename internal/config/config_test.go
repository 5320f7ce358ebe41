package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every TALENTSCOUT_* override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
}

func writeTempConfig(t *testing.T, content string) *fileBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return newFileBackend(path)
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := loadWith(writeTempConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Empty(t, cfg.Server.APIToken)
	assert.Equal(t, BackendOllama, cfg.Engine.Backend)
	assert.Equal(t, 30*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llama2", cfg.Ollama.ChatModel)
	assert.Equal(t, "llama2", cfg.ChatModel())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Screening.PolicyFile)
}

func TestFileValues(t *testing.T) {
	clearEnv(t)
	b := writeTempConfig(t, `{
  "server.port": 9000,
  "engine.backend": "none",
  "engine.timeout": "5s",
  "ollama.chat_model": "mistral",
  "screening.policy_file": "/etc/talentscout/policy.yaml",
  "log.level": "debug"
}`)
	cfg, err := loadWith(b)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, BackendNone, cfg.Engine.Backend)
	assert.Equal(t, 5*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, "mistral", cfg.Ollama.ChatModel)
	assert.Empty(t, cfg.ChatModel())
	assert.Equal(t, "/etc/talentscout/policy.yaml", cfg.Screening.PolicyFile)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestFileIgnoresSecrets(t *testing.T) {
	clearEnv(t)
	b := writeTempConfig(t, `{"server.api_token": "from-file"}`)
	cfg, err := loadWith(b)
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.APIToken)
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("TALENTSCOUT_SERVER_PORT", "7000")
	t.Setenv("TALENTSCOUT_ENGINE_TIMEOUT", "2s")
	t.Setenv("TALENTSCOUT_API_TOKEN", "tok")
	t.Setenv("TALENTSCOUT_ENGINE_BACKEND", "openai")
	t.Setenv("TALENTSCOUT_OPENAI_API_KEY", "sk-env")

	cfg, err := loadWith(writeTempConfig(t, `{"server.port": 9000}`))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Engine.Timeout)
	assert.Equal(t, "tok", cfg.Server.APIToken)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel())
}

func TestEnvOverride_BadValueKeepsDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("TALENTSCOUT_SERVER_PORT", "eighty")
	cfg, err := loadWith(writeTempConfig(t, `{}`))
	require.NoError(t, err)
	assert.Equal(t, 8501, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"timeout", func(c *Config) { c.Engine.Timeout = 0 }, "engine.timeout"},
		{"backend", func(c *Config) { c.Engine.Backend = "mlx" }, "engine.backend"},
		{"openai key", func(c *Config) { c.Engine.Backend = BackendOpenAI }, "TALENTSCOUT_OPENAI_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
	assert.NoError(t, defaults().Validate())
}

func TestBadDurationInFile(t *testing.T) {
	clearEnv(t)
	_, err := loadWith(writeTempConfig(t, `{"engine.timeout": "soon"}`))
	assert.ErrorContains(t, err, "engine.timeout")
}

func TestSetKey(t *testing.T) {
	b := writeTempConfig(t, `{}`)

	require.NoError(t, setKeyWith(b, "server.port", "9100"))
	require.NoError(t, setKeyWith(b, "engine.timeout", "45s"))
	require.NoError(t, setKeyWith(b, "ollama.chat_model", "llama3"))

	assert.ErrorContains(t, setKeyWith(b, "server.port", "x"), "invalid integer")
	assert.ErrorContains(t, setKeyWith(b, "engine.timeout", "x"), "invalid duration")
	assert.ErrorContains(t, setKeyWith(b, "openai.api_key", "sk"), "TALENTSCOUT_OPENAI_API_KEY")
	assert.ErrorContains(t, setKeyWith(b, "nope", "x"), "unknown config key")

	data, err := os.ReadFile(b.path)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, map[string]any{
		"server.port":       float64(9100),
		"engine.timeout":    "45s",
		"ollama.chat_model": "llama3",
	}, saved)

	clearEnv(t)
	cfg, err := loadWith(newFileBackend(b.path))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Engine.Timeout)
}

func TestSetAndUnsetKey_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "talentscout", "config.json"), FilePath())

	require.NoError(t, SetKey("log.level", "warn"))
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	require.NoError(t, UnsetKey("log.level"))
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestShowAll_MasksSecrets(t *testing.T) {
	cfg := defaults()
	cfg.Server.APIToken = "tok"

	byKey := map[string]KeyInfo{}
	for _, k := range ShowAll(cfg) {
		byKey[k.Key] = k
	}
	assert.Equal(t, "********", byKey["server.api_token"].Value)
	assert.Equal(t, "(not set)", byKey["openai.api_key"].Value)
	assert.Equal(t, "8501", byKey["server.port"].Value)
	assert.Equal(t, "30s", byKey["engine.timeout"].Value)
	assert.Equal(t, "TALENTSCOUT_LOG_LEVEL", byKey["log.level"].EnvVar)

	assert.NotContains(t, ValidKeys(), "server.api_token")
	assert.Contains(t, ValidKeys(), "engine.backend")
}
