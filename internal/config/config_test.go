package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/dost-companion/internal/config"
)

// cleanEnv blanks every variable Load reads so the host environment
// cannot leak into a test. Viper treats empty variables as unset.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "GROQ_API_KEY",
		"OPENROUTER_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(k, "")
	}
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "DOST_") {
			t.Setenv(k, "")
		}
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.ModeLocal, cfg.Mode)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.StorageMemory, cfg.StorageBackend)
	assert.Equal(t, "gemini", cfg.AI.Primary)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 2000, cfg.MaxMessageLength)
}

func TestLoad_EnvOverrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DOST_PORT", "9090")
	t.Setenv("DOST_STORAGE_BACKEND", "REDIS")
	t.Setenv("DOST_AI_PRIMARY", "Groq")
	t.Setenv("DOST_AI_TIMEOUT", "5s")
	t.Setenv("DOST_HISTORY_LIMIT", "4")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.StorageRedis, cfg.StorageBackend)
	assert.Equal(t, "groq", cfg.AI.Primary)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 4, cfg.HistoryLimit)
}

func TestLoad_VendorKeys(t *testing.T) {
	cleanEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-vendor")
	t.Setenv("GROQ_API_KEY", "gsk-vendor")
	t.Setenv("DOST_AI_GROQ_API_KEY", "gsk-dost")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-vendor", cfg.AI.OpenAI.APIKey)
	assert.Equal(t, "gsk-dost", cfg.AI.Groq.APIKey)
	assert.Empty(t, cfg.AI.Anthropic.APIKey)
	assert.Empty(t, cfg.AI.Gemini.APIKey)
}

func TestLoad_IgnoresHostKeys(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-host")
	t.Setenv("DOST_AI_PRIMARY", "anthropic")
	cleanEnv(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Empty(t, cfg.AI.Anthropic.APIKey)
	assert.Equal(t, "gemini", cfg.AI.Primary)
}

func TestLoad_ConfigFile(t *testing.T) {
	cleanEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	body := "port: \"7000\"\nai:\n  primary: anthropic\n  persona: Be brief.\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "anthropic", cfg.AI.Primary)
	assert.Equal(t, "Be brief.", cfg.AI.Persona)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	cleanEnv(t)

	_, err := config.Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoad_FirestoreNeedsProject(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DOST_STORAGE_BACKEND", "firestore")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoad_UnknownBackend(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DOST_STORAGE_BACKEND", "sqlite")

	_, err := config.Load("")
	assert.Error(t, err)
}
