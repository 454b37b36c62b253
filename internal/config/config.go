// Package config loads runtime settings from DOST_* environment variables
// and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

const (
	StorageMemory    = "memory"
	StorageRedis     = "redis"
	StorageFirestore = "firestore"
)

type Config struct {
	Mode Mode   `mapstructure:"mode"`
	Port string `mapstructure:"port"`

	GCPProjectID string `mapstructure:"gcp_project"`
	GCPLocation  string `mapstructure:"gcp_location"`

	StorageBackend string        `mapstructure:"storage_backend"` // memory, redis or firestore
	RedisURL       string        `mapstructure:"redis_url"`
	RedisTTL       time.Duration `mapstructure:"redis_ttl"`

	AI AIConfig `mapstructure:"ai"`

	HistoryLimit     int    `mapstructure:"history_limit"`
	MaxMessageLength int    `mapstructure:"max_message_length"`
	LogLevel         string `mapstructure:"log_level"`
}

type AIConfig struct {
	Primary   string        `mapstructure:"primary"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Persona   string        `mapstructure:"persona"`
	UseMock   bool          `mapstructure:"use_mock"`
	UseVertex bool          `mapstructure:"use_vertex"`

	Gemini     ProviderConfig `mapstructure:"gemini"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	Groq       ProviderConfig `mapstructure:"groq"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// vendorKeys are the conventional variable names each vendor documents.
var vendorKeys = map[string]string{
	"ai.gemini.api_key":     "GEMINI_API_KEY",
	"ai.openai.api_key":     "OPENAI_API_KEY",
	"ai.groq.api_key":       "GROQ_API_KEY",
	"ai.openrouter.api_key": "OPENROUTER_API_KEY",
	"ai.anthropic.api_key":  "ANTHROPIC_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeLocal))
	v.SetDefault("port", "8080")
	v.SetDefault("gcp_project", "")
	v.SetDefault("gcp_location", "us-central1")
	v.SetDefault("storage_backend", StorageMemory)
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("redis_ttl", 30*24*time.Hour)
	v.SetDefault("history_limit", 10)
	v.SetDefault("max_message_length", 2000)
	v.SetDefault("log_level", "info")

	v.SetDefault("ai.primary", "gemini")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.persona", "")
	v.SetDefault("ai.use_mock", false)
	v.SetDefault("ai.use_vertex", false)
	for _, p := range []string{"gemini", "openai", "groq", "openrouter", "anthropic"} {
		v.SetDefault("ai."+p+".api_key", "")
		v.SetDefault("ai."+p+".model", "")
		v.SetDefault("ai."+p+".base_url", "")
	}
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash-lite")
}

// Load reads all settings and builds the config. configFile may be empty,
// in which case ./dost.yaml is used when present.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DOST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range vendorKeys {
		// DOST_* wins over the vendor name
		if err := v.BindEnv(key, "DOST_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	if err := v.BindEnv("port", "DOST_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("binding port: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("dost")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Mode != ModeGCP {
		cfg.Mode = ModeLocal
	}
	cfg.StorageBackend = strings.ToLower(cfg.StorageBackend)
	cfg.AI.Primary = strings.ToLower(cfg.AI.Primary)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory, StorageRedis:
	case StorageFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("DOST_GCP_PROJECT is required for the firestore storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return fmt.Errorf("DOST_GCP_PROJECT must be set in gcp mode")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history limit must be positive, got %d", c.HistoryLimit)
	}
	if c.MaxMessageLength <= 0 {
		return fmt.Errorf("max message length must be positive, got %d", c.MaxMessageLength)
	}
	return nil
}
