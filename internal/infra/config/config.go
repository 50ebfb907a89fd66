package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http" envPrefix:"HTTP_"`
	Summary    SummaryConfig    `yaml:"summary" envPrefix:"SUMMARY_"`
	Extraction ExtractionConfig `yaml:"extraction" envPrefix:"EXTRACTION_"`
	Progress   ProgressConfig   `yaml:"progress" envPrefix:"PROGRESS_"`
	Settings   SettingsConfig   `yaml:"settings" envPrefix:"SETTINGS_"`
}

// HTTPConfig controls server level behavior. A zero WriteTimeout keeps long-lived event
// streams open.
type HTTPConfig struct {
	Address        string          `yaml:"address" env:"ADDRESS"`
	ReadTimeout    time.Duration   `yaml:"readTimeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	AllowedOrigins []string        `yaml:"allowedOrigins" env:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rateLimit" envPrefix:"RATE_LIMIT_"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" env:"ENABLED"`
	RequestsPerMinute int  `yaml:"requestsPerMinute" env:"RPM"`
	Burst             int  `yaml:"burst" env:"BURST"`
}

// SummaryConfig describes the remote summarization service and the payload sent to it.
type SummaryConfig struct {
	MaxPayloadBytes int           `yaml:"maxPayloadBytes" env:"MAX_PAYLOAD_BYTES"`
	DefaultLength   string        `yaml:"defaultLength" env:"DEFAULT_LENGTH"`
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	Path            string        `yaml:"path" env:"PATH"`
	RequestTimeout  time.Duration `yaml:"requestTimeout" env:"REQUEST_TIMEOUT"`
}

// ExtractionConfig controls how page text is obtained.
type ExtractionConfig struct {
	AgentTimeout time.Duration `yaml:"agentTimeout" env:"AGENT_TIMEOUT"`
	FallbackMode string        `yaml:"fallbackMode" env:"FALLBACK_MODE"`
	FetchTimeout time.Duration `yaml:"fetchTimeout" env:"FETCH_TIMEOUT"`
}

// ProgressConfig controls progress event delivery.
type ProgressConfig struct {
	SubscriberBuffer int          `yaml:"subscriberBuffer" env:"SUBSCRIBER_BUFFER"`
	Valkey           ValkeyConfig `yaml:"valkey" envPrefix:"VALKEY_"`
	Channel          string       `yaml:"channel" env:"CHANNEL"`
}

// SettingsConfig controls where user preferences are persisted.
type SettingsConfig struct {
	Valkey ValkeyConfig `yaml:"valkey" envPrefix:"VALKEY_"`
	Prefix string       `yaml:"prefix" env:"PREFIX"`
}

// ValkeyConfig contains connection information for a Valkey-compatible server.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Addr    string `yaml:"addr" env:"ADDR"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(defaultConfigPath); err == nil {
		if err := hydrateFromFile(cfg, defaultConfigPath); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:     ":8080",
			ReadTimeout: 5 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		Summary: SummaryConfig{
			MaxPayloadBytes: 500_000,
			DefaultLength:   "auto",
			Host:            "127.0.0.1",
			Port:            7864,
			Path:            "/summarize_stream_status",
		},
		Extraction: ExtractionConfig{
			AgentTimeout: 2 * time.Second,
			FallbackMode: "text",
			FetchTimeout: 10 * time.Second,
		},
		Progress: ProgressConfig{
			SubscriberBuffer: 256,
			Channel:          "summarizer:progress",
		},
		Settings: SettingsConfig{
			Prefix: "summarizer",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.ReadTimeout < 0 || c.HTTP.WriteTimeout < 0 {
		return errors.New("http timeouts cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.Summary.MaxPayloadBytes <= 0 {
		return errors.New("summary.maxPayloadBytes must be positive")
	}
	if strings.TrimSpace(c.Summary.DefaultLength) == "" {
		return errors.New("summary.defaultLength cannot be empty")
	}
	if c.Summary.Port <= 0 || c.Summary.Port > 65535 {
		return errors.New("summary.port must be between 1 and 65535")
	}
	if !strings.HasPrefix(c.Summary.Path, "/") {
		return errors.New("summary.path must start with /")
	}
	if c.Summary.RequestTimeout < 0 {
		return errors.New("summary.requestTimeout cannot be negative")
	}
	if c.Extraction.AgentTimeout <= 0 {
		return errors.New("extraction.agentTimeout must be positive")
	}
	switch c.Extraction.FallbackMode {
	case "text", "readability":
	default:
		return fmt.Errorf("extraction.fallbackMode must be text or readability, got %q", c.Extraction.FallbackMode)
	}
	if c.Extraction.FetchTimeout <= 0 {
		return errors.New("extraction.fetchTimeout must be positive")
	}
	if c.Progress.SubscriberBuffer <= 0 {
		return errors.New("progress.subscriberBuffer must be positive")
	}
	if c.Progress.Valkey.Enabled && strings.TrimSpace(c.Progress.Valkey.Addr) == "" {
		return errors.New("progress.valkey.addr cannot be empty when the relay is enabled")
	}
	if c.Settings.Valkey.Enabled && strings.TrimSpace(c.Settings.Valkey.Addr) == "" {
		return errors.New("settings.valkey.addr cannot be empty when the valkey store is enabled")
	}
	return nil
}
