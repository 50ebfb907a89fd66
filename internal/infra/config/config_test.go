package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, 500_000, cfg.Summary.MaxPayloadBytes)
	require.Equal(t, "127.0.0.1", cfg.Summary.Host)
	require.Equal(t, 7864, cfg.Summary.Port)
	require.Equal(t, "/summarize_stream_status", cfg.Summary.Path)
	require.Equal(t, 2*time.Second, cfg.Extraction.AgentTimeout)
	require.Equal(t, "text", cfg.Extraction.FallbackMode)
	require.False(t, cfg.Progress.Valkey.Enabled)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
  allowedOrigins: ["https://a.example.com"]
summary:
  host: "example.com:9000"
  defaultLength: short
extraction:
  agentTimeout: 1500ms
  fallbackMode: readability
progress:
  valkey:
    enabled: true
    addr: "localhost:6379"
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("HTTP_ADDRESS", ":7070")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://b.example.com,https://c.example.com")
	t.Setenv("SUMMARY_MAX_PAYLOAD_BYTES", "1000")
	t.Setenv("PROGRESS_CHANNEL", "custom:progress")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTP.Address)
	require.Equal(t, []string{"https://b.example.com", "https://c.example.com"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, "example.com:9000", cfg.Summary.Host)
	require.Equal(t, "short", cfg.Summary.DefaultLength)
	require.Equal(t, 1000, cfg.Summary.MaxPayloadBytes)
	require.Equal(t, 1500*time.Millisecond, cfg.Extraction.AgentTimeout)
	require.Equal(t, "readability", cfg.Extraction.FallbackMode)
	require.True(t, cfg.Progress.Valkey.Enabled)
	require.Equal(t, "localhost:6379", cfg.Progress.Valkey.Addr)
	require.Equal(t, "custom:progress", cfg.Progress.Channel)
	require.Equal(t, 7864, cfg.Summary.Port)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SUMMARY_PORT", "not-a-number")

	_, err := Load()
	require.ErrorContains(t, err, "parse environment")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "empty address", mutate: func(c *Config) { c.HTTP.Address = "" }, wantErr: "http.address"},
		{name: "zero payload", mutate: func(c *Config) { c.Summary.MaxPayloadBytes = 0 }, wantErr: "summary.maxPayloadBytes"},
		{name: "bad port", mutate: func(c *Config) { c.Summary.Port = 70000 }, wantErr: "summary.port"},
		{name: "relative path", mutate: func(c *Config) { c.Summary.Path = "summarize" }, wantErr: "summary.path"},
		{name: "zero agent timeout", mutate: func(c *Config) { c.Extraction.AgentTimeout = 0 }, wantErr: "extraction.agentTimeout"},
		{name: "unknown fallback", mutate: func(c *Config) { c.Extraction.FallbackMode = "ocr" }, wantErr: "extraction.fallbackMode"},
		{name: "relay without addr", mutate: func(c *Config) { c.Progress.Valkey.Enabled = true }, wantErr: "progress.valkey.addr"},
		{name: "store without addr", mutate: func(c *Config) { c.Settings.Valkey.Enabled = true }, wantErr: "settings.valkey.addr"},
		{name: "rate limit burst", mutate: func(c *Config) { c.HTTP.RateLimit.Burst = 0 }, wantErr: "http.rateLimit.burst"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}
