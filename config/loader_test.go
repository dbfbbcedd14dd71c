package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cetusprotocol/aggregator-go/config"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadProxyConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadProxyConfig("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", cfg.Host)
	}
	if cfg.AggregatorURL != "" {
		t.Errorf("AggregatorURL = %q, want empty (client default)", cfg.AggregatorURL)
	}
}

func TestLoadProxyConfig_FromFile(t *testing.T) {
	path := writeConfigFile(t, "proxy.toml", `
port = 9090
host = "0.0.0.0"
allowed_origins = ["https://app.example.com"]
rate_per_minute = 120
max_concurrent_requests = 50
enable_metrics = false
aggregator_url = "https://api-sui.cetus.zone/router_v2"
request_timeout_seconds = 10
`)

	cfg, err := config.LoadProxyConfig(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Host)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.RatePerMinute != 120 {
		t.Errorf("RatePerMinute = %d, want 120", cfg.RatePerMinute)
	}
	if cfg.EnableMetrics {
		t.Error("EnableMetrics = true, want false")
	}
	if cfg.AggregatorURL != "https://api-sui.cetus.zone/router_v2" {
		t.Errorf("AggregatorURL = %q", cfg.AggregatorURL)
	}
	if cfg.RequestTimeoutSeconds != 10 {
		t.Errorf("RequestTimeoutSeconds = %d, want 10", cfg.RequestTimeoutSeconds)
	}
}

func TestLoadProxyConfig_EnvOverride(t *testing.T) {
	t.Setenv("QUOTE_PROXY_AGGREGATOR_URL", "https://api-staging.cetus.zone/router_v2")

	cfg, err := config.LoadProxyConfig("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AggregatorURL != "https://api-staging.cetus.zone/router_v2" {
		t.Errorf("AggregatorURL = %q, want env override", cfg.AggregatorURL)
	}
}

func TestLoadProxyConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "wrong extension",
			file:    "proxy.yaml",
			content: "port: 8080",
		},
		{
			name:    "bad toml",
			file:    "proxy.toml",
			content: `port = [not toml`,
		},
		{
			name:    "port out of range",
			file:    "proxy.toml",
			content: "port = 70000\nhost = \"localhost\"\n",
		},
		{
			name:    "zero timeout",
			file:    "proxy.toml",
			content: "request_timeout_seconds = -1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.file, tt.content)
			if _, err := config.LoadProxyConfig(path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadProxyConfig_MissingFile(t *testing.T) {
	if _, err := config.LoadProxyConfig("/nonexistent/proxy.toml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
