package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultProxyConfig returns a configuration suitable for local development.
// The aggregator URL is left empty so the client falls back to its built-in
// default endpoint.
func DefaultProxyConfig() *ProxyConfig {
	return &ProxyConfig{
		Port:                  8080,
		Host:                  "localhost",
		AllowedOrigins:        []string{"*"},
		RatePerMinute:         0,
		MaxConcurrentRequests: 200,
		EnableMetrics:         true,
		RequestTimeoutSeconds: 30,
	}
}

// LoadProxyConfig loads the quote-proxy config from a TOML file and applies
// environment overrides. An empty path yields the defaults (still subject to
// env overrides), so the proxy can run with no config file at all.
func LoadProxyConfig(configPath string) (*ProxyConfig, error) {
	config := DefaultProxyConfig()

	if configPath != "" {
		if !strings.HasSuffix(configPath, ".toml") {
			return nil, fmt.Errorf("config file must be a toml file")
		}

		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	}

	applyEnvOverrides(config)

	if err := verifyConfig(config); err != nil {
		return nil, fmt.Errorf("failed to verify config: %w", err)
	}

	return config, nil
}

// applyEnvOverrides lets deployments point at a different aggregator
// environment without editing the config file.
func applyEnvOverrides(config *ProxyConfig) {
	if v := os.Getenv("QUOTE_PROXY_AGGREGATOR_URL"); v != "" {
		config.AggregatorURL = v
	}
	if v := os.Getenv("QUOTE_PROXY_HOST"); v != "" {
		config.Host = v
	}
}

func verifyConfig(config *ProxyConfig) error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if config.Host == "" {
		return fmt.Errorf("host is required")
	}

	if len(config.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins is required")
	}

	if config.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}

	return nil
}
