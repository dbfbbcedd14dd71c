package config

// ProxyConfig holds the quote-proxy server configuration.
type ProxyConfig struct {
	// http server configs
	Port int    `toml:"port"`
	Host string `toml:"host"`

	// CORS configs
	AllowedOrigins []string `toml:"allowed_origins"`

	// rate limiting configs
	RatePerMinute         int `toml:"rate_per_minute"`
	MaxConcurrentRequests int `toml:"max_concurrent_requests"`

	// Prometheus metrics endpoint toggle
	EnableMetrics bool `toml:"enable_metrics"`

	// Aggregator upstream configs
	AggregatorURL         string `toml:"aggregator_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}
