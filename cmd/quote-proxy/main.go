package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cetusprotocol/aggregator-go/aggregator"
	"github.com/cetusprotocol/aggregator-go/config"
	"github.com/cetusprotocol/aggregator-go/proxy"
)

var log zerolog.Logger

func init() {
	// Initialize zerolog with console writer
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()

	// Share the logger with the proxy package
	proxy.SetLogger(log)
}

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "config file for the quote proxy (optional)")
	flag.Parse()

	log.Info().
		Str("config", *configPath).
		Msg("Starting Cetus quote proxy")

	// Load the proxy configuration
	cfg, err := config.LoadProxyConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Build the aggregator client
	clientOpts := []aggregator.Option{
		aggregator.WithTimeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second),
		aggregator.WithLogger(log),
	}
	if cfg.AggregatorURL != "" {
		clientOpts = append(clientOpts, aggregator.WithEndpoint(cfg.AggregatorURL))
	}
	client := aggregator.NewClient(clientOpts...)

	log.Info().Str("endpoint", client.Endpoint()).Msg("Aggregator client initialized")

	// Create the proxy server
	server := proxy.NewServer(buildServerConfig(cfg), client)

	// Setup signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}

// buildServerConfig converts the loaded ProxyConfig to proxy.ServerConfig
func buildServerConfig(cfg *config.ProxyConfig) *proxy.ServerConfig {
	serverConfig := &proxy.ServerConfig{
		Address:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		AllowedOrigins: cfg.AllowedOrigins,
		EnableMetrics:  cfg.EnableMetrics,
	}

	// Set rate limiting if configured
	if cfg.RatePerMinute > 0 {
		serverConfig.RatePerMinute = &cfg.RatePerMinute
	}
	if cfg.MaxConcurrentRequests > 0 {
		serverConfig.MaxConcurrentRequests = &cfg.MaxConcurrentRequests
	}

	return serverConfig
}
