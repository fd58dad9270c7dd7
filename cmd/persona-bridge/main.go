// ABOUTME: Entry point for persona-bridge stdio transport
// ABOUTME: Connects MCP stdio clients to a persona-gateway over HTTP

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
)

const banner = `
    ╭──────────────────────────────────╮
    │                                  │
    │         ┏┓ ┏━┓╻╺┳┓┏━╸┏━╸         │
    │         ┣┻┓┣┳┛┃ ┃┃┃╺┓┣━╸         │
    │         ┗━┛╹┗╸╹╺┻┛┗━┛┗━╸         │
    │                                  │
    │          persona-bridge          │
    │                                  │
    ╰──────────────────────────────────╯
`

// getConfigPath returns the path to the bridge config file.
// Priority: PERSONA_BRIDGE_CONFIG env var > XDG_CONFIG_HOME/persona-gateway/bridge.toml > ~/.config/persona-gateway/bridge.toml
func getConfigPath() string {
	if envPath := os.Getenv("PERSONA_BRIDGE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "bridge.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "persona-gateway", "bridge.toml")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Stdout belongs to the JSON-RPC stream, so the banner, startup info,
	// and all logging go to stderr.
	cyan := color.New(color.FgCyan)
	cyan.Fprint(os.Stderr, banner)

	configPath := getConfigPath()

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging.Level)

	// Print startup info
	green := color.New(color.FgGreen)
	green.Fprint(os.Stderr, "    ▶ ")
	fmt.Fprintf(os.Stderr, "Config:  %s\n", configPath)
	green.Fprint(os.Stderr, "    ▶ ")
	fmt.Fprintf(os.Stderr, "Gateway: %s\n", cfg.Gateway.URL)
	fmt.Fprintln(os.Stderr)

	// Create bridge
	client := NewGatewayClient(cfg.Gateway.URL, cfg.Gateway.APIKey)
	bridge := NewBridge(client, os.Stdin, os.Stdout, logger)

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run bridge
	logger.Info("starting bridge", "gateway", cfg.Gateway.URL)
	return bridge.Run(ctx)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
