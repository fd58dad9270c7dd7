// Package config handles configuration loading for persona-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from PERSONA_GATEWAY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/persona-gateway/gateway.yaml
//  3. ~/.config/persona-gateway/gateway.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	backend:
//	  base_url: "${PARASOL_API_URL}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	backend:
//	  timeout: "30s"
//	server:
//	  read_header_timeout: "5s"
//	  shutdown_grace: "10s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"
//	  read_header_timeout: "5s"
//	  shutdown_grace: "10s"
//
// Backend (the Parasol REST API this gateway fronts):
//
//	backend:
//	  base_url: "https://api.parasol.example"
//	  timeout: "30s"
//
// CORS (for browser-based MCP clients):
//
//	cors:
//	  allowed_origins: ["*"]
//
// TLS (direct termination; mutually optional with Tailscale):
//
//	tls:
//	  enabled: true
//	  cert_file: "/etc/persona-gateway/tls.crt"
//	  key_file: "/etc/persona-gateway/tls.key"
//	  acme:
//	    enabled: false
//	    hostnames: ["mcp.parasol.example"]
//	    cache_dir: "/var/lib/persona-gateway/acme"
//	    email: "ops@parasol.example"
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "persona-gateway"
//	  auth_key: "${TS_AUTHKEY}"
//	  state_dir: ""    # default ~/.local/share/persona-gateway/tailscale
//	  https: false     # TLS with Tailscale-provisioned certs
//	  funnel: false    # public exposure via Tailscale Funnel
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Metrics and docs:
//
//	metrics:
//	  enabled: true
//	  path: "/metrics"
//	docs:
//	  enabled: true
//
// # Validation
//
// Load() validates:
//
//   - Listener address presence (unless Tailscale supplies one)
//   - Backend base URL shape (absolute http/https)
//   - TLS cert/key pairing and ACME hostname presence
//   - Duration format validity
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/persona-gateway/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
