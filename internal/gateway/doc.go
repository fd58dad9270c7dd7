// Package gateway orchestrates the persona-gateway server components.
//
// # Overview
//
// The gateway package is the central coordinator of the persona-gateway
// server. It owns the backend REST client, the tool registry, the MCP
// JSON-RPC server, and the optional docs and metrics handlers, and serves
// all of them behind shared middleware on a single HTTP listener.
//
// # HTTP Surface
//
//   - POST /mcp, POST / - JSON-RPC 2.0 endpoint (API key required)
//   - OPTIONS on any path - CORS preflight, always 204, never authenticated
//   - GET /health - Liveness JSON (API key required)
//   - GET /info - Build and catalog details (API key required)
//   - GET /.well-known/mcp/manifest.json - Discovery document, no auth
//   - GET /sse - Fixed 501; only request/response HTTP is spoken
//   - GET / - HTML landing page when docs are enabled, no auth
//   - GET /metrics - Prometheus exposition when metrics are enabled, no auth
//
// # Middleware
//
// Two layers wrap the route table:
//
//   - withCORS: sets Access-Control headers from the configured origins and
//     short-circuits preflight OPTIONS before anything else runs.
//   - requireAuth: extracts the API key from X-API-Key or an Authorization
//     bearer token, syntax-checks any X-Payment header, and stores both as
//     backend credentials in the request context. Keyless requests get an
//     HTTP 401 JSON error before any body parsing or backend traffic.
//
// The gateway never validates key material itself; keys travel to the
// Parasol backend on every call and the backend decides.
//
// # Listeners
//
// setupListener picks the serving mode from config:
//
//   - Plain TCP on server.http_addr
//   - TLS on the same address, from a static cert pair or ACME autocert
//   - A Tailscale tsnet node: tailnet-only HTTP, tailnet HTTPS with
//     Tailscale-provisioned certs, or public exposure via Funnel
//
// # Lifecycle
//
// Start the gateway:
//
//	gw, err := gateway.New(cfg, version, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	go gw.Run(ctx)
//
// Graceful shutdown:
//
//	cancel()
//
// Run blocks until the context is canceled or the server fails, then drains
// in-flight requests for the configured shutdown grace period.
//
// # Key Files
//
//   - gateway.go: Gateway struct, initialization, Run/Shutdown
//   - routes.go: Route table and the small JSON handlers
//   - middleware.go: CORS and auth layers
//   - listeners.go: TCP, TLS/ACME, and tsnet listener construction
package gateway
