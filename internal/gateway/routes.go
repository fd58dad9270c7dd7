// ABOUTME: HTTP route table: RPC endpoint, discovery manifest, health, docs, metrics
// ABOUTME: Auth-gated routes wrap handlers with requireAuth; manifest and docs stay open

package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/parasol-research/persona-gateway/internal/mcp"
)

// buildRoutes assembles the gateway route table.
func (g *Gateway) buildRoutes() http.Handler {
	rpc := g.rpcEndpoint()

	mux := http.NewServeMux()
	mux.Handle("/mcp", rpc)
	mux.Handle("/health", g.requireAuth(http.HandlerFunc(g.handleHealth)))
	mux.Handle("/info", g.requireAuth(http.HandlerFunc(g.handleInfo)))
	mux.Handle("/sse", g.requireAuth(http.HandlerFunc(g.handleSSE)))
	mux.HandleFunc("/.well-known/mcp/manifest.json", g.handleManifest)
	if g.metrics != nil {
		mux.Handle(g.config.Metrics.Path, g.metrics.Handler())
	}
	mux.Handle("/", g.rootHandler(rpc))
	return mux
}

// rpcEndpoint builds the JSON-RPC handler chain. The method gate runs before
// auth so a keyless GET still learns the endpoint is POST-only.
func (g *Gateway) rpcEndpoint() http.Handler {
	authed := g.requireAuth(g.mcpServer)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST, OPTIONS")
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		authed.ServeHTTP(w, r)
	})
}

// rootHandler serves the bare path "/": POST is an alias for the RPC
// endpoint, GET serves the docs landing page when enabled. Anything else
// under "/" is unknown territory.
func (g *Gateway) rootHandler(rpc http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodPost:
			rpc.ServeHTTP(w, r)
		case http.MethodGet, http.MethodHead:
			if g.docs != nil {
				g.docs.ServeHTTP(w, r)
				return
			}
			http.NotFound(w, r)
		default:
			w.Header().Set("Allow", "GET, POST, OPTIONS")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// handleHealth reports liveness for the authenticated caller.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	g.sendJSON(w, map[string]any{
		"status":         "ok",
		"version":        g.version,
		"uptime_seconds": int64(time.Since(g.startedAt).Seconds()),
	})
}

// handleInfo reports build and catalog details for the authenticated caller.
func (g *Gateway) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	g.sendJSON(w, map[string]any{
		"name":             "persona-gateway",
		"version":          g.version,
		"protocol_version": mcp.ProtocolVersion,
		"tools":            g.registry.Len(),
		"backend_timeout":  g.backend.Timeout().String(),
	})
}

// handleManifest serves the discovery document. No auth: clients read this
// to learn how to authenticate in the first place.
func (g *Gateway) handleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	g.sendJSON(w, map[string]any{
		"name":             "persona-gateway",
		"description":      "MCP gateway for the Parasol persona-research API",
		"version":          g.version,
		"protocol_version": mcp.ProtocolVersion,
		"endpoint":         "/mcp",
		"transport":        "http",
		"auth": map[string]any{
			"type":    "api_key",
			"headers": []string{"X-API-Key", "Authorization"},
		},
		"tools": g.registry.Names(),
	})
}

// handleSSE answers the legacy SSE transport path. The gateway only speaks
// request/response HTTP, so the path exists solely to say so.
func (g *Gateway) handleSSE(w http.ResponseWriter, r *http.Request) {
	g.sendJSONError(w, http.StatusNotImplemented, "SSE transport is not supported; POST JSON-RPC to /mcp")
}

// sendJSON writes a JSON response body.
func (g *Gateway) sendJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}
