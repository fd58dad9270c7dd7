// ABOUTME: HTTP middleware for CORS, API key extraction, and x402 header checks
// ABOUTME: Credentials ride the request context; auth failures are JSON errors

package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/payment"
)

// corsAllowHeaders lists the request headers browser-based MCP clients send.
const corsAllowHeaders = "Content-Type, X-API-Key, Authorization, X-Payment"

// withCORS sets CORS headers from the configured origins and answers
// preflight OPTIONS with 204 before auth or routing runs.
func (g *Gateway) withCORS(next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(g.config.CORS.AllowedOrigins))
	for _, o := range g.config.CORS.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
			continue
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			_, ok := allowed[origin]
			if ok || allowAll {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
				w.Header().Set("Access-Control-Expose-Headers", payment.HeaderPaymentResponse)
			}
		}

		// Preflight is always exempt from auth
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth extracts the caller's API key and stashes credentials in the
// request context. Requests without a key are rejected before any body
// parsing or backend traffic.
func (g *Gateway) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := extractAPIKey(r)
		if key == "" {
			g.sendJSONError(w, http.StatusUnauthorized, "missing API key: pass X-API-Key or Authorization: Bearer")
			return
		}

		creds := backend.Credentials{APIKey: key}
		if header := r.Header.Get(payment.HeaderPayment); header != "" {
			if err := payment.CheckHeader(header); err != nil {
				g.sendJSONError(w, http.StatusBadRequest, fmt.Sprintf("malformed %s header: %s", payment.HeaderPayment, err))
				return
			}
			creds.Payment = header
		}

		next.ServeHTTP(w, r.WithContext(backend.WithCredentials(r.Context(), creds)))
	})
}

// extractAPIKey reads the API key from X-API-Key or an Authorization bearer token.
func extractAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		g.logger.Error("failed to encode error response", "error", err)
	}
}
