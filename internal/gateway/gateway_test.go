// ABOUTME: Tests for gateway routing, auth middleware, CORS, and discovery
// ABOUTME: Uses a counting stub backend to verify auth short-circuits requests

package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/parasol-research/persona-gateway/internal/config"
	"github.com/parasol-research/persona-gateway/internal/payment"
)

// testLogger creates a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig creates a minimal config pointed at the given backend URL.
func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			HTTPAddr:          "127.0.0.1:0",
			ReadHeaderTimeout: time.Second,
			ShutdownGrace:     time.Second,
		},
		Backend: config.BackendConfig{
			BaseURL: backendURL,
			Timeout: 5 * time.Second,
		},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		Docs:    config.DocsConfig{Enabled: true},
	}
}

// newTestGateway builds a gateway backed by a stub REST API that counts
// calls and returns the canned body.
func newTestGateway(t *testing.T, backendFn http.HandlerFunc) (*Gateway, *int) {
	t.Helper()

	calls := 0
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if backendFn != nil {
			backendFn(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"plan": "research"}`))
	}))
	t.Cleanup(backendSrv.Close)

	gw, err := New(testConfig(backendSrv.URL), "1.2.3", testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return gw, &calls
}

// doRequest runs one request through the full middleware chain.
func doRequest(t *testing.T, gw *Gateway, method, target string, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)
	return rr
}

func withKey() http.Header {
	return http.Header{"X-API-Key": []string{"test-key"}}
}

func TestNewGateway(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	if gw.registry.Len() != 20 {
		t.Errorf("expected 20 registered tools, got %d", gw.registry.Len())
	}
	if gw.Handler() == nil {
		t.Fatal("expected a wired handler")
	}
}

func TestAuthRequired(t *testing.T) {
	gw, calls := newTestGateway(t, nil)

	authed := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPost, "/mcp", `{"jsonrpc": "2.0", "id": 1, "method": "ping"}`},
		{http.MethodPost, "/", `{"jsonrpc": "2.0", "id": 1, "method": "ping"}`},
		{http.MethodGet, "/health", ""},
		{http.MethodGet, "/info", ""},
		{http.MethodGet, "/sse", ""},
	}

	for _, tt := range authed {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rr := doRequest(t, gw, tt.method, tt.target, tt.body, nil)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401 without key, got %d", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON error, got Content-Type %q", ct)
			}
			if msg := gjson.Get(rr.Body.String(), "error").String(); !strings.Contains(msg, "API key") {
				t.Errorf("expected error message naming the API key, got %q", msg)
			}
		})
	}

	if *calls != 0 {
		t.Errorf("expected zero backend calls for unauthenticated requests, got %d", *calls)
	}
}

func TestAuthHeaderForms(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	tests := []struct {
		name     string
		header   http.Header
		wantCode int
	}{
		{"x-api-key", http.Header{"X-API-Key": []string{"test-key"}}, http.StatusOK},
		{"bearer token", http.Header{"Authorization": []string{"Bearer test-key"}}, http.StatusOK},
		{"basic auth rejected", http.Header{"Authorization": []string{"Basic dXNlcjpwYXNz"}}, http.StatusUnauthorized},
		{"blank x-api-key", http.Header{"X-API-Key": []string{"   "}}, http.StatusUnauthorized},
		{"no headers", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, gw, http.MethodGet, "/health", "", tt.header)
			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
		})
	}
}

func TestPreflight(t *testing.T) {
	gw, calls := newTestGateway(t, nil)

	header := http.Header{
		"Origin":                        []string{"https://studio.parasol.example"},
		"Access-Control-Request-Method": []string{"POST"},
	}
	rr := doRequest(t, gw, http.MethodOptions, "/mcp", "", header)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard allow-origin, got %q", got)
	}
	allowHeaders := rr.Header().Get("Access-Control-Allow-Headers")
	for _, want := range []string{"X-API-Key", "Authorization", "Content-Type", "X-Payment"} {
		if !strings.Contains(allowHeaders, want) {
			t.Errorf("Access-Control-Allow-Headers missing %q: %q", want, allowHeaders)
		}
	}
	if got := rr.Header().Get("Access-Control-Expose-Headers"); got != payment.HeaderPaymentResponse {
		t.Errorf("expected exposed header %q, got %q", payment.HeaderPaymentResponse, got)
	}

	// Preflight never requires a key, on any path
	rr = doRequest(t, gw, http.MethodOptions, "/health", "", header)
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight on /health, got %d", rr.Code)
	}

	if *calls != 0 {
		t.Errorf("expected zero backend calls for preflight, got %d", *calls)
	}
}

func TestCORSOriginAllowlist(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(backendSrv.Close)

	cfg := testConfig(backendSrv.URL)
	cfg.CORS.AllowedOrigins = []string{"https://studio.parasol.example"}
	gw, err := New(cfg, "1.2.3", testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	t.Run("allowed origin echoed", func(t *testing.T) {
		header := http.Header{"Origin": []string{"https://studio.parasol.example"}}
		rr := doRequest(t, gw, http.MethodOptions, "/mcp", "", header)

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://studio.parasol.example" {
			t.Errorf("expected origin echoed, got %q", got)
		}
		if got := rr.Header().Get("Vary"); got != "Origin" {
			t.Errorf("expected Vary: Origin, got %q", got)
		}
	})

	t.Run("unknown origin gets no grant", func(t *testing.T) {
		header := http.Header{"Origin": []string{"https://evil.example"}}
		rr := doRequest(t, gw, http.MethodOptions, "/mcp", "", header)

		if rr.Code != http.StatusNoContent {
			t.Errorf("expected 204, got %d", rr.Code)
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("expected no allow-origin for unknown origin, got %q", got)
		}
	})
}

func TestRPCRoutes(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	ping := `{"jsonrpc": "2.0", "id": 1, "method": "ping"}`

	for _, target := range []string{"/mcp", "/"} {
		t.Run("POST "+target, func(t *testing.T) {
			rr := doRequest(t, gw, http.MethodPost, target, ping, withKey())

			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if result := gjson.Get(rr.Body.String(), "result").Raw; result != "{}" {
				t.Errorf("expected empty ping result, got %s", result)
			}
		})
	}

	t.Run("GET /mcp is method not allowed", func(t *testing.T) {
		// No key on purpose: the method gate answers before auth
		rr := doRequest(t, gw, http.MethodGet, "/mcp", "", nil)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rr.Code)
		}
		if allow := rr.Header().Get("Allow"); allow != "POST, OPTIONS" {
			t.Errorf("expected Allow header POST, OPTIONS, got %q", allow)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		rr := doRequest(t, gw, http.MethodGet, "/nope", "", withKey())
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})
}

func TestMalformedPaymentHeader(t *testing.T) {
	gw, calls := newTestGateway(t, nil)

	header := withKey()
	header.Set(payment.HeaderPayment, "not-base64!!")
	body := `{"jsonrpc": "2.0", "id": 1, "method": "tools/call", "params": {"name": "get_account"}}`
	rr := doRequest(t, gw, http.MethodPost, "/mcp", body, header)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed payment header, got %d", rr.Code)
	}
	if msg := gjson.Get(rr.Body.String(), "error").String(); !strings.Contains(msg, payment.HeaderPayment) {
		t.Errorf("expected error naming the header, got %q", msg)
	}
	if *calls != 0 {
		t.Errorf("expected zero backend calls, got %d", *calls)
	}
}

func TestPaymentHeaderForwarded(t *testing.T) {
	var gotPayment string
	gw, calls := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotPayment = r.Header.Get(payment.HeaderPayment)
		_, _ = w.Write([]byte(`{}`))
	})

	encoded := payment.Encode([]byte(`{"x402Version": 1, "scheme": "exact"}`))
	header := withKey()
	header.Set(payment.HeaderPayment, encoded)
	body := `{"jsonrpc": "2.0", "id": 1, "method": "tools/call", "params": {"name": "get_account"}}`
	rr := doRequest(t, gw, http.MethodPost, "/mcp", body, header)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if *calls != 1 {
		t.Fatalf("expected one backend call, got %d", *calls)
	}
	if gotPayment != encoded {
		t.Errorf("expected payment header forwarded verbatim, got %q", gotPayment)
	}
}

func TestHealthAndInfo(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	t.Run("health", func(t *testing.T) {
		rr := doRequest(t, gw, http.MethodGet, "/health", "", withKey())

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		resp := gjson.Parse(rr.Body.String())
		if status := resp.Get("status").String(); status != "ok" {
			t.Errorf("expected status ok, got %q", status)
		}
		if version := resp.Get("version").String(); version != "1.2.3" {
			t.Errorf("expected version 1.2.3, got %q", version)
		}
		if !resp.Get("uptime_seconds").Exists() {
			t.Error("expected uptime_seconds in health response")
		}
	})

	t.Run("info", func(t *testing.T) {
		rr := doRequest(t, gw, http.MethodGet, "/info", "", withKey())

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		resp := gjson.Parse(rr.Body.String())
		if name := resp.Get("name").String(); name != "persona-gateway" {
			t.Errorf("expected name persona-gateway, got %q", name)
		}
		if tools := resp.Get("tools").Int(); tools != 20 {
			t.Errorf("expected 20 tools, got %d", tools)
		}
		if pv := resp.Get("protocol_version").String(); pv == "" {
			t.Error("expected a protocol_version")
		}
	})
}

func TestManifestUnauthenticated(t *testing.T) {
	gw, calls := newTestGateway(t, nil)

	rr := doRequest(t, gw, http.MethodGet, "/.well-known/mcp/manifest.json", "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 without key, got %d", rr.Code)
	}

	resp := gjson.Parse(rr.Body.String())
	if endpoint := resp.Get("endpoint").String(); endpoint != "/mcp" {
		t.Errorf("expected endpoint /mcp, got %q", endpoint)
	}

	toolNames := resp.Get("tools").Array()
	if len(toolNames) != 20 {
		t.Fatalf("expected 20 tool names, got %d", len(toolNames))
	}
	found := false
	for _, name := range toolNames {
		if name.String() == "generate_personas" {
			found = true
		}
	}
	if !found {
		t.Error("expected generate_personas in the manifest tool list")
	}

	authHeaders := resp.Get("auth.headers").Array()
	if len(authHeaders) != 2 || authHeaders[0].String() != "X-API-Key" {
		t.Errorf("expected auth headers [X-API-Key Authorization], got %v", authHeaders)
	}

	if *calls != 0 {
		t.Errorf("expected zero backend calls for discovery, got %d", *calls)
	}
}

func TestSSENotImplemented(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	rr := doRequest(t, gw, http.MethodGet, "/sse", "", withKey())

	if rr.Code != http.StatusNotImplemented {
		t.Errorf("expected 501, got %d", rr.Code)
	}
	if msg := gjson.Get(rr.Body.String(), "error").String(); !strings.Contains(msg, "/mcp") {
		t.Errorf("expected pointer to /mcp in error, got %q", msg)
	}
}

func TestDocsLandingPage(t *testing.T) {
	gw, calls := newTestGateway(t, nil)

	rr := doRequest(t, gw, http.MethodGet, "/", "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 without key, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected HTML content type, got %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "Parasol") {
		t.Error("expected landing page to mention Parasol")
	}
	if *calls != 0 {
		t.Errorf("expected zero backend calls for docs, got %d", *calls)
	}
}

func TestDocsDisabled(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(backendSrv.Close)

	cfg := testConfig(backendSrv.URL)
	cfg.Docs.Enabled = false
	gw, err := New(cfg, "1.2.3", testLogger())
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	rr := doRequest(t, gw, http.MethodGet, "/", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 with docs disabled, got %d", rr.Code)
	}

	// The RPC alias on the bare path still works
	rr = doRequest(t, gw, http.MethodPost, "/", `{"jsonrpc": "2.0", "id": 1, "method": "ping"}`, withKey())
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for RPC on bare path, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	// Generate one observation so the gateway series exist
	doRequest(t, gw, http.MethodPost, "/mcp", `{"jsonrpc": "2.0", "id": 1, "method": "ping"}`, withKey())

	rr := doRequest(t, gw, http.MethodGet, "/metrics", "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 without key, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "persona_gateway_rpc_requests_total") {
		t.Error("expected gateway RPC counter in metrics exposition")
	}
}

func TestInitializeViaGateway(t *testing.T) {
	var gotAuthz string
	gw, calls := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuthz = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"plan": "research"}`))
	})

	body := `{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": {}}`
	rr := doRequest(t, gw, http.MethodPost, "/mcp", body, withKey())

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if *calls != 1 {
		t.Errorf("expected exactly one backend call for initialize, got %d", *calls)
	}
	if gotAuthz != "Bearer test-key" {
		t.Errorf("expected bearer key forwarded to backend, got %q", gotAuthz)
	}
	if name := gjson.Get(rr.Body.String(), "result.serverInfo.name").String(); name != "persona-gateway" {
		t.Errorf("expected serverInfo.name persona-gateway, got %q", name)
	}
}

func TestRunAndShutdown(t *testing.T) {
	gw, _ := newTestGateway(t, nil)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.Run(ctx)
	}()

	// Give it time to start
	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Run() returned unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Error("gateway did not shut down in time")
	}
}

func TestResolveTailscaleAuthKey(t *testing.T) {
	t.Run("configured key wins", func(t *testing.T) {
		t.Setenv("TS_AUTHKEY", "tskey-from-env")

		key, err := resolveTailscaleAuthKey("tskey-from-config")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "tskey-from-config" {
			t.Errorf("expected config key, got %q", key)
		}
	})

	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("TS_AUTHKEY", "tskey-from-env")

		key, err := resolveTailscaleAuthKey("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "tskey-from-env" {
			t.Errorf("expected env key, got %q", key)
		}
	})

	t.Run("missing key errors", func(t *testing.T) {
		t.Setenv("TS_AUTHKEY", "")

		_, err := resolveTailscaleAuthKey("")
		if err == nil {
			t.Fatal("expected an error with no key available")
		}
		if !strings.Contains(err.Error(), "TS_AUTHKEY") {
			t.Errorf("expected error to name the env var, got %q", err.Error())
		}
	})
}
