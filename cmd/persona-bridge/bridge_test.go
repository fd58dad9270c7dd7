// ABOUTME: Tests for the stdio bridge loop and gateway client
// ABOUTME: Verifies line pumping, notification silence, and error synthesis

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runBridge feeds input through a bridge pointed at a stub gateway and
// returns everything written to stdout plus the number of gateway calls.
func runBridge(t *testing.T, input string, handler http.HandlerFunc) (string, int) {
	t.Helper()
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := NewGatewayClient(srv.URL, "bridge-test-key")
	var out bytes.Buffer
	b := NewBridge(client, strings.NewReader(input), &out, testLogger())

	require.NoError(t, b.Run(context.Background()))
	return out.String(), calls
}

func TestBridgeRequestResponse(t *testing.T) {
	var gotMethod, gotPath, gotKey, gotContentType string
	var gotBody []byte
	out, calls := runBridge(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n",
		func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotKey = r.Header.Get("X-API-Key")
			gotContentType = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			// Trailing newline mirrors json.Encoder output on the gateway side.
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}` + "\n"))
		})

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/mcp", gotPath)
	assert.Equal(t, "bridge-test-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, string(gotBody))

	assert.Equal(t, `{"jsonrpc":"2.0","id":1,"result":{}}`+"\n", out)
}

func TestBridgeNotificationSilent(t *testing.T) {
	out, calls := runBridge(t, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n",
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		})

	assert.Equal(t, 1, calls)
	assert.Empty(t, out)
}

func TestBridgeMultipleLines(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":"a","method":"ping"}` + "\n" +
		"\n" + // blank lines are skipped, not posted
		`{"jsonrpc":"2.0","id":"b","method":"ping"}` + "\n"

	out, calls := runBridge(t, input, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		id := gjson.GetBytes(body, "id").Raw
		w.Write([]byte(`{"jsonrpc":"2.0","id":` + id + `,"result":{}}`))
	})

	assert.Equal(t, 2, calls)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a", gjson.Get(lines[0], "id").String())
	assert.Equal(t, "b", gjson.Get(lines[1], "id").String())
}

func TestBridgeTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client := NewGatewayClient(srv.URL, "bridge-test-key")
	var out bytes.Buffer
	b := NewBridge(client, strings.NewReader(`{"jsonrpc":"2.0","id":42,"method":"ping"}`+"\n"), &out, testLogger())
	require.NoError(t, b.Run(context.Background()))

	line := strings.TrimRight(out.String(), "\n")
	require.NotEmpty(t, line, "client must get a response even when the gateway is down")
	assert.Equal(t, "2.0", gjson.Get(line, "jsonrpc").String())
	assert.Equal(t, int64(42), gjson.Get(line, "id").Int())
	assert.Equal(t, int64(-32001), gjson.Get(line, "error.code").Int())
	assert.Contains(t, gjson.Get(line, "error.message").String(), "posting to gateway")
}

func TestBridgeTransportErrorNotification(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewGatewayClient(srv.URL, "bridge-test-key")
	var out bytes.Buffer
	b := NewBridge(client, strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n"), &out, testLogger())
	require.NoError(t, b.Run(context.Background()))

	// No id means no response is expected, not even a synthesized error.
	assert.Empty(t, out.String())
}

func TestBridgeGatewayHTTPError(t *testing.T) {
	out, calls := runBridge(t, `{"jsonrpc":"2.0","id":7,"method":"ping"}`+"\n",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"missing API key: pass X-API-Key or Authorization: Bearer"}`))
		})

	assert.Equal(t, 1, calls)
	line := strings.TrimRight(out, "\n")
	assert.Equal(t, int64(7), gjson.Get(line, "id").Int())
	assert.Equal(t, int64(-32001), gjson.Get(line, "error.code").Int())
	msg := gjson.Get(line, "error.message").String()
	assert.Contains(t, msg, "status 401")
	assert.Contains(t, msg, "missing API key")
}

func TestBridgeStringIDPreserved(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewGatewayClient(srv.URL, "bridge-test-key")
	var out bytes.Buffer
	b := NewBridge(client, strings.NewReader(`{"jsonrpc":"2.0","id":"req-9","method":"ping"}`+"\n"), &out, testLogger())
	require.NoError(t, b.Run(context.Background()))

	id := gjson.Get(strings.TrimRight(out.String(), "\n"), "id")
	assert.Equal(t, gjson.String, id.Type)
	assert.Equal(t, "req-9", id.String())
}

func TestGatewayClientTrimsTrailingSlash(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := NewGatewayClient(srv.URL+"/", "k")
	_, err := client.Post(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, "/mcp", gotPath)
}
