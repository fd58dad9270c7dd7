// ABOUTME: Stdio-to-HTTP bridge pumping line-delimited JSON-RPC to the gateway
// ABOUTME: Synthesizes transport errors as JSON-RPC responses so clients never hang

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/parasol-research/persona-gateway/internal/mcp"
)

// maxLineSize bounds a single stdin line. The gateway rejects bodies over
// mcp.MaxRequestBodySize anyway, so there is no point buffering more.
const maxLineSize = mcp.MaxRequestBodySize + 4096

// GatewayClient posts individual JSON-RPC messages to the gateway's HTTP
// endpoint, authenticating with the configured API key.
type GatewayClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewGatewayClient creates a client for the gateway at the given base URL.
func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return &GatewayClient{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/mcp",
		apiKey:   apiKey,
		client:   &http.Client{},
	}
}

// Post sends one JSON-RPC message and returns the response body. A nil body
// with nil error means the gateway accepted a notification (202) and there is
// nothing to relay.
func (g *GatewayClient) Post(ctx context.Context, message []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(message))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting to gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusAccepted {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLineSize))
	if err != nil {
		return nil, fmt.Errorf("reading gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, gatewayErrorMessage(body))
	}

	return body, nil
}

// gatewayErrorMessage pulls the message out of the gateway's {"error": "..."}
// body, falling back to the raw body when it is not in that shape.
func gatewayErrorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String {
		return msg.String()
	}
	return string(bytes.TrimSpace(body))
}

// Bridge pumps line-delimited JSON-RPC between stdin/stdout and the gateway.
// Stdout carries protocol lines only; all logging goes to the injected logger,
// which main wires to stderr.
type Bridge struct {
	client *GatewayClient
	in     io.Reader
	out    io.Writer
	logger *slog.Logger
}

// NewBridge creates a bridge reading messages from in and writing responses
// to out.
func NewBridge(client *GatewayClient, in io.Reader, out io.Writer, logger *slog.Logger) *Bridge {
	return &Bridge{
		client: client,
		in:     in,
		out:    out,
		logger: logger,
	}
}

// Run reads stdin line by line until EOF or context cancellation. Each line
// is posted to the gateway and the response written back as one line.
func (b *Bridge) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(b.in)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		b.handleLine(ctx, line)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	b.logger.Info("stdin closed, shutting down")
	return nil
}

func (b *Bridge) handleLine(ctx context.Context, line []byte) {
	resp, err := b.client.Post(ctx, line)
	if err != nil {
		b.logger.Error("gateway call failed", "error", err)
		b.writeTransportError(line, err)
		return
	}
	if resp == nil {
		b.logger.Debug("notification accepted")
		return
	}
	b.writeLine(resp)
}

// writeTransportError synthesizes a JSON-RPC error response for the failed
// request so the client gets an answer instead of waiting forever.
// Notifications expect no response, so their failures are only logged.
func (b *Bridge) writeTransportError(request []byte, cause error) {
	id := gjson.GetBytes(request, "id")
	if !id.Exists() {
		return
	}
	msg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(id.Raw),
		"error": map[string]any{
			"code":    mcp.JSONRPCBackendUnreachable,
			"message": cause.Error(),
		},
	})
	if err != nil {
		b.logger.Error("failed to encode transport error", "error", err)
		return
	}
	b.writeLine(msg)
}

// writeLine emits exactly one newline-terminated line on the output stream.
func (b *Bridge) writeLine(line []byte) {
	trimmed := bytes.TrimRight(line, "\r\n")
	buf := make([]byte, 0, len(trimmed)+1)
	buf = append(buf, trimmed...)
	buf = append(buf, '\n')
	if _, err := b.out.Write(buf); err != nil {
		b.logger.Error("failed to write response line", "error", err)
	}
}
