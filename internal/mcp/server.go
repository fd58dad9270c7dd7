// ABOUTME: Stateless JSON-RPC 2.0 server implementing the MCP request surface
// ABOUTME: Parses envelopes, dispatches methods, and maps failures onto RPC error codes

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/metrics"
	"github.com/parasol-research/persona-gateway/internal/payment"
	"github.com/parasol-research/persona-gateway/internal/tools"
)

// ProtocolVersion is the MCP revision advertised in initialize responses.
const ProtocolVersion = "2025-06-18"

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// serverInstructions is the usage blurb returned from initialize.
const serverInstructions = "Parasol persona-research tools: generate and question synthetic personas, " +
	"define audiences, run surveys against them, search saved insights, and compile reports. " +
	"Start with get_account to confirm the key, then create_audience or generate_personas."

// JSON-RPC 2.0 types

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// JSONRPCError represents a JSON-RPC 2.0 error object.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Standard JSON-RPC error codes, plus the server-range codes that carry
// normalized backend failures back to the caller.
const (
	JSONRPCParseError     = -32700
	JSONRPCInvalidRequest = -32600
	JSONRPCMethodNotFound = -32601
	JSONRPCInvalidParams  = -32602
	JSONRPCInternalError  = -32603

	JSONRPCBackendStatus      = -32000 // backend answered non-2xx
	JSONRPCBackendUnreachable = -32001 // network failure before any response
	JSONRPCBackendTimeout     = -32002 // per-call deadline expired
	JSONRPCPaymentRequired    = -32003 // backend answered 402, x402 terms in data
)

// MCP-specific types

// ListToolsResult is the result for tools/list.
type ListToolsResult struct {
	Tools []tools.Descriptor `json:"tools"`
}

// CallToolParams are the params for tools/call.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is the result for tools/call.
type CallToolResult struct {
	Content []Content                  `json:"content"`
	Meta    map[string]json.RawMessage `json:"_meta,omitempty"`
}

// Content represents content in a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// envelope is a structurally valid JSON-RPC request.
type envelope struct {
	ID             json.RawMessage // nil when absent, "null" when explicitly null
	Method         string
	Params         json.RawMessage
	IsNotification bool
}

// Config holds configuration for the MCP server.
type Config struct {
	Registry *tools.Registry
	Backend  *backend.Client
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Version  string // reported in serverInfo
}

// Server answers MCP JSON-RPC requests. It keeps no per-client state: every
// request carries its own credentials and is handled independently.
type Server struct {
	registry *tools.Registry
	backend  *backend.Client
	logger   *slog.Logger
	metrics  *metrics.Metrics
	version  string
}

// NewServer creates a new MCP server with the given configuration.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Backend == nil {
		return nil, errors.New("backend client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	return &Server{
		registry: cfg.Registry,
		backend:  cfg.Backend,
		logger:   logger,
		metrics:  cfg.Metrics,
		version:  version,
	}, nil
}

// ServeHTTP handles the RPC endpoint. Only POST carries messages; there are
// no server-initiated streams, so GET is refused outright.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST, OPTIONS")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	s.handlePost(w, r)
}

// handlePost processes one JSON-RPC message sent via HTTP POST.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	// The body ceiling is enforced twice: a declared Content-Length above the
	// limit is refused without reading, and an undeclared body is read through
	// a limited reader and refused once it proves oversized.
	if r.ContentLength > MaxRequestBodySize {
		s.sendJSONRPCError(w, nil, JSONRPCInvalidRequest, "request body too large", nil)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		s.sendJSONRPCError(w, nil, JSONRPCParseError, "failed to read request body", nil)
		return
	}
	if int64(len(body)) > MaxRequestBodySize {
		s.sendJSONRPCError(w, nil, JSONRPCInvalidRequest, "request body too large", nil)
		return
	}

	env, rpcErr := parseEnvelope(body)
	if rpcErr != nil {
		s.sendJSONRPCError(w, env.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}

	logger := s.logger.With("request_id", uuid.NewString(), "method", env.Method)

	// Notifications are accepted with 202 and never answered.
	if env.IsNotification {
		if strings.HasPrefix(env.Method, "notifications/") {
			logger.Debug("accepted notification")
		} else {
			logger.Warn("received notification for non-notification method")
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	creds, _ := backend.CredentialsFrom(r.Context())

	start := time.Now()
	result, rpcErr := s.dispatch(r.Context(), creds, env)
	outcome := "ok"
	if rpcErr != nil {
		outcome = "error"
	}
	s.metrics.ObserveRPC(methodLabel(env.Method), outcome, time.Since(start))
	logger.Debug("rpc complete", "outcome", outcome, "duration", time.Since(start))

	if rpcErr != nil {
		s.sendJSONRPCError(w, env.ID, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}
	s.sendJSONRPCResult(w, env.ID, result)
}

// parseEnvelope validates the JSON-RPC envelope structurally: the body must
// be one JSON object, jsonrpc must equal "2.0", method must be a string, and
// id, when present, must be a string, a number, or null. The id is extracted
// first so structural failures still echo it when it was usable.
func parseEnvelope(body []byte) (envelope, *JSONRPCError) {
	var env envelope
	if !gjson.ValidBytes(body) {
		return env, &JSONRPCError{Code: JSONRPCParseError, Message: "invalid JSON"}
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return env, &JSONRPCError{Code: JSONRPCInvalidRequest, Message: "batch requests are not supported"}
	}
	if !root.IsObject() {
		return env, &JSONRPCError{Code: JSONRPCInvalidRequest, Message: "request must be a JSON object"}
	}

	// An absent id marks a notification. An explicit null id is a normal
	// request answered with "id": null.
	id := root.Get("id")
	switch {
	case !id.Exists():
		env.IsNotification = true
	case id.Type == gjson.String || id.Type == gjson.Number || id.Type == gjson.Null:
		env.ID = json.RawMessage(id.Raw)
	default:
		return env, &JSONRPCError{Code: JSONRPCInvalidRequest, Message: "id must be a string, a number, or null"}
	}

	if v := root.Get("jsonrpc"); v.Type != gjson.String || v.Str != "2.0" {
		return env, &JSONRPCError{Code: JSONRPCInvalidRequest, Message: "invalid JSON-RPC version"}
	}
	method := root.Get("method")
	if method.Type != gjson.String {
		return env, &JSONRPCError{Code: JSONRPCInvalidRequest, Message: "method must be a string"}
	}
	env.Method = method.Str

	if params := root.Get("params"); params.Exists() {
		env.Params = json.RawMessage(params.Raw)
	}
	return env, nil
}

// dispatch routes one request to its method handler.
func (s *Server) dispatch(ctx context.Context, creds backend.Credentials, env envelope) (any, *JSONRPCError) {
	switch env.Method {
	case "initialize":
		return s.handleInitialize(ctx, creds)
	case "tools/list":
		return s.handleToolsList()
	case "tools/call":
		return s.handleToolsCall(ctx, creds, env.Params)
	case "prompts/list":
		return map[string]any{"prompts": []any{}}, nil
	case "resources/list":
		return map[string]any{"resources": []any{}}, nil
	case "ping":
		return map[string]any{}, nil
	default:
		return nil, &JSONRPCError{Code: JSONRPCMethodNotFound, Message: "method not found"}
	}
}

// handleInitialize performs the credential check and returns capability
// metadata. Exactly one backend call happens here; a rejected key surfaces as
// an invalid-request error rather than a generic failure.
func (s *Server) handleInitialize(ctx context.Context, creds backend.Credentials) (any, *JSONRPCError) {
	if _, err := s.backend.GetAccount(ctx, creds); err != nil {
		s.logger.Warn("credential check failed", "error", err)
		return nil, &JSONRPCError{
			Code:    JSONRPCInvalidRequest,
			Message: "credential check failed: " + errorMessage(err),
		}
	}

	result := map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "persona-gateway",
			"version": s.version,
		},
		"instructions": serverInstructions,
	}
	return result, nil
}

// handleToolsList returns the full catalog in declaration order.
func (s *Server) handleToolsList() (any, *JSONRPCError) {
	descs := s.registry.Descriptors()
	s.logger.Debug("tools/list", "count", len(descs))
	return ListToolsResult{Tools: descs}, nil
}

// handleToolsCall validates the call parameters and forwards to the registry.
func (s *Server) handleToolsCall(ctx context.Context, creds backend.Credentials, params json.RawMessage) (any, *JSONRPCError) {
	var p CallToolParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &JSONRPCError{Code: JSONRPCInvalidParams, Message: "invalid params"}
		}
	}
	if p.Name == "" {
		return nil, &JSONRPCError{Code: JSONRPCInvalidParams, Message: "tool name is required"}
	}

	args := p.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}

	resp, err := s.registry.Call(ctx, p.Name, creds, args)
	if err != nil {
		return nil, s.toolCallError(p.Name, err)
	}

	result := CallToolResult{
		Content: []Content{{Type: "text", Text: string(resp.Body)}},
	}
	if resp.Receipt != nil {
		result.Meta = map[string]json.RawMessage{payment.MetaKey: resp.Receipt}
	}
	return result, nil
}

// toolCallError maps a failed tool call onto a JSON-RPC error object. Backend
// failures stay inside the RPC response; they never change the HTTP status.
func (s *Server) toolCallError(tool string, err error) *JSONRPCError {
	s.logger.Warn("tool call failed", "tool", tool, "error", err)

	var vErr *tools.ValidationError
	if errors.As(err, &vErr) {
		return &JSONRPCError{
			Code:    JSONRPCInvalidParams,
			Message: "invalid parameters",
			Data:    vErr.Messages,
		}
	}
	var uErr *tools.UnknownToolError
	if errors.As(err, &uErr) {
		return &JSONRPCError{Code: JSONRPCInternalError, Message: uErr.Error()}
	}
	var bErr *backend.Error
	if errors.As(err, &bErr) {
		switch bErr.Kind {
		case backend.KindUnreachable:
			return &JSONRPCError{Code: JSONRPCBackendUnreachable, Message: bErr.Message}
		case backend.KindTimeout:
			return &JSONRPCError{Code: JSONRPCBackendTimeout, Message: bErr.Message}
		case backend.KindPaymentRequired:
			e := &JSONRPCError{Code: JSONRPCPaymentRequired, Message: bErr.Message}
			if bErr.Requirements != nil {
				e.Data = bErr.Requirements
			}
			return e
		default:
			return &JSONRPCError{
				Code:    JSONRPCBackendStatus,
				Message: bErr.Message,
				Data:    map[string]int{"status": bErr.Status},
			}
		}
	}
	return &JSONRPCError{Code: JSONRPCInternalError, Message: "tool execution failed"}
}

// errorMessage prefers the normalized backend message over Go error chains.
func errorMessage(err error) string {
	var bErr *backend.Error
	if errors.As(err, &bErr) {
		return bErr.Message
	}
	return err.Error()
}

// methodLabel bounds the metric label space for arbitrary method names.
func methodLabel(method string) string {
	switch method {
	case "initialize", "tools/list", "tools/call", "prompts/list", "resources/list", "ping":
		return method
	}
	return "unknown"
}

// sendJSONRPCResult sends a successful JSON-RPC response.
func (s *Server) sendJSONRPCResult(w http.ResponseWriter, id json.RawMessage, result any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC response", "error", err)
	}
}

// sendJSONRPCError sends a JSON-RPC error response. The HTTP status stays
// 200: RPC-level failures are payload, not transport.
func (s *Server) sendJSONRPCError(w http.ResponseWriter, id json.RawMessage, code int, message string, data any) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("failed to encode JSON-RPC error response", "error", err)
	}
}
