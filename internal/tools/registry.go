// ABOUTME: Thread-safe registry for the gateway's tool catalog
// ABOUTME: Handles registration order, lookup, validation, and dispatch to backend calls

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/metrics"
	"github.com/parasol-research/persona-gateway/internal/schema"
)

// ErrToolCollision indicates a tool name is already registered.
var ErrToolCollision = errors.New("tool name collision")

// ValidationError carries the flattened per-field messages for arguments
// that failed their schema. The message text stays uniform so schema
// internals never leak through it.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string { return "invalid parameters" }

// UnknownToolError indicates a tools/call named a tool outside the catalog.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string { return fmt.Sprintf("unknown tool: %s", e.Name) }

// Handler executes one tool against the backend with validated, defaulted
// arguments.
type Handler func(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error)

// Tool is one MCP-exposed operation backed by exactly one REST call.
type Tool struct {
	Name        string
	Description string
	Schema      schema.Schema
	Handler     Handler
}

// Descriptor is the tools/list representation of a tool.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Registry holds the tool catalog. Registration happens once at startup;
// lookups and calls are concurrent.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	tools   map[string]*Tool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:   make(map[string]*Tool),
		logger:  logger,
		metrics: m,
	}
}

// Register adds tools to the catalog, preserving declaration order.
// Returns ErrToolCollision if any name is already taken.
func (r *Registry) Register(tools ...*Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tool := range tools {
		if existing, exists := r.tools[tool.Name]; exists && existing != nil {
			return fmt.Errorf("%w: %q", ErrToolCollision, tool.Name)
		}
	}
	for _, tool := range tools {
		r.tools[tool.Name] = tool
		r.order = append(r.order, tool.Name)
	}
	return nil
}

// Len reports the catalog size.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Names returns tool names in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Descriptors renders the catalog for tools/list, in declaration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		out = append(out, Descriptor{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.Schema.JSONSchema(),
		})
	}
	return out
}

// Call validates arguments, applies defaults, and executes the named tool.
// Failures come back as *UnknownToolError, *ValidationError, *backend.Error,
// or a plain error for everything else.
func (r *Registry) Call(ctx context.Context, name string, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	r.mu.RLock()
	tool := r.tools[name]
	r.mu.RUnlock()

	if tool == nil {
		r.metrics.ObserveToolCall("unknown", "unknown_tool")
		return nil, &UnknownToolError{Name: name}
	}

	if msgs := tool.Schema.Validate(args); len(msgs) > 0 {
		r.metrics.ObserveToolCall(name, "validation_error")
		return nil, &ValidationError{Messages: msgs}
	}

	normalized, err := tool.Schema.ApplyDefaults(args)
	if err != nil {
		r.metrics.ObserveToolCall(name, "error")
		return nil, fmt.Errorf("applying argument defaults: %w", err)
	}

	callID := uuid.New().String()
	log := r.logger.With("tool", name, "call_id", callID)
	log.Debug("dispatching tool call")

	resp, err := tool.Handler(ctx, creds, normalized)
	if err != nil {
		r.metrics.ObserveToolCall(name, callOutcome(err))
		log.Warn("tool call failed", "error", err)
		return nil, err
	}

	r.metrics.ObserveToolCall(name, "ok")
	log.Debug("tool call completed", "status", resp.Status)
	return resp, nil
}

// callOutcome maps a handler error to a bounded metric label.
func callOutcome(err error) string {
	var bErr *backend.Error
	if errors.As(err, &bErr) {
		return string(bErr.Kind)
	}
	return "error"
}
