// Package tools defines the catalog of research tools the gateway exposes
// over MCP and the registry that dispatches calls to them.
//
// # Overview
//
// Each tool pairs a name and description with a declarative input schema and
// a handler. The schema drives both sides of the contract: Registry.Call
// validates arguments against it before the handler runs, and Descriptors
// renders it as JSON Schema for tools/list. A handler never sees arguments
// that failed validation, so it can unmarshal into its input struct without
// re-checking field presence or ranges.
//
// # Calling
//
// Registry.Call resolves the tool by name, validates and defaults the raw
// arguments, and invokes the handler with the caller's backend credentials.
// Failures are typed so the caller can map them onto its own error surface:
//
//   - UnknownToolError: no tool with that name is registered
//   - ValidationError: one message per rejected field, in schema order
//   - *backend.Error: the backend call itself failed
//
// Anything else is an internal handler fault.
//
// # Catalog
//
// DefaultRegistry assembles the built-in catalog: account, persona, audience,
// survey, insight, and report tools, backed by one backend.Client.
// Registration order is fixed and tools/list preserves it.
package tools
