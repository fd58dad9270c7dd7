// Package mcp implements the JSON-RPC 2.0 server behind the gateway's RPC endpoint.
//
// # Overview
//
// MCP (Model Context Protocol) is a JSON-RPC convention AI-agent clients use
// to discover and call tools. This package parses one envelope per POST,
// dispatches the six supported methods, and writes the response. It holds no
// sessions: the gateway is a stateless translator, and every request carries
// its own backend credentials in the request context.
//
// # Envelope rules
//
// The body must be a single JSON object with jsonrpc "2.0", a string method,
// and an id that is a string, a number, or null. A request without an id
// member is a notification, acknowledged with HTTP 202 and no body. An
// explicit null id is a normal request answered with "id": null. Batch
// arrays are refused. The response id always echoes the request id
// byte-for-byte.
//
// # Methods
//
//   - initialize: one backend credential check, then capability metadata
//   - tools/list: the declared catalog with JSON Schema input descriptions
//   - tools/call: validate arguments, make the one backend call, wrap the body
//   - prompts/list, resources/list: empty collections (nothing is served)
//   - ping: empty object
//
// # Errors
//
// Every failure is an RPC-level error object over HTTP 200. Structural
// problems use the standard codes (-32700 to -32603). Backend failures map
// into the server range: -32000 carries a non-2xx status, -32001 unreachable,
// -32002 timeout, -32003 payment required with the decoded x402 terms in the
// error data. Validation failures use -32602 with the uniform message
// "invalid parameters" and the per-field messages in data.
//
// # Usage
//
//	server, err := mcp.NewServer(mcp.Config{
//		Registry: registry,
//		Backend:  client,
//		Logger:   logger,
//	})
//	mux.Handle("/mcp", server)
package mcp
