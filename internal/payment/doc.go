// Package payment handles the x402 payment headers the gateway relays
// between MCP clients and the Parasol backend. The gateway never signs or
// settles payments; it checks header syntax on the way in and decodes
// requirements and receipts on the way out.
package payment
