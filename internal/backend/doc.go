// Package backend implements the HTTP client for the Parasol REST API.
//
// # Overview
//
// Every MCP tool the gateway exposes maps to exactly one REST endpoint here.
// Each endpoint gets its own function, grouped by resource (account, personas,
// audiences, surveys, insights, reports), and all of them funnel through a
// single request core that handles credentials, timeouts, and error
// normalization identically.
//
// # Credentials
//
// The gateway holds no API keys. Callers attach the key presented by the MCP
// client (plus any X-Payment header) to the request context:
//
//	ctx = backend.WithCredentials(ctx, backend.Credentials{APIKey: key})
//
// and endpoint functions forward it as Authorization: Bearer.
//
// # Error Normalization
//
// Failed calls return *Error with one of four kinds:
//
//   - KindUnreachable: connection failures, DNS errors, oversized responses
//   - KindTimeout: the per-call deadline elapsed
//   - KindStatus: backend answered with a non-2xx status
//   - KindPaymentRequired: backend answered 402; Requirements carries the
//     decoded x402 accepts document when present
//
// Message text is probed from common error body shapes (error.message,
// error, message, detail) before falling back to the HTTP status text.
// Nothing is retried; every failure is reported once.
//
// # Limits
//
// Each call is bounded by the configured timeout (default 30s) and response
// bodies over 4 MiB are rejected.
package backend
