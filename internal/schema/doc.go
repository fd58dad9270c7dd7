// Package schema provides declarative argument validation for gateway tools.
//
// # Overview
//
// A Schema lists the fields a tool accepts: type, required flag, bounds,
// string formats, enums, array constraints, and JSON-literal defaults, plus
// optional cross-field Checks. The same declaration serves three uses:
// Validate flattens all violations into one message list, ApplyDefaults
// fills absent defaulted fields, and JSONSchema renders the contract for
// tools/list.
//
// # Validation
//
// Validate is strict in both directions: required fields must be present and
// well-formed, and fields outside the declaration are rejected as unknown
// parameters. Messages are stable, ordered (declaration order, then unknown
// fields, then checks), and phrased as "field: problem" so clients can show
// them directly.
package schema
