// ABOUTME: x402 payment header helpers for the gateway's pass-through role
// ABOUTME: Base64+JSON syntax checks, 402 requirements decoding, receipt decoding

package payment

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Header names used by the x402 scheme. The gateway forwards HeaderPayment
// to the backend verbatim and decodes HeaderPaymentResponse for clients;
// it never signs, settles, or otherwise participates in the scheme.
const (
	HeaderPayment         = "X-Payment"
	HeaderPaymentResponse = "X-Payment-Response"
)

// MetaKey is where a decoded payment receipt rides in an MCP result's _meta.
const MetaKey = "x402/payment-response"

// Requirements is the accepts document a backend returns alongside HTTP 402.
// Individual accepts entries stay raw so nothing is lost on the way back to
// the client.
type Requirements struct {
	X402Version int               `json:"x402Version"`
	Error       string            `json:"error,omitempty"`
	Accepts     []json.RawMessage `json:"accepts"`
}

// Encode wraps a JSON payload in the base64 form the x402 headers carry.
func Encode(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// Decode reverses Encode, returning the JSON payload inside a header value.
func Decode(value string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decoding base64: %w", err)
	}
	return raw, nil
}

// CheckHeader verifies that an inbound X-Payment value is well-formed enough
// to forward: base64 wrapping a JSON object. The payload itself is opaque.
func CheckHeader(value string) error {
	raw, err := Decode(value)
	if err != nil {
		return err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return fmt.Errorf("payment payload is not a JSON object: %w", err)
	}
	return nil
}

// DecodeRequirements parses the JSON body of a 402 response.
func DecodeRequirements(body []byte) (*Requirements, error) {
	var reqs Requirements
	if err := json.Unmarshal(body, &reqs); err != nil {
		return nil, fmt.Errorf("decoding payment requirements: %w", err)
	}
	if len(reqs.Accepts) == 0 {
		return nil, fmt.Errorf("payment requirements carry no accepts entries")
	}
	return &reqs, nil
}

// DecodeReceipt parses an X-Payment-Response header into the JSON receipt it
// wraps. The receipt is kept raw; the gateway only relays it.
func DecodeReceipt(value string) (json.RawMessage, error) {
	raw, err := Decode(value)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("payment receipt is not valid JSON")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("payment receipt is not a JSON object: %w", err)
	}
	return json.RawMessage(raw), nil
}
