// ABOUTME: Normalized backend error type and error-body message extraction
// ABOUTME: Every failure mode maps to one of four kinds the RPC layer can name

package backend

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/parasol-research/persona-gateway/internal/payment"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	KindUnreachable     ErrorKind = "unreachable"
	KindTimeout         ErrorKind = "timeout"
	KindStatus          ErrorKind = "status"
	KindPaymentRequired ErrorKind = "payment_required"
)

// Error is the single error type backend calls return. The caller decides
// how to surface it; nothing here is ever thrown to the HTTP transport.
type Error struct {
	Kind         ErrorKind
	Status       int    // HTTP status for status/payment kinds, 0 otherwise
	Message      string // normalized human-readable message
	Requirements *payment.Requirements
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// messageProbes are the body shapes backends use for error text, in
// preference order.
var messageProbes = []string{"error.message", "error", "message", "detail"}

// extractMessage pulls a usable message out of an error response body,
// falling back to the HTTP status text.
func extractMessage(body []byte, status int) string {
	for _, probe := range messageProbes {
		v := gjson.GetBytes(body, probe)
		if v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return v.String()
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("backend returned status %d", status)
}
