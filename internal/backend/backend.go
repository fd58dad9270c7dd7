// ABOUTME: HTTP client for the Parasol persona-research REST API
// ABOUTME: One function per endpoint, all sharing a single request/normalize core

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/parasol-research/persona-gateway/internal/metrics"
	"github.com/parasol-research/persona-gateway/internal/payment"
)

// MaxResponseBody caps how much of a backend response the gateway will read.
const MaxResponseBody = 4 << 20 // 4 MiB

// Credentials carry the caller's backend credential through a request.
// The gateway holds no keys of its own; every outbound call authenticates
// with whatever the MCP client presented.
type Credentials struct {
	APIKey  string
	Payment string // raw X-Payment header value, forwarded verbatim
}

type ctxKey struct{}

// WithCredentials stores per-request credentials on the context.
func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, ctxKey{}, creds)
}

// CredentialsFrom retrieves credentials stored by WithCredentials.
func CredentialsFrom(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(ctxKey{}).(Credentials)
	return creds, ok
}

// Client is the one HTTP client the gateway uses to reach Parasol.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New creates a backend client. The timeout bounds every individual call;
// zero selects the 30s default.
func New(baseURL string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
		logger:     logger,
		metrics:    m,
	}
}

// Timeout reports the per-call deadline the client applies.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// ListParams are the shared pagination knobs for collection endpoints.
type ListParams struct {
	Limit  int
	Offset int
}

func (p ListParams) values() url.Values {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	return q
}

// Response is a successful backend reply.
type Response struct {
	Status  int
	Body    json.RawMessage
	Receipt json.RawMessage // decoded X-Payment-Response, nil when absent
}

// call describes one REST request for do.
type call struct {
	op     string // stable label for logs and metrics, e.g. "personas.generate"
	method string
	path   string
	query  url.Values
	body   any
}

// do executes a call and normalizes every failure into *Error.
func (c *Client) do(ctx context.Context, creds Credentials, req call) (*Response, error) {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+creds.APIKey)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if creds.Payment != "" {
		httpReq.Header.Set(payment.HeaderPayment, creds.Payment)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		bErr := &Error{Kind: KindUnreachable, Message: "backend unreachable"}
		if errors.Is(err, context.DeadlineExceeded) {
			bErr = &Error{Kind: KindTimeout, Message: fmt.Sprintf("backend call timed out after %s", c.timeout)}
		}
		c.observe(req.op, string(bErr.Kind), start)
		c.logger.Warn("backend call failed", "op", req.op, "error", err)
		return nil, bErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBody+1))
	if err != nil {
		bErr := &Error{Kind: KindUnreachable, Message: "reading backend response failed"}
		if errors.Is(err, context.DeadlineExceeded) {
			bErr = &Error{Kind: KindTimeout, Message: fmt.Sprintf("backend call timed out after %s", c.timeout)}
		}
		c.observe(req.op, string(bErr.Kind), start)
		return nil, bErr
	}
	if len(body) > MaxResponseBody {
		c.observe(req.op, string(KindUnreachable), start)
		return nil, &Error{Kind: KindUnreachable, Message: "backend response exceeded 4 MiB"}
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		bErr := &Error{
			Kind:    KindPaymentRequired,
			Status:  resp.StatusCode,
			Message: extractMessage(body, resp.StatusCode),
		}
		reqs, decodeErr := payment.DecodeRequirements(body)
		if decodeErr != nil {
			c.logger.Warn("402 without decodable payment requirements", "op", req.op, "error", decodeErr)
		} else {
			bErr.Requirements = reqs
		}
		c.observe(req.op, string(bErr.Kind), start)
		return nil, bErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(req.op, string(KindStatus), start)
		c.logger.Warn("backend returned error status",
			"op", req.op,
			"status", resp.StatusCode,
		)
		return nil, &Error{
			Kind:    KindStatus,
			Status:  resp.StatusCode,
			Message: extractMessage(body, resp.StatusCode),
		}
	}

	out := &Response{Status: resp.StatusCode, Body: body}
	if v := resp.Header.Get(payment.HeaderPaymentResponse); v != "" {
		receipt, decodeErr := payment.DecodeReceipt(v)
		if decodeErr != nil {
			c.logger.Warn("discarding malformed payment receipt", "op", req.op, "error", decodeErr)
		} else {
			out.Receipt = receipt
		}
	}
	c.observe(req.op, "ok", start)
	return out, nil
}

func (c *Client) observe(op, outcome string, start time.Time) {
	c.metrics.ObserveBackendCall(op, outcome, time.Since(start))
}
