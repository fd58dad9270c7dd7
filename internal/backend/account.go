// ABOUTME: Account endpoints: credential check and usage reporting
// ABOUTME: GET /v1/account and GET /v1/account/usage

package backend

import (
	"context"
	"net/http"
	"net/url"
)

// GetAccount fetches the account owning the presented API key. This doubles
// as the credential check behind the MCP initialize handshake.
func (c *Client) GetAccount(ctx context.Context, creds Credentials) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "account.get",
		method: http.MethodGet,
		path:   "/v1/account",
	})
}

// GetUsage fetches usage totals for the given period (day, week, or month).
func (c *Client) GetUsage(ctx context.Context, creds Credentials, period string) (*Response, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	return c.do(ctx, creds, call{
		op:     "account.usage",
		method: http.MethodGet,
		path:   "/v1/account/usage",
		query:  q,
	})
}
