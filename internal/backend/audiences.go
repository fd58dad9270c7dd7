// ABOUTME: Audience endpoints: creation, listing, retrieval, deletion, panel questioning
// ABOUTME: /v1/audiences and /v1/audiences/{id} routes

package backend

import (
	"context"
	"net/http"
	"net/url"
)

// CreateAudienceRequest is the body for POST /v1/audiences.
type CreateAudienceRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Region      string   `json:"region,omitempty"`
	AgeMin      int      `json:"age_min,omitempty"`
	AgeMax      int      `json:"age_max,omitempty"`
	Interests   []string `json:"interests,omitempty"`
}

// CreateAudience defines a new target audience.
func (c *Client) CreateAudience(ctx context.Context, creds Credentials, req CreateAudienceRequest) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "audiences.create",
		method: http.MethodPost,
		path:   "/v1/audiences",
		body:   req,
	})
}

// ListAudiences fetches the audience collection.
func (c *Client) ListAudiences(ctx context.Context, creds Credentials, params ListParams) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "audiences.list",
		method: http.MethodGet,
		path:   "/v1/audiences",
		query:  params.values(),
	})
}

// GetAudience fetches a single audience by ID.
func (c *Client) GetAudience(ctx context.Context, creds Credentials, id string) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "audiences.get",
		method: http.MethodGet,
		path:   "/v1/audiences/" + url.PathEscape(id),
	})
}

// DeleteAudience removes an audience.
func (c *Client) DeleteAudience(ctx context.Context, creds Credentials, id string) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "audiences.delete",
		method: http.MethodDelete,
		path:   "/v1/audiences/" + url.PathEscape(id),
	})
}

// AskAudienceRequest is the body for POST /v1/audiences/{id}/ask.
type AskAudienceRequest struct {
	Question   string `json:"question"`
	SampleSize int    `json:"sample_size,omitempty"`
}

// AskAudience poses a question to a sampled panel from the audience.
func (c *Client) AskAudience(ctx context.Context, creds Credentials, id string, req AskAudienceRequest) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "audiences.ask",
		method: http.MethodPost,
		path:   "/v1/audiences/" + url.PathEscape(id) + "/ask",
		body:   req,
	})
}
