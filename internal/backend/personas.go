// ABOUTME: Persona endpoints: generation, listing, retrieval, deletion, questioning
// ABOUTME: /v1/personas and /v1/personas/{id} routes

package backend

import (
	"context"
	"net/http"
	"net/url"
)

// GeneratePersonasRequest is the body for POST /v1/personas/generate.
type GeneratePersonasRequest struct {
	Brief      string `json:"brief"`
	Count      int    `json:"count,omitempty"`
	AudienceID string `json:"audience_id,omitempty"`
	Region     string `json:"region,omitempty"`
	Language   string `json:"language,omitempty"`
}

// GeneratePersonas asks the backend to synthesize personas from a research brief.
func (c *Client) GeneratePersonas(ctx context.Context, creds Credentials, req GeneratePersonasRequest) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "personas.generate",
		method: http.MethodPost,
		path:   "/v1/personas/generate",
		body:   req,
	})
}

// ListPersonasParams filter and page the persona collection.
type ListPersonasParams struct {
	AudienceID string
	ListParams
}

// ListPersonas fetches the persona collection.
func (c *Client) ListPersonas(ctx context.Context, creds Credentials, params ListPersonasParams) (*Response, error) {
	q := params.values()
	if params.AudienceID != "" {
		q.Set("audience_id", params.AudienceID)
	}
	return c.do(ctx, creds, call{
		op:     "personas.list",
		method: http.MethodGet,
		path:   "/v1/personas",
		query:  q,
	})
}

// GetPersona fetches a single persona by ID.
func (c *Client) GetPersona(ctx context.Context, creds Credentials, id string) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "personas.get",
		method: http.MethodGet,
		path:   "/v1/personas/" + url.PathEscape(id),
	})
}

// DeletePersona removes a persona.
func (c *Client) DeletePersona(ctx context.Context, creds Credentials, id string) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "personas.delete",
		method: http.MethodDelete,
		path:   "/v1/personas/" + url.PathEscape(id),
	})
}

// AskPersonaRequest is the body for POST /v1/personas/{id}/ask.
type AskPersonaRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

// AskPersona poses a question to one persona.
func (c *Client) AskPersona(ctx context.Context, creds Credentials, id string, req AskPersonaRequest) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "personas.ask",
		method: http.MethodPost,
		path:   "/v1/personas/" + url.PathEscape(id) + "/ask",
		body:   req,
	})
}
