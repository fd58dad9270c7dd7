// ABOUTME: Insight endpoints: semantic search and manual capture
// ABOUTME: /v1/insights/search and /v1/insights routes

package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// SearchInsightsParams shape GET /v1/insights/search.
type SearchInsightsParams struct {
	Query      string
	Limit      int
	AudienceID string
}

// SearchInsights searches stored insights semantically. The search itself is
// backend-owned; the gateway only relays the query.
func (c *Client) SearchInsights(ctx context.Context, creds Credentials, params SearchInsightsParams) (*Response, error) {
	q := url.Values{}
	q.Set("query", params.Query)
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.AudienceID != "" {
		q.Set("audience_id", params.AudienceID)
	}
	return c.do(ctx, creds, call{
		op:     "insights.search",
		method: http.MethodGet,
		path:   "/v1/insights/search",
		query:  q,
	})
}

// SaveInsightRequest is the body for POST /v1/insights.
type SaveInsightRequest struct {
	Text   string   `json:"text"`
	Tags   []string `json:"tags,omitempty"`
	Source string   `json:"source,omitempty"`
}

// SaveInsight stores a research insight for later retrieval.
func (c *Client) SaveInsight(ctx context.Context, creds Credentials, req SaveInsightRequest) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "insights.save",
		method: http.MethodPost,
		path:   "/v1/insights",
		body:   req,
	})
}
