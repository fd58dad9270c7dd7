// ABOUTME: Insight tools: semantic search over saved findings and saving new ones
// ABOUTME: Backed by the /v1/insights REST routes

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/schema"
)

func insightTools(client *backend.Client) []*Tool {
	h := &insightHandlers{client: client}
	return []*Tool{
		{
			Name:        "search_insights",
			Description: "Search saved insights by semantic similarity",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "query", Type: schema.String, Required: true, Description: "Free-text search query"},
				{Name: "limit", Type: schema.Integer, Min: schema.Int(1), Max: schema.Int(50), Default: []byte("10")},
				{Name: "audience_id", Type: schema.String, Format: schema.FormatUUID, Description: "Restrict results to one audience"},
			}},
			Handler: h.search,
		},
		{
			Name:        "save_insight",
			Description: "Save a research finding for later retrieval",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "text", Type: schema.String, Required: true, Description: "The finding to save"},
				{Name: "tags", Type: schema.Array, Items: schema.String, MaxItems: 10, Description: "Labels for filtering"},
				{Name: "source", Type: schema.String, Format: schema.FormatURL, Description: "Where the finding came from"},
			}},
			Handler: h.save,
		},
	}
}

type insightHandlers struct {
	client *backend.Client
}

type searchInsightsInput struct {
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
	AudienceID string `json:"audience_id"`
}

func (h *insightHandlers) search(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in searchInsightsInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.SearchInsights(ctx, creds, backend.SearchInsightsParams{
		Query:      in.Query,
		Limit:      in.Limit,
		AudienceID: in.AudienceID,
	})
}

type saveInsightInput struct {
	Text   string   `json:"text"`
	Tags   []string `json:"tags"`
	Source string   `json:"source"`
}

func (h *insightHandlers) save(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in saveInsightInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.SaveInsight(ctx, creds, backend.SaveInsightRequest{
		Text:   in.Text,
		Tags:   in.Tags,
		Source: in.Source,
	})
}
