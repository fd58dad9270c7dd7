// ABOUTME: Account tools: profile lookup and usage reporting
// ABOUTME: Backed by GET /v1/account and GET /v1/account/usage

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/schema"
)

func accountTools(client *backend.Client) []*Tool {
	h := &accountHandlers{client: client}
	return []*Tool{
		{
			Name:        "get_account",
			Description: "Get the account profile, plan, and limits for the presented API key",
			Schema:      schema.Schema{},
			Handler:     h.getAccount,
		},
		{
			Name:        "get_usage",
			Description: "Get API usage totals for an aggregation period",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "period", Type: schema.String, Enum: []string{"day", "week", "month"}, Default: []byte(`"month"`), Description: "Aggregation window"},
			}},
			Handler: h.getUsage,
		},
	}
}

type accountHandlers struct {
	client *backend.Client
}

func (h *accountHandlers) getAccount(ctx context.Context, creds backend.Credentials, _ json.RawMessage) (*backend.Response, error) {
	return h.client.GetAccount(ctx, creds)
}

type getUsageInput struct {
	Period string `json:"period"`
}

func (h *accountHandlers) getUsage(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in getUsageInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.GetUsage(ctx, creds, in.Period)
}
