// ABOUTME: Audience tools: creation, listing, retrieval, deletion, panel questioning
// ABOUTME: Backed by the /v1/audiences REST routes

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/schema"
)

func audienceTools(client *backend.Client) []*Tool {
	h := &audienceHandlers{client: client}
	return []*Tool{
		{
			Name:        "create_audience",
			Description: "Create a target audience definition for persona and survey work",
			Schema: schema.Schema{
				Fields: []schema.Field{
					{Name: "name", Type: schema.String, Required: true, Description: "Audience name"},
					{Name: "description", Type: schema.String, Description: "What characterizes this audience"},
					{Name: "region", Type: schema.String, Description: "Geographic focus, free-form"},
					{Name: "age_min", Type: schema.Integer, Min: schema.Int(13), Max: schema.Int(120), Description: "Minimum age, inclusive"},
					{Name: "age_max", Type: schema.Integer, Min: schema.Int(13), Max: schema.Int(120), Description: "Maximum age, inclusive"},
					{Name: "interests", Type: schema.Array, Items: schema.String, MaxItems: 20, Description: "Interest keywords"},
				},
				Checks: []schema.Check{checkAgeOrder},
			},
			Handler: h.create,
		},
		{
			Name:        "list_audiences",
			Description: "List defined audiences",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "limit", Type: schema.Integer, Min: schema.Int(1), Max: schema.Int(100), Default: []byte("20")},
				{Name: "offset", Type: schema.Integer, Min: schema.Int(0), Default: []byte("0")},
			}},
			Handler: h.list,
		},
		{
			Name:        "get_audience",
			Description: "Get one audience definition",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "audience_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
			}},
			Handler: h.get,
		},
		{
			Name:        "delete_audience",
			Description: "Delete an audience permanently",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "audience_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
			}},
			Handler: h.delete,
		},
		{
			Name:        "ask_audience",
			Description: "Ask a question to a sampled panel drawn from an audience",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "audience_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
				{Name: "question", Type: schema.String, Required: true, Description: "The question to pose to the panel"},
				{Name: "sample_size", Type: schema.Integer, Min: schema.Int(1), Max: schema.Int(100), Default: []byte("25"), Description: "Panel size to sample"},
			}},
			Handler: h.ask,
		},
	}
}

// checkAgeOrder rejects inverted age ranges. Both bounds already passed their
// own range checks (or failed independently) by the time this runs.
func checkAgeOrder(args gjson.Result) string {
	lo, hi := args.Get("age_min"), args.Get("age_max")
	if lo.Exists() && hi.Exists() && lo.Type == gjson.Number && hi.Type == gjson.Number && lo.Num > hi.Num {
		return "age_min: must not exceed age_max"
	}
	return ""
}

type audienceHandlers struct {
	client *backend.Client
}

type createAudienceInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	AgeMin      int      `json:"age_min"`
	AgeMax      int      `json:"age_max"`
	Interests   []string `json:"interests"`
}

func (h *audienceHandlers) create(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in createAudienceInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.CreateAudience(ctx, creds, backend.CreateAudienceRequest{
		Name:        in.Name,
		Description: in.Description,
		Region:      in.Region,
		AgeMin:      in.AgeMin,
		AgeMax:      in.AgeMax,
		Interests:   in.Interests,
	})
}

type listInput struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (h *audienceHandlers) list(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in listInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.ListAudiences(ctx, creds, backend.ListParams{Limit: in.Limit, Offset: in.Offset})
}

type audienceIDInput struct {
	AudienceID string `json:"audience_id"`
}

func (h *audienceHandlers) get(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in audienceIDInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.GetAudience(ctx, creds, in.AudienceID)
}

func (h *audienceHandlers) delete(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in audienceIDInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.DeleteAudience(ctx, creds, in.AudienceID)
}

type askAudienceInput struct {
	AudienceID string `json:"audience_id"`
	Question   string `json:"question"`
	SampleSize int    `json:"sample_size"`
}

func (h *audienceHandlers) ask(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in askAudienceInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.AskAudience(ctx, creds, in.AudienceID, backend.AskAudienceRequest{
		Question:   in.Question,
		SampleSize: in.SampleSize,
	})
}
