// ABOUTME: Survey tools: running panels of questions and reading results
// ABOUTME: Backed by the /v1/surveys REST routes

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/schema"
)

func surveyTools(client *backend.Client) []*Tool {
	h := &surveyHandlers{client: client}
	return []*Tool{
		{
			Name:        "run_survey",
			Description: "Run a multi-question survey against an audience",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "audience_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
				{Name: "questions", Type: schema.Array, Required: true, Items: schema.String, MinItems: 1, MaxItems: 25, Description: "Survey questions in order"},
				{Name: "title", Type: schema.String, Description: "Optional survey title"},
			}},
			Handler: h.run,
		},
		{
			Name:        "get_survey",
			Description: "Get a survey with its results once complete",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "survey_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
			}},
			Handler: h.get,
		},
		{
			Name:        "list_surveys",
			Description: "List surveys, optionally filtered by status",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "status", Type: schema.String, Enum: []string{"pending", "running", "complete", "failed"}, Description: "Only surveys in this state"},
				{Name: "limit", Type: schema.Integer, Min: schema.Int(1), Max: schema.Int(100), Default: []byte("20")},
				{Name: "offset", Type: schema.Integer, Min: schema.Int(0), Default: []byte("0")},
			}},
			Handler: h.list,
		},
	}
}

type surveyHandlers struct {
	client *backend.Client
}

type runSurveyInput struct {
	AudienceID string   `json:"audience_id"`
	Questions  []string `json:"questions"`
	Title      string   `json:"title"`
}

func (h *surveyHandlers) run(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in runSurveyInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.RunSurvey(ctx, creds, backend.RunSurveyRequest{
		AudienceID: in.AudienceID,
		Questions:  in.Questions,
		Title:      in.Title,
	})
}

type surveyIDInput struct {
	SurveyID string `json:"survey_id"`
}

func (h *surveyHandlers) get(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in surveyIDInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.GetSurvey(ctx, creds, in.SurveyID)
}

type listSurveysInput struct {
	Status string `json:"status"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (h *surveyHandlers) list(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in listSurveysInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.ListSurveys(ctx, creds, backend.ListSurveysParams{
		Status:     in.Status,
		ListParams: backend.ListParams{Limit: in.Limit, Offset: in.Offset},
	})
}
