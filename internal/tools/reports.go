// ABOUTME: Report tools: compiling survey or audience findings into documents
// ABOUTME: Backed by the /v1/reports REST routes

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/parasol-research/persona-gateway/internal/backend"
	"github.com/parasol-research/persona-gateway/internal/schema"
)

func reportTools(client *backend.Client) []*Tool {
	h := &reportHandlers{client: client}
	return []*Tool{
		{
			Name:        "create_report",
			Description: "Compile a report from a survey or an audience",
			Schema: schema.Schema{
				Fields: []schema.Field{
					{Name: "survey_id", Type: schema.String, Format: schema.FormatUUID, Description: "Survey to report on"},
					{Name: "audience_id", Type: schema.String, Format: schema.FormatUUID, Description: "Audience to report on"},
					{Name: "title", Type: schema.String, Description: "Optional report title"},
					{Name: "format", Type: schema.String, Enum: []string{"pdf", "markdown"}, Default: []byte(`"pdf"`)},
				},
				Checks: []schema.Check{checkReportSubject},
			},
			Handler: h.create,
		},
		{
			Name:        "get_report",
			Description: "Get a report, including a download link when rendered",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "report_id", Type: schema.String, Required: true, Format: schema.FormatUUID},
			}},
			Handler: h.get,
		},
		{
			Name:        "list_reports",
			Description: "List previously created reports",
			Schema: schema.Schema{Fields: []schema.Field{
				{Name: "limit", Type: schema.Integer, Min: schema.Int(1), Max: schema.Int(100), Default: []byte("20")},
				{Name: "offset", Type: schema.Integer, Min: schema.Int(0), Default: []byte("0")},
			}},
			Handler: h.list,
		},
	}
}

// checkReportSubject enforces that a report is anchored to exactly one of a
// survey or an audience.
func checkReportSubject(args gjson.Result) string {
	survey := args.Get("survey_id").Exists()
	audience := args.Get("audience_id").Exists()
	switch {
	case !survey && !audience:
		return "exactly one of survey_id or audience_id is required"
	case survey && audience:
		return "survey_id: must not be combined with audience_id"
	}
	return ""
}

type reportHandlers struct {
	client *backend.Client
}

type createReportInput struct {
	SurveyID   string `json:"survey_id"`
	AudienceID string `json:"audience_id"`
	Title      string `json:"title"`
	Format     string `json:"format"`
}

func (h *reportHandlers) create(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in createReportInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.CreateReport(ctx, creds, backend.CreateReportRequest{
		SurveyID:   in.SurveyID,
		AudienceID: in.AudienceID,
		Title:      in.Title,
		Format:     in.Format,
	})
}

type reportIDInput struct {
	ReportID string `json:"report_id"`
}

func (h *reportHandlers) get(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in reportIDInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.GetReport(ctx, creds, in.ReportID)
}

func (h *reportHandlers) list(ctx context.Context, creds backend.Credentials, args json.RawMessage) (*backend.Response, error) {
	var in listInput
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return h.client.ListReports(ctx, creds, backend.ListParams{Limit: in.Limit, Offset: in.Offset})
}
