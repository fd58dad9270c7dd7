// ABOUTME: Report endpoints: creation, retrieval, and listing
// ABOUTME: /v1/reports and /v1/reports/{id} routes

package backend

import (
	"context"
	"net/http"
	"net/url"
)

// CreateReportRequest is the body for POST /v1/reports. Exactly one of
// SurveyID or AudienceID names the source; the tool layer enforces that
// before the request is built.
type CreateReportRequest struct {
	SurveyID   string `json:"survey_id,omitempty"`
	AudienceID string `json:"audience_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Format     string `json:"format,omitempty"`
}

// CreateReport asks the backend to synthesize a report from survey or
// audience data. Report rendering (including PDF) is backend-owned.
func (c *Client) CreateReport(ctx context.Context, creds Credentials, req CreateReportRequest) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "reports.create",
		method: http.MethodPost,
		path:   "/v1/reports",
		body:   req,
	})
}

// GetReport fetches a report by ID.
func (c *Client) GetReport(ctx context.Context, creds Credentials, id string) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "reports.get",
		method: http.MethodGet,
		path:   "/v1/reports/" + url.PathEscape(id),
	})
}

// ListReports fetches the report collection.
func (c *Client) ListReports(ctx context.Context, creds Credentials, params ListParams) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "reports.list",
		method: http.MethodGet,
		path:   "/v1/reports",
		query:  params.values(),
	})
}
