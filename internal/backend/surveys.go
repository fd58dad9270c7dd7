// ABOUTME: Survey endpoints: running, retrieval, and listing
// ABOUTME: /v1/surveys and /v1/surveys/{id} routes

package backend

import (
	"context"
	"net/http"
	"net/url"
)

// RunSurveyRequest is the body for POST /v1/surveys.
type RunSurveyRequest struct {
	AudienceID string   `json:"audience_id"`
	Questions  []string `json:"questions"`
	Title      string   `json:"title,omitempty"`
}

// RunSurvey starts a survey against an audience. Survey execution is
// asynchronous on the backend; the response carries the survey ID and status.
func (c *Client) RunSurvey(ctx context.Context, creds Credentials, req RunSurveyRequest) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "surveys.run",
		method: http.MethodPost,
		path:   "/v1/surveys",
		body:   req,
	})
}

// GetSurvey fetches a survey with its results if complete.
func (c *Client) GetSurvey(ctx context.Context, creds Credentials, id string) (*Response, error) {
	return c.do(ctx, creds, call{
		op:     "surveys.get",
		method: http.MethodGet,
		path:   "/v1/surveys/" + url.PathEscape(id),
	})
}

// ListSurveysParams filter and page the survey collection.
type ListSurveysParams struct {
	Status string
	ListParams
}

// ListSurveys fetches the survey collection.
func (c *Client) ListSurveys(ctx context.Context, creds Credentials, params ListSurveysParams) (*Response, error) {
	q := params.values()
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	return c.do(ctx, creds, call{
		op:     "surveys.list",
		method: http.MethodGet,
		path:   "/v1/surveys",
		query:  q,
	})
}
