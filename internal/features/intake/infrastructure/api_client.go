package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"devcraft-studio/backend/internal/features/intake/domain"
)

// APIError is a non-2xx answer of the intake API.
type APIError struct {
	Status  int
	Message string
	Details domain.ValidationErrors
}

func (e *APIError) Error() string {
	return fmt.Sprintf("intake api returned %d: %s", e.Status, e.Message)
}

type errorBody struct {
	Error   string                  `json:"error"`
	Details domain.ValidationErrors `json:"details"`
}

// APIClient talks to a running intake server. It implements wizard.Enricher
// through the suggestions endpoint and wizard.Gateway through the project
// request endpoint, so a terminal wizard behaves like the web form.
type APIClient struct {
	client *resty.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(60 * time.Second).
			SetHeader("Accept", "application/json"),
	}
}

// FetchSuggestions calls POST /api/ai/suggestions.
func (c *APIClient) FetchSuggestions(ctx context.Context, projectType domain.ProjectType, features []string) ([]domain.Suggestion, error) {
	if features == nil {
		features = []string{}
	}
	body := map[string]any{"projectType": projectType, "selectedFeatures": features}
	var out struct {
		Suggestions []domain.Suggestion `json:"suggestions"`
	}
	if err := c.post(ctx, "/api/ai/suggestions", body, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// Submit calls POST /api/project-requests. A 400 answer is returned as
// domain.ValidationErrors.
func (c *APIClient) Submit(ctx context.Context, req domain.ProjectRequest) (*domain.Submission, error) {
	var sub domain.Submission
	err := c.post(ctx, "/api/project-requests", req, &sub)
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Details) > 0 {
		return nil, apiErr.Details
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (c *APIClient) post(ctx context.Context, path string, in, out any) error {
	var failure errorBody
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		ExpectContentType("application/json").
		SetBody(in).
		SetResult(out).
		SetError(&failure).
		Post(path)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		if failure.Error == "" {
			failure.Error = http.StatusText(resp.StatusCode())
		}
		return &APIError{Status: resp.StatusCode(), Message: failure.Error, Details: failure.Details}
	}
	return nil
}
