package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

const DefaultModel = "gemini-2.0-flash"

// Client is a quiz.Completer backed by the Gemini generateContent API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini completer. httpClient carries the upstream
// timeout; an empty baseURL or model falls back to the public API and
// DefaultModel.
func NewClient(ctx context.Context, httpClient *http.Client, baseURL, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if strings.TrimSpace(baseURL) != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: model}, nil
}

// Complete returns the text of the first candidate. Rejected credentials
// (401/403) are reported as an authorization UpstreamError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", toUpstreamError(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &quiz.UpstreamError{Err: errors.New("invalid response from Gemini API")}
	}
	return text, nil
}

func toUpstreamError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &quiz.UpstreamError{Err: err}
	}

	kind := quiz.UpstreamGeneric
	if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
		kind = quiz.UpstreamAuthorization
	}
	return &quiz.UpstreamError{Kind: kind, StatusCode: apiErr.Code, Err: err}
}
