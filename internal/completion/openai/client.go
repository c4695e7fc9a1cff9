package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

const systemPrompt = "You are an expert quiz question generator. Reply with a JSON array of multiple choice questions and nothing else."

// Client is a quiz.Completer backed by the chat completions API.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a completer. baseURL may point at any OpenAI compatible
// endpoint; empty values fall back to the public API and GPT-4o. httpClient
// carries the upstream timeout and may be nil.
func NewClient(httpClient *http.Client, apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = baseURL
	}
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4o
	}
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", toUpstreamError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &quiz.UpstreamError{Err: errors.New("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}

func toUpstreamError(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	kind := quiz.UpstreamGeneric
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = quiz.UpstreamAuthorization
	}
	return &quiz.UpstreamError{Kind: kind, StatusCode: status, Err: err}
}
