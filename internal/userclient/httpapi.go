package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient talks to the quiz service on behalf of one signed-in user.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type generateRequest struct {
	TestCode string `json:"testCode"`
}

type generateResponse struct {
	TestInfo  *quiz.TestInfo      `json:"testInfo"`
	Questions []quiz.QuizQuestion `json:"questions"`
}

type submitRequest struct {
	TestCode       string  `json:"testCode"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	TimeTaken      float64 `json:"timeTaken"`
}

// SubmitOutcome is the server's answer to a score submission.
type SubmitOutcome struct {
	Message           string         `json:"message"`
	Result            quiz.TestScore `json:"result"`
	Rank              int            `json:"rank"`
	TotalParticipants int            `json:"totalParticipants"`
	Improved          bool           `json:"improved"`
}

type topicsResponse struct {
	Topics []string `json:"topics"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL, token string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		token:      strings.TrimSpace(token),
		httpClient: httpClient,
	}
}

// GenerateQuiz requests a fresh question set for a registered test code.
func (c *HTTPClient) GenerateQuiz(ctx context.Context, testCode string) (quiz.QuizResult, error) {
	if strings.TrimSpace(testCode) == "" {
		return quiz.QuizResult{}, errors.New("test code is required")
	}

	var payload generateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/quiz/generate", generateRequest{TestCode: testCode}, &payload); err != nil {
		return quiz.QuizResult{}, err
	}
	return quiz.QuizResult{TestInfo: payload.TestInfo, Questions: payload.Questions}, nil
}

func (c *HTTPClient) SubmitScore(ctx context.Context, testCode string, score, totalQuestions int, timeTaken float64) (SubmitOutcome, error) {
	request := submitRequest{
		TestCode:       testCode,
		Score:          score,
		TotalQuestions: totalQuestions,
		TimeTaken:      timeTaken,
	}

	var payload SubmitOutcome
	if err := c.doJSON(ctx, http.MethodPost, "/api/quiz/scores", request, &payload); err != nil {
		return SubmitOutcome{}, err
	}
	return payload, nil
}

func (c *HTTPClient) GetLeaderboard(ctx context.Context, testCode string) (quiz.Leaderboard, error) {
	if strings.TrimSpace(testCode) == "" {
		return quiz.Leaderboard{}, errors.New("test code is required")
	}

	var payload quiz.Leaderboard
	if err := c.doJSON(ctx, http.MethodGet, "/api/quiz/leaderboard/"+url.PathEscape(testCode), nil, &payload); err != nil {
		return quiz.Leaderboard{}, err
	}
	return payload, nil
}

func (c *HTTPClient) GetUserScores(ctx context.Context) ([]quiz.UserScore, error) {
	var payload []quiz.UserScore
	if err := c.doJSON(ctx, http.MethodGet, "/api/quiz/scores", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) GetTopics(ctx context.Context, subject string) ([]string, error) {
	var payload topicsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/quiz/topics/"+url.PathEscape(subject), nil, &payload); err != nil {
		return nil, err
	}
	return payload.Topics, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	fullURL := c.baseURL + path

	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
