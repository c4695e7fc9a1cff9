package userclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestDoJSONReturnsServiceUnavailable(t *testing.T) {
	client := NewHTTPClient("http://example.test", "token", &http.Client{
		Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("dial error")
		}),
	})

	err := client.doJSON(context.Background(), http.MethodGet, "/healthz", nil, nil)
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestDoJSONReturnsAPIErrorMessageFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "test code not found"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "token", server.Client())
	err := client.doJSON(context.Background(), http.MethodGet, "/anything", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "test code not found", apiErr.Message)
}

func TestSubmitScoreSendsBearerAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quiz/scores", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		var body submitRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, submitRequest{TestCode: "MATH7", Score: 3, TotalQuestions: 4, TimeTaken: 12.5}, body)

		_, _ = w.Write([]byte(`{"message":"Test score saved successfully","result":{"score":3,"totalQuestions":4},"rank":2,"totalParticipants":5,"improved":true}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, " secret-token ", server.Client())
	outcome, err := client.SubmitScore(context.Background(), "MATH7", 3, 4, 12.5)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Rank)
	assert.Equal(t, 5, outcome.TotalParticipants)
	assert.True(t, outcome.Improved)
}

func TestGetLeaderboardEscapesTestCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/quiz/leaderboard/A%2FB", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"testInfo":{"testCode":"A/B"},"leaderboard":[]}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "token", server.Client())
	board, err := client.GetLeaderboard(context.Background(), "A/B")
	require.NoError(t, err)
	assert.Equal(t, "A/B", board.TestInfo.TestCode)
	assert.Empty(t, board.Entries)

	_, err = client.GetLeaderboard(context.Background(), " ")
	assert.Error(t, err)
}
