package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Air-cyber/quiz-backend/internal/quiz"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newTestClient(t *testing.T, rt http.RoundTripper) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), &http.Client{Transport: rt}, "https://gemini.test/", "test-key", "")
	require.NoError(t, err)
	return client
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestCompleteSendsPromptAndKey(t *testing.T) {
	var (
		seenKey    string
		seenPath   string
		seenPrompt string
	)

	client := newTestClient(t, roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		seenKey = r.Header.Get("x-goog-api-key")
		seenPath = r.URL.Path

		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		require.NotEmpty(t, req.Contents[0].Parts)
		seenPrompt = req.Contents[0].Parts[0].Text
		return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"[]"}]}}]}`), nil
	}))

	text, err := client.Complete(context.Background(), "make a quiz")
	require.NoError(t, err)
	assert.Equal(t, "[]", text)
	assert.Equal(t, "test-key", seenKey)
	assert.True(t, strings.HasSuffix(seenPath, "/models/"+DefaultModel+":generateContent"), "path %q", seenPath)
	assert.Equal(t, "make a quiz", seenPrompt)
}

func TestCompleteMapsRejectedKeyToAuthorization(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newTestClient(t, roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(status, fmt.Sprintf(`{"error":{"code":%d,"message":"API key not valid","status":"PERMISSION_DENIED"}}`, status)), nil
		}))

		_, err := client.Complete(context.Background(), "p")
		assert.ErrorIs(t, err, quiz.ErrUpstreamAuth, "status %d", status)
	}
}

func TestCompletePropagatesNonOKStatus(t *testing.T) {
	client := newTestClient(t, roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, "bad gateway"), nil
	}))

	_, err := client.Complete(context.Background(), "p")
	require.ErrorIs(t, err, quiz.ErrUpstream)
	assert.NotErrorIs(t, err, quiz.ErrUpstreamAuth)

	var upstream *quiz.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
}

func TestCompleteTransportError(t *testing.T) {
	client := newTestClient(t, roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection reset")
	}))

	_, err := client.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, quiz.ErrUpstream)
}

func TestCompleteMissingCandidateText(t *testing.T) {
	for _, body := range []string{`{"candidates":[]}`, `{"candidates":[{"content":{"parts":[]}}]}`, "not-json"} {
		client := newTestClient(t, roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		}))

		_, err := client.Complete(context.Background(), "p")
		assert.ErrorIs(t, err, quiz.ErrUpstream, "body %q", body)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), nil, "", " ", "")
	assert.Error(t, err)
}
