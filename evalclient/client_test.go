package evalclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthpanel/synthpanel/domain"
)

func TestEvaluateSuccess(t *testing.T) {
	profile := domain.DefaultPanel[0]

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req evaluationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "aW1n", req.Image)
		assert.Equal(t, profile.Occupation, req.Profile.Occupation)

		json.NewEncoder(w).Encode(domain.EvaluationResult{
			Success:       true,
			Profile:       req.Profile,
			Feedback:      "looks great",
			Distributions: [][]float64{{0.1, 0.1, 0.2, 0.3, 0.3}},
			MeanRating:    3.6,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	result, err := c.Evaluate(context.Background(), "aW1n", profile)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "looks great", result.Feedback)
	assert.InDelta(t, 3.6, result.MeanRating, 1e-9)
	require.Len(t, result.Distributions, 1)
}

func TestEvaluateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	_, err := c.Evaluate(context.Background(), "aW1n", domain.DefaultPanel[0])
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "503")
}

func TestEvaluateUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := c.Evaluate(context.Background(), "aW1n", domain.DefaultPanel[0])
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestMockEvaluator(t *testing.T) {
	m := NewMockEvaluator()
	m.FailOccupations["teacher"] = true

	ok, err := m.Evaluate(context.Background(), "aW1n", domain.DefaultPanel[0])
	require.NoError(t, err)
	assert.True(t, ok.Success)
	assert.NotEmpty(t, ok.Feedback)
	assert.Greater(t, ok.MeanRating, 0.0)

	_, err = m.Evaluate(context.Background(), "aW1n", domain.DefaultPanel[1])
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
