package actor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthpanel/synthpanel/domain"
	"github.com/synthpanel/synthpanel/tests/helpers"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(helpers.NewTestMemoryStore(t))
}

func TestCreateAndRead(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1hZ2U="))

	got, err := r.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	assert.Empty(t, got.ImageBase64, "read view must not expose the image")
	assert.Nil(t, got.EvaluationResults)
	assert.Empty(t, got.ChatHistory)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCreateValidation(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.Create(ctx, "", "aW1n"), domain.ErrValidation)
	assert.ErrorIs(t, r.Create(ctx, "s1", ""), domain.ErrValidation)
}

func TestCreateResetsExistingSession(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "b2xk"))
	require.NoError(t, r.AppendChatTurn(ctx, "s1", domain.RoleUser, "hello"))
	require.NoError(t, r.Create(ctx, "s1", "bmV3"))

	got, err := r.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, got.Status)
	assert.Empty(t, got.ChatHistory)
}

func TestRecordEvaluation(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))

	results := []domain.EvaluationResult{
		{Success: true, Profile: domain.DefaultPanel[0], Feedback: "nice", MeanRating: 4.1},
		{Success: true, Profile: domain.DefaultPanel[1], Feedback: "meh", MeanRating: 2.5},
	}
	require.NoError(t, r.RecordEvaluation(ctx, "s1", results, domain.StatusCompleted, ""))

	got, err := r.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.Len(t, got.EvaluationResults, 2)
	assert.Equal(t, "nice", got.EvaluationResults[0].Feedback)
	assert.Equal(t, "meh", got.EvaluationResults[1].Feedback)
}

func TestRecordEvaluationMissingSession(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	err := r.RecordEvaluation(ctx, "ghost", nil, domain.StatusCompleted, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.Read(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound, "failed record must leave no session behind")
}

func TestRecordEvaluationRejectsNonTerminalStatus(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))
	err := r.RecordEvaluation(ctx, "s1", nil, domain.StatusProcessing, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecordEvaluationError(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))
	require.NoError(t, r.RecordEvaluation(ctx, "s1", nil, domain.StatusError, "evaluator unreachable"))

	got, err := r.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, got.Status)
	assert.Equal(t, "evaluator unreachable", got.Error)
}

func TestRecordEvaluationLastWriteWins(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))
	first := []domain.EvaluationResult{{Feedback: "first"}}
	second := []domain.EvaluationResult{{Feedback: "second"}}
	require.NoError(t, r.RecordEvaluation(ctx, "s1", first, domain.StatusCompleted, ""))
	require.NoError(t, r.RecordEvaluation(ctx, "s1", second, domain.StatusCompleted, ""))

	got, err := r.Read(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.EvaluationResults, 1)
	assert.Equal(t, "second", got.EvaluationResults[0].Feedback)
}

func TestAppendChatTurnOrdering(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))
	require.NoError(t, r.AppendChatTurn(ctx, "s1", domain.RoleUser, "Hello"))
	require.NoError(t, r.AppendChatTurn(ctx, "s1", domain.RoleAssistant, "Hi"))

	history, err := r.ChatHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "Hello", history[0].Content)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, "Hi", history[1].Content)
	assert.False(t, history[1].Timestamp.Before(history[0].Timestamp))
}

func TestAppendChatTurnValidation(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))
	assert.ErrorIs(t, r.AppendChatTurn(ctx, "s1", "system", "x"), domain.ErrValidation)
	assert.ErrorIs(t, r.AppendChatTurn(ctx, "s1", domain.RoleUser, ""), domain.ErrValidation)
	assert.ErrorIs(t, r.AppendChatTurn(ctx, "ghost", domain.RoleUser, "x"), domain.ErrNotFound)
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := r.AppendChatTurn(ctx, "s1", domain.RoleUser, fmt.Sprintf("msg-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := r.ChatHistory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, n)

	seen := make(map[string]bool, n)
	for _, msg := range history {
		assert.False(t, seen[msg.Content], "duplicate turn %s", msg.Content)
		seen[msg.Content] = true
	}
}

func TestConcurrentAppendAndRecord(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))

	results := []domain.EvaluationResult{{Success: true, Feedback: "ok", MeanRating: 3}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		assert.NoError(t, r.AppendChatTurn(ctx, "s1", domain.RoleUser, "racing"))
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, r.RecordEvaluation(ctx, "s1", results, domain.StatusCompleted, ""))
	}()
	wg.Wait()

	got, err := r.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.Len(t, got.EvaluationResults, 1)
	require.Len(t, got.ChatHistory, 1)
	assert.Equal(t, "racing", got.ChatHistory[0].Content)
}

func TestIndependentSessions(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))
	require.NoError(t, r.Create(ctx, "s2", "aW1n"))

	var wg sync.WaitGroup
	for _, id := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				assert.NoError(t, r.AppendChatTurn(ctx, id, domain.RoleUser, fmt.Sprintf("%s-%d", id, i)))
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"s1", "s2"} {
		history, err := r.ChatHistory(ctx, id)
		require.NoError(t, err)
		assert.Len(t, history, 20)
		for _, msg := range history {
			assert.True(t, strings.HasPrefix(msg.Content, id))
		}
	}
}

func TestEvaluationContext(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	// Missing session and pending session both yield the sentinel.
	assert.Equal(t, domain.NoResultsContext, r.EvaluationContext(ctx, "ghost"))

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))
	assert.Equal(t, domain.NoResultsContext, r.EvaluationContext(ctx, "s1"))

	results := []domain.EvaluationResult{
		{Success: true, Profile: domain.DefaultPanel[0], Feedback: "love it", MeanRating: 4.5},
		{Success: true, Profile: domain.DefaultPanel[1], Feedback: "too pricey", MeanRating: 2.2},
	}
	require.NoError(t, r.RecordEvaluation(ctx, "s1", results, domain.StatusCompleted, ""))

	got := r.EvaluationContext(ctx, "s1")
	assert.Contains(t, got, "Rating: 4.5/5")
	assert.Contains(t, got, "love it")
	assert.Contains(t, got, "Rating: 2.2/5")
	assert.Contains(t, got, "too pricey")
}

func TestImage(t *testing.T) {
	r := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1hZ2U="))
	img, err := r.Image(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "aW1hZ2U=", img)

	_, err = r.Image(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistryOverSQLite(t *testing.T) {
	r := NewRegistry(helpers.NewTestSQLiteStore(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, "s1", "aW1n"))
	require.NoError(t, r.AppendChatTurn(ctx, "s1", domain.RoleUser, "hello"))

	results := []domain.EvaluationResult{
		{Success: true, Profile: domain.DefaultPanel[0], Feedback: "nice", MeanRating: 4},
	}
	require.NoError(t, r.RecordEvaluation(ctx, "s1", results, domain.StatusCompleted, ""))

	got, err := r.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.Len(t, got.ChatHistory, 1)
	require.Len(t, got.EvaluationResults, 1)
	assert.Equal(t, "nice", got.EvaluationResults[0].Feedback)

	require.NoError(t, r.Delete(ctx, "s1"))
	_, err = r.Read(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
