package evalclient

import (
	"context"
	"fmt"

	"github.com/synthpanel/synthpanel/domain"
)

// MockEvaluator is a mock implementation of Evaluator for testing and
// local development without a live evaluation provider.
type MockEvaluator struct {
	// FailOccupations lists profile occupations whose evaluation
	// should fail with an upstream error.
	FailOccupations map[string]bool
	// Err, when set, fails every call.
	Err error
}

// NewMockEvaluator creates a mock evaluator that succeeds for every
// profile.
func NewMockEvaluator() *MockEvaluator {
	return &MockEvaluator{FailOccupations: map[string]bool{}}
}

// Ensure MockEvaluator implements the Evaluator interface.
var _ Evaluator = (*MockEvaluator)(nil)

// Evaluate returns a deterministic synthetic result for the profile.
func (m *MockEvaluator) Evaluate(ctx context.Context, imageBase64 string, profile domain.DemographicProfile) (*domain.EvaluationResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.FailOccupations[profile.Occupation] {
		return nil, fmt.Errorf("%w: mock failure for %s", domain.ErrUpstream, profile.Occupation)
	}

	// A mildly positive fixed distribution keeps results stable
	// across runs.
	dist := []float64{0.05, 0.1, 0.25, 0.4, 0.2}
	mean := 0.0
	for i, p := range dist {
		mean += float64(i+1) * p
	}

	return &domain.EvaluationResult{
		Success:       true,
		Profile:       profile,
		Feedback:      fmt.Sprintf("[MOCK] As a %dyo %s from %s, I find this product fairly appealing.", profile.Age, profile.Occupation, profile.Location),
		Distributions: [][]float64{dist},
		MeanRating:    mean,
	}, nil
}
