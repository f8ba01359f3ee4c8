package chatclient

import (
	"context"
	"fmt"

	"github.com/synthpanel/synthpanel/domain"
)

// MockGenerator is a mock implementation of Generator for testing and
// local development without a live chat provider.
type MockGenerator struct {
	// Err, when set, fails every call.
	Err error
	// Calls records the inputs of every Generate invocation.
	Calls []MockCall
}

// MockCall captures one Generate invocation.
type MockCall struct {
	EvalContext string
	HistoryLen  int
	UserMessage string
}

// NewMockGenerator creates a new mock chat generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Ensure MockGenerator implements the Generator interface.
var _ Generator = (*MockGenerator)(nil)

// Generate returns a deterministic reply echoing the user message.
func (m *MockGenerator) Generate(ctx context.Context, evalContext string, history []domain.ChatMessage, userMessage string) (string, error) {
	m.Calls = append(m.Calls, MockCall{
		EvalContext: evalContext,
		HistoryLen:  len(history),
		UserMessage: userMessage,
	})
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("[MOCK] Received your message: %q.", truncate(userMessage, 100)), nil
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
