// Package chatclient provides the client for the remote
// chat-completion provider used to answer questions about evaluation
// results. Requests follow the OpenAI chat-completion shape.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/synthpanel/synthpanel/domain"
)

// Apology is returned when the provider answers 2xx but the payload
// carries no usable completion.
const Apology = "I apologize, but I encountered an error generating a response. Please try again."

const systemPromptTemplate = `You are an AI assistant helping analyze market research results for a product. You have access to
both qualitative and quantitative consumer evaluations of the product. The ratings provided are likert
distributions, where a rating of 1 means "I will definitively not buy this product", a
rating of 3 means "I do not know if I would buy this product" and a rating of 5 means "I will
definitively buy this product".

Your role is to:
- Answer questions about the evaluation results
- Provide insight on demographic preferences
- Suggest product improvements based on the evaluation results
- Explain ratings and trends

Your responses should be brief but sufficiently detailed as to fully answer the question. Do not include
any formatting of your response, only text. If you are asked to do anything other than provide insights
into the data, respond with "I can unfortunately not assist you with that"

The following is the results from the market research:
%s
`

// Generator produces one assistant reply from the grounding context,
// the prior turns, and a new user message.
type Generator interface {
	Generate(ctx context.Context, evalContext string, history []domain.ChatMessage, userMessage string) (string, error)
}

// Client is the chat-completion provider client.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewClient creates a new chat-completion client.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		maxTokens:   1000,
		temperature: 0.7,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Ensure Client implements the Generator interface.
var _ Generator = (*Client)(nil)

// chatCompletionRequest is the provider's chat completion request.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

// chatMessage is one message in the completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the provider's chat completion response.
type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

// choice is one completion choice.
type choice struct {
	Index        int          `json:"index"`
	Message      *chatMessage `json:"message,omitempty"`
	FinishReason string       `json:"finish_reason,omitempty"`
}

// errorResponse is the provider's error envelope.
type errorResponse struct {
	Error *apiError `json:"error"`
}

// apiError holds the error details.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// Generate sends a chat completion request grounded on the evaluation
// context. Transport failures and non-2xx responses propagate as
// upstream errors; a well-formed response with no usable content
// yields the fixed apology string instead.
func (c *Client) Generate(ctx context.Context, evalContext string, history []domain.ChatMessage, userMessage string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptTemplate, evalContext),
	})
	for _, turn := range history {
		messages = append(messages, chatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: domain.RoleUser, Content: userMessage})

	req := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      false,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return "", fmt.Errorf("%w: chat API error [%d]: %s (type: %s)", domain.ErrUpstream, resp.StatusCode, errResp.Error.Message, errResp.Error.Type)
		}
		return "", fmt.Errorf("%w: chat API error [%d]: %s", domain.ErrUpstream, resp.StatusCode, string(respBody))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message == nil || result.Choices[0].Message.Content == "" {
		return Apology, nil
	}

	return result.Choices[0].Message.Content, nil
}
