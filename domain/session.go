// Package domain defines the core domain models for the evaluation backend.
package domain

import "time"

// SessionStatus represents the lifecycle state of a session.
type SessionStatus string

const (
	StatusUploading  SessionStatus = "uploading"
	StatusProcessing SessionStatus = "processing"
	StatusCompleted  SessionStatus = "completed"
	StatusError      SessionStatus = "error"
)

// IsTerminal reports whether the status is a terminal batch outcome.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single turn in a session's conversation.
type ChatMessage struct {
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the durable record tracking one evaluation-and-chat
// conversation. The record is persisted as a whole; ImageBase64 is
// write-once at creation and stripped from every read view.
type Session struct {
	ID                string             `json:"id"`
	Status            SessionStatus      `json:"status"`
	ImageBase64       string             `json:"image_base64,omitempty"`
	EvaluationResults []EvaluationResult `json:"evaluation_results,omitempty"`
	ChatHistory       []ChatMessage      `json:"chat_history"`
	Error             string             `json:"error,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Version           int64              `json:"version"`
}

// View returns a copy of the session safe to return to callers: the
// image payload is never exposed through read operations.
func (s *Session) View() *Session {
	v := *s
	v.ImageBase64 = ""
	v.EvaluationResults = append([]EvaluationResult(nil), s.EvaluationResults...)
	v.ChatHistory = append([]ChatMessage(nil), s.ChatHistory...)
	return &v
}

// HasResults reports whether the evaluation batch has recorded a
// non-empty result set.
func (s *Session) HasResults() bool {
	return len(s.EvaluationResults) > 0
}
