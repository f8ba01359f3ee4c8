// Package actor implements the per-session operation surface. A
// Registry serializes every operation on one session id: each
// operation reads, mutates, and persists the whole record as a single
// atomic step relative to other operations on the same id, so a
// chat-turn append racing the evaluation recorder can never interleave
// field writes or lose an update. Unrelated session ids proceed
// concurrently.
package actor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/synthpanel/synthpanel/domain"
	"github.com/synthpanel/synthpanel/store"
)

// Registry owns the session records in a Store and hands out one
// logical mailbox (a mutex) per session id.
type Registry struct {
	store store.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRegistry creates a registry backed by the given store.
func NewRegistry(s store.Store) *Registry {
	return &Registry{
		store: s,
		locks: make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing operations for a session id,
// creating it on first use. Locks are never evicted; one idle mutex
// per seen id is cheap next to the record itself.
func (r *Registry) lockFor(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[id]
	if !ok {
		l = &sync.Mutex{}
		r.locks[id] = l
	}
	return l
}

// Create persists a fresh session record in the processing state. A
// second create for the same id silently resets the record; callers
// are expected to use fresh ids.
func (r *Registry) Create(ctx context.Context, id, imageBase64 string) error {
	if id == "" {
		return fmt.Errorf("%w: session id is required", domain.ErrValidation)
	}
	if imageBase64 == "" {
		return fmt.Errorf("%w: image is required", domain.ErrValidation)
	}

	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	session := &domain.Session{
		ID:          id,
		Status:      domain.StatusProcessing,
		ImageBase64: imageBase64,
		ChatHistory: []domain.ChatMessage{},
	}
	if err := r.store.Put(ctx, session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Read returns the session record with the image payload stripped.
func (r *Registry) Read(ctx context.Context, id string) (*domain.Session, error) {
	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	session, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return session.View(), nil
}

// Image returns the session's stored image payload. It is the only
// read path that exposes the payload; the evaluation job needs it.
func (r *Registry) Image(ctx context.Context, id string) (string, error) {
	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	session, err := r.get(ctx, id)
	if err != nil {
		return "", err
	}
	return session.ImageBase64, nil
}

// RecordEvaluation sets the session's evaluation results and terminal
// status. Last write wins when called more than once for the same
// session. A missing session is reported as domain.ErrNotFound with no
// side effect.
func (r *Registry) RecordEvaluation(ctx context.Context, id string, results []domain.EvaluationResult, status domain.SessionStatus, errMsg string) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: status must be completed or error, got %q", domain.ErrValidation, status)
	}

	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	session, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	session.EvaluationResults = results
	session.Status = status
	if errMsg != "" {
		session.Error = errMsg
	}

	return r.update(ctx, session)
}

// AppendChatTurn appends one turn to the session's chat history with a
// server-assigned timestamp. The session does not need to be in a
// terminal state; the chat policy for pending sessions lives in the
// orchestration layer.
func (r *Registry) AppendChatTurn(ctx context.Context, id, role, content string) error {
	if role != domain.RoleUser && role != domain.RoleAssistant {
		return fmt.Errorf("%w: role must be user or assistant, got %q", domain.ErrValidation, role)
	}
	if content == "" {
		return fmt.Errorf("%w: content is required", domain.ErrValidation)
	}

	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	session, err := r.get(ctx, id)
	if err != nil {
		return err
	}

	session.ChatHistory = append(session.ChatHistory, domain.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})

	return r.update(ctx, session)
}

// ChatHistory returns the session's ordered chat turns.
func (r *Registry) ChatHistory(ctx context.Context, id string) ([]domain.ChatMessage, error) {
	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	session, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return append([]domain.ChatMessage(nil), session.ChatHistory...), nil
}

// EvaluationContext returns the synthesized grounding context for the
// session's results. It never fails: a missing session or an absent
// result set yields the fixed sentinel.
func (r *Registry) EvaluationContext(ctx context.Context, id string) string {
	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	session, err := r.get(ctx, id)
	if err != nil {
		return domain.NoResultsContext
	}
	return domain.EvaluationContext(session.EvaluationResults)
}

// Delete removes the session record.
func (r *Registry) Delete(ctx context.Context, id string) error {
	l := r.lockFor(id)
	l.Lock()
	defer l.Unlock()

	return r.store.Delete(ctx, id)
}

// get loads the record, mapping absence to ErrNotFound. Callers must
// hold the session's lock.
func (r *Registry) get(ctx context.Context, id string) (*domain.Session, error) {
	session, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

// update persists the mutated record. Callers must hold the session's
// lock, which makes a version conflict impossible in-process.
func (r *Registry) update(ctx context.Context, session *domain.Session) error {
	if err := r.store.Update(ctx, session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}
