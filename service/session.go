package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/synthpanel/synthpanel/domain"
	"github.com/synthpanel/synthpanel/policy"
)

// PleaseWaitMessage is returned for chat requests issued before the
// evaluation batch has recorded results.
const PleaseWaitMessage = "Please wait for the evaluation to complete before chatting."

// CreateSession creates a session for the submitted image and starts
// the evaluation batch in the background, detached from the request's
// lifetime. The returned id is immediately readable; the session stays
// in processing until the batch records its outcome.
func (s *Service) CreateSession(ctx context.Context, imageBase64 string, panel []domain.DemographicProfile) (string, error) {
	id := uuid.New().String()

	if err := s.sessions.Create(ctx, id, imageBase64); err != nil {
		return "", err
	}

	if len(panel) == 0 {
		panel = domain.DefaultPanel
	}

	go s.runEvaluation(id, imageBase64, panel)

	return id, nil
}

// runEvaluation fans the image out to every panel profile at once,
// collects per-profile outcomes, and records the batch result against
// the session exactly once. A single profile's failure drops that
// profile from the result set; the batch only reports error when it
// could not run at all.
func (s *Service) runEvaluation(id, imageBase64 string, panel []domain.DemographicProfile) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.BatchTimeout)
	defer cancel()

	if s.evaluator == nil {
		s.recordBatch(ctx, id, nil, domain.StatusError, "no evaluation provider configured")
		return
	}

	collected := make([]*domain.EvaluationResult, len(panel))

	g, gctx := errgroup.WithContext(ctx)
	for i, profile := range panel {
		g.Go(func() error {
			result, err := s.evaluator.Evaluate(gctx, imageBase64, profile)
			if err != nil {
				// Dropped from the result set; siblings keep running.
				log.Printf("WARN: evaluation failed for profile %q (session %s): %v", profile.Occupation, id, err)
				return nil
			}
			collected[i] = result
			return nil
		})
	}
	_ = g.Wait()

	// Compact in submission order so the recorded set is stable
	// regardless of completion order.
	results := make([]domain.EvaluationResult, 0, len(panel))
	for _, r := range collected {
		if r != nil {
			results = append(results, *r)
		}
	}

	log.Printf("INFO: evaluation batch for session %s finished: %d/%d profiles", id, len(results), len(panel))
	s.recordBatch(ctx, id, results, domain.StatusCompleted, "")
}

// recordBatch records the batch outcome. A session that disappeared
// before the batch finished is logged, never fatal: the job outlives
// any client connection and has nobody left to report to.
func (s *Service) recordBatch(ctx context.Context, id string, results []domain.EvaluationResult, status domain.SessionStatus, errMsg string) {
	if err := s.sessions.RecordEvaluation(ctx, id, results, status, errMsg); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Printf("WARN: session %s vanished before batch results could be recorded", id)
			return
		}
		log.Printf("ERROR: failed to record batch results for session %s: %v", id, err)
	}
}

// Chat handles one chat turn. The user message is always recorded,
// including before results exist; the generator is only invoked once
// the evaluation batch has recorded a result set. A generation failure
// leaves the user turn in place and appends nothing else.
func (s *Service) Chat(ctx context.Context, id, message string) (string, error) {
	session, err := s.sessions.Read(ctx, id)
	if err != nil {
		return "", err
	}

	if s.policy != nil {
		decision, err := s.policy.Evaluate(ctx, map[string]interface{}{
			"message":     message,
			"status":      string(session.Status),
			"history_len": len(session.ChatHistory),
		})
		if err != nil {
			return "", fmt.Errorf("chat policy evaluation failed: %w", err)
		}
		if decision == policy.DecisionBlock {
			return "", fmt.Errorf("%w: message rejected by chat policy", domain.ErrValidation)
		}
	}

	// Prior history, before this turn's user message is appended.
	history := session.ChatHistory

	if err := s.sessions.AppendChatTurn(ctx, id, domain.RoleUser, message); err != nil {
		return "", err
	}

	if !session.HasResults() {
		return PleaseWaitMessage, nil
	}

	evalContext := domain.EvaluationContext(session.EvaluationResults)

	reply, err := s.generator.Generate(ctx, evalContext, history, message)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	if err := s.sessions.AppendChatTurn(ctx, id, domain.RoleAssistant, reply); err != nil {
		return "", err
	}

	return reply, nil
}

// Session returns the session record without its image payload.
func (s *Service) Session(ctx context.Context, id string) (*domain.Session, error) {
	return s.sessions.Read(ctx, id)
}

// History returns the session's ordered chat turns.
func (s *Service) History(ctx context.Context, id string) ([]domain.ChatMessage, error) {
	return s.sessions.ChatHistory(ctx, id)
}

// EvaluationContext returns the synthesized grounding context for the
// session, or the fixed sentinel when results are absent.
func (s *Service) EvaluationContext(ctx context.Context, id string) string {
	return s.sessions.EvaluationContext(ctx, id)
}
