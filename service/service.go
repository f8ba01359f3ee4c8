// Package service implements the orchestration layer: session
// creation, the out-of-band evaluation fan-out, and chat turns. It
// composes the session actor, the provider clients, and the chat
// policy; all session state lives behind the actor.
package service

import (
	"github.com/synthpanel/synthpanel/actor"
	"github.com/synthpanel/synthpanel/chatclient"
	"github.com/synthpanel/synthpanel/config"
	"github.com/synthpanel/synthpanel/evalclient"
	"github.com/synthpanel/synthpanel/policy"
)

// Service orchestrates sessions, evaluation batches, and chat turns.
type Service struct {
	sessions  *actor.Registry
	evaluator evalclient.Evaluator
	generator chatclient.Generator
	policy    *policy.Engine
	config    *config.Config
}

// New creates a new service.
func New(sessions *actor.Registry, evaluator evalclient.Evaluator, generator chatclient.Generator, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		sessions:  sessions,
		evaluator: evaluator,
		generator: generator,
		policy:    policyEngine,
		config:    cfg,
	}
}
