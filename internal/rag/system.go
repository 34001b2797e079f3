// Package rag composes history retrieval, prompt construction, the agent
// loop, and source collection into the top-level query entry point.
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/agent"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/events"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/render"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/session"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/tools"

	"go.uber.org/zap"
)

// QueryResult captures one answered query for JSON output.
type QueryResult struct {
	Answer     string         `json:"answer"`
	Sources    []tools.Source `json:"sources"`
	SessionID  string         `json:"session_id,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// System is the orchestrator facade.
type System struct {
	generator *agent.Generator
	registry  *tools.Registry
	sessions  *session.Manager
	model     string
	renderer  render.Renderer
	logger    *zap.Logger
}

// New constructs a System. renderer may be nil.
func New(generator *agent.Generator, registry *tools.Registry, sessions *session.Manager, model string, renderer render.Renderer, logger *zap.Logger) *System {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &System{
		generator: generator,
		registry:  registry,
		sessions:  sessions,
		model:     model,
		renderer:  renderer,
		logger:    logger,
	}
}

// Sessions exposes the session manager so callers can create session ids.
func (s *System) Sessions() *session.Manager {
	return s.sessions
}

// Query answers userText, returning the response and the citations gathered
// during retrieval. sessionID may be "" for a one-off query. Generator
// failures propagate unchanged; there is no fallback text.
func (s *System) Query(ctx context.Context, userText, sessionID string) (string, []tools.Source, error) {
	started := time.Now()
	s.emit(events.Event{Type: events.QueryStarted, Timestamp: started, Payload: events.QueryStartedPayload{
		SessionID: sessionID,
		Model:     s.model,
	}})

	history := s.sessions.GetHistory(sessionID)
	prompt := fmt.Sprintf("Answer this question about course materials: %s", userText)

	answer, err := s.generator.Generate(ctx, prompt, history, s.registry.Definitions(), s.registry)
	if err != nil {
		s.emit(events.Event{Type: events.QueryError, Timestamp: time.Now(), Payload: events.QueryErrorPayload{Message: err.Error()}})
		return "", nil, err
	}

	sources := s.registry.CollectSources()
	s.registry.ResetSources()

	if sessionID != "" {
		s.sessions.AddExchange(sessionID, userText, answer)
	}

	s.logger.Debug("query answered",
		zap.String("session", sessionID),
		zap.Int("sources", len(sources)),
		zap.Duration("elapsed", time.Since(started)))
	s.emit(events.Event{Type: events.AnswerReady, Timestamp: time.Now(), Payload: events.AnswerReadyPayload{
		Answer:  answer,
		Sources: sources,
	}})
	return answer, sources, nil
}

func (s *System) emit(event events.Event) {
	if s.renderer != nil {
		s.renderer.Emit(event)
	}
}
