package events

import (
	"time"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/tools"
)

// Type represents an emitted event type.
type Type string

const (
	QueryStarted     Type = "QueryStarted"
	ToolCallStarted  Type = "ToolCallStarted"
	ToolCallFinished Type = "ToolCallFinished"
	AnswerReady      Type = "AnswerReady"
	QueryError       Type = "QueryError"
)

// Event is the common envelope for renderer events.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// QueryStartedPayload is emitted when the facade accepts a query.
type QueryStartedPayload struct {
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model"`
}

// ToolCallStartedPayload marks the start of a tool invocation.
type ToolCallStartedPayload struct {
	ToolName string `json:"tool_name"`
	Input    string `json:"input"`
}

// ToolCallFinishedPayload marks the end of a tool invocation.
type ToolCallFinishedPayload struct {
	ToolName   string `json:"tool_name"`
	Preview    string `json:"preview"`
	DurationMs int64  `json:"duration_ms"`
}

// AnswerReadyPayload carries the final answer and its citations.
type AnswerReadyPayload struct {
	Answer  string         `json:"answer"`
	Sources []tools.Source `json:"sources"`
}

// QueryErrorPayload records a query failure.
type QueryErrorPayload struct {
	Message string `json:"message"`
}
