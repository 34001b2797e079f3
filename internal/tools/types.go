package tools

import (
	"context"
	"encoding/json"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/llm"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/store"
)

// Source is a citation produced by a tool: a human-readable label plus an
// optional deep link.
type Source struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Tool is a callable capability exposed to the model. Execute returns text
// for the model; retrieval failures are rendered into that text rather than
// returned as errors, so err is reserved for malformed input.
type Tool interface {
	Definition() llm.ToolDefinition
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// SourceTracker is implemented by tools that record citations during
// execution. The buffer reflects the most recent Execute call only.
type SourceTracker interface {
	LastSources() []Source
	ResetSources()
}

// Store is the vector search surface consumed by the course search tool.
// courseName "" and lessonNumber nil mean unfiltered.
type Store interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) store.SearchResults
	GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) string
}
