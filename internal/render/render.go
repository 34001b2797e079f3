package render

import "github.com/ramihermes/starting-ragchatbot-codebase/internal/events"

// Renderer emits events to an output target.
type Renderer interface {
	Emit(events.Event)
	Close() error
}
