package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/events"
)

// StdoutRenderer writes query lifecycle events as plain text.
type StdoutRenderer struct {
	w       io.Writer
	mu      sync.Mutex
	verbose bool
	quiet   bool
}

// NewStdoutRenderer creates a plain-text renderer.
func NewStdoutRenderer(w io.Writer, verbose, quiet bool) *StdoutRenderer {
	return &StdoutRenderer{w: w, verbose: verbose, quiet: quiet}
}

func (r *StdoutRenderer) Emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case events.QueryStarted:
		if payload, ok := event.Payload.(events.QueryStartedPayload); ok {
			if r.quiet || !r.verbose {
				return
			}
			fmt.Fprintf(r.w, "query start | model: %s", payload.Model)
			if payload.SessionID != "" {
				fmt.Fprintf(r.w, " | session: %s", payload.SessionID)
			}
			fmt.Fprintln(r.w)
		}
	case events.ToolCallStarted:
		if payload, ok := event.Payload.(events.ToolCallStartedPayload); ok {
			if r.quiet || !r.verbose {
				return
			}
			fmt.Fprintf(r.w, "tool: %s start\n", payload.ToolName)
			fmt.Fprintf(r.w, "input: %s\n", payload.Input)
		}
	case events.ToolCallFinished:
		if payload, ok := event.Payload.(events.ToolCallFinishedPayload); ok {
			if r.quiet {
				return
			}
			fmt.Fprintf(r.w, "tool: %s ok (%dms)\n", payload.ToolName, payload.DurationMs)
			if r.verbose && payload.Preview != "" {
				fmt.Fprintln(r.w, "preview:")
				for _, line := range strings.Split(payload.Preview, "\n") {
					fmt.Fprintf(r.w, "  %s\n", line)
				}
			}
		}
	case events.AnswerReady:
		if payload, ok := event.Payload.(events.AnswerReadyPayload); ok {
			fmt.Fprintln(r.w, payload.Answer)
			if r.quiet || len(payload.Sources) == 0 {
				return
			}
			fmt.Fprintln(r.w, "\nSources:")
			for _, src := range payload.Sources {
				if src.URL != "" {
					fmt.Fprintf(r.w, "- %s (%s)\n", src.Text, src.URL)
				} else {
					fmt.Fprintf(r.w, "- %s\n", src.Text)
				}
			}
		}
	case events.QueryError:
		if payload, ok := event.Payload.(events.QueryErrorPayload); ok {
			fmt.Fprintf(r.w, "\nError: %s\n", payload.Message)
		}
	}
}

func (r *StdoutRenderer) Close() error { return nil }
