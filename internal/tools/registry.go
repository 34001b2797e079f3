package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/llm"
)

// Registry stores available tools keyed by definition name. Registering a
// duplicate name overwrites the previous tool silently.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry builds a registry from tools, preserving registration order.
func NewRegistry(items ...Tool) *Registry {
	reg := &Registry{tools: map[string]Tool{}}
	for _, item := range items {
		reg.Register(item)
	}
	return reg
}

// Register adds a tool keyed by its definition's name.
func (r *Registry) Register(tool Tool) {
	name := tool.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Definitions returns all registered definitions in registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches by name. Unknown names and malformed input come back as
// error text the model can recover from, never as a crash.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) string {
	tool, ok := r.tools[name]
	if !ok {
		return fmt.Sprintf("Tool '%s' not found", name)
	}
	out, err := tool.Execute(ctx, input)
	if err != nil {
		return fmt.Sprintf("Tool '%s' failed: %v", name, err)
	}
	return out
}

// CollectSources returns the union of last sources across registered tools,
// in registration order.
func (r *Registry) CollectSources() []Source {
	var sources []Source
	for _, name := range r.order {
		if tracker, ok := r.tools[name].(SourceTracker); ok {
			sources = append(sources, tracker.LastSources()...)
		}
	}
	return sources
}

// ResetSources clears every tool's source buffer. The orchestrator calls this
// after reading sources so state never leaks across queries.
func (r *Registry) ResetSources() {
	for _, name := range r.order {
		if tracker, ok := r.tools[name].(SourceTracker); ok {
			tracker.ResetSources()
		}
	}
}
