package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/llm"
)

type fakeTool struct {
	name    string
	out     string
	err     error
	sources []Source
	inputs  []json.RawMessage
}

func (f *fakeTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        f.name,
		Description: "fake tool for tests",
		InputSchema: llm.InputSchema{Type: "object", Properties: map[string]llm.Property{}},
	}
}

func (f *fakeTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	f.inputs = append(f.inputs, input)
	return f.out, f.err
}

func (f *fakeTool) LastSources() []Source { return f.sources }
func (f *fakeTool) ResetSources()         { f.sources = nil }

func TestRegistryExecuteDispatches(t *testing.T) {
	tool := &fakeTool{name: "alpha", out: "alpha output"}
	reg := NewRegistry(tool)

	out := reg.Execute(context.Background(), "alpha", json.RawMessage(`{"k":"v"}`))
	if out != "alpha output" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(tool.inputs) != 1 || string(tool.inputs[0]) != `{"k":"v"}` {
		t.Fatalf("input not forwarded: %v", tool.inputs)
	}
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	reg := NewRegistry(&fakeTool{name: "alpha"})

	out := reg.Execute(context.Background(), "missing", nil)
	if out != "Tool 'missing' not found" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRegistryDefinitionsPreserveOrder(t *testing.T) {
	reg := NewRegistry(&fakeTool{name: "beta"}, &fakeTool{name: "alpha"})

	defs := reg.Definitions()
	if len(defs) != 2 || defs[0].Name != "beta" || defs[1].Name != "alpha" {
		t.Fatalf("unexpected definition order: %v", defs)
	}
}

func TestRegistryDuplicateNameOverwrites(t *testing.T) {
	reg := NewRegistry(&fakeTool{name: "alpha", out: "old"})
	reg.Register(&fakeTool{name: "alpha", out: "new"})

	if got := reg.Execute(context.Background(), "alpha", nil); got != "new" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if defs := reg.Definitions(); len(defs) != 1 {
		t.Fatalf("duplicate registration must not grow definitions: %v", defs)
	}
}

func TestRegistryCollectAndResetSources(t *testing.T) {
	first := &fakeTool{name: "first", sources: []Source{{Text: "Course A - Lesson 1"}}}
	second := &fakeTool{name: "second", sources: []Source{{Text: "Course B - Lesson 2"}}}
	reg := NewRegistry(first, second)

	sources := reg.CollectSources()
	if len(sources) != 2 || sources[0].Text != "Course A - Lesson 1" || sources[1].Text != "Course B - Lesson 2" {
		t.Fatalf("unexpected sources: %+v", sources)
	}

	reg.ResetSources()
	if got := reg.CollectSources(); len(got) != 0 {
		t.Fatalf("sources survived reset: %+v", got)
	}
}
