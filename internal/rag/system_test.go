package rag

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/agent"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/llm"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/session"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/store"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/tools"
)

type scriptedClient struct {
	reqs  []llm.Request
	resps []llm.Response
	err   error
}

func (c *scriptedClient) CreateMessage(ctx context.Context, req llm.Request) (llm.Response, error) {
	c.reqs = append(c.reqs, req)
	if c.err != nil {
		return llm.Response{}, c.err
	}
	idx := len(c.reqs) - 1
	if idx >= len(c.resps) {
		return llm.Response{}, errors.New("scripted client exhausted")
	}
	return c.resps[idx], nil
}

func seededStore() *store.MemoryStore {
	s := store.NewMemoryStore(5)
	s.AddCourse("MCP: Build Rich-Context AI Apps", "https://example.com/courses/mcp")
	s.AddLesson("MCP: Build Rich-Context AI Apps", 1, "https://example.com/courses/mcp/lesson1")
	lesson := 1
	s.AddChunk("MCP: Build Rich-Context AI Apps", &lesson,
		"MCP is the Model Context Protocol, an open standard for connecting AI applications to tools.")
	return s
}

func toolUseResponse(id, query string) llm.Response {
	input, _ := json.Marshal(map[string]string{"query": query})
	return llm.Response{
		Blocks:     []llm.Block{llm.ToolUseBlock(id, "search_course_content", input)},
		StopReason: llm.StopToolUse,
	}
}

func textResponse(text string) llm.Response {
	return llm.Response{Blocks: []llm.Block{llm.TextBlock(text)}, StopReason: llm.StopEndTurn}
}

func newSystem(client llm.Client, maxHistory int) (*System, *tools.Registry) {
	registry := tools.NewRegistry(tools.NewCourseSearchTool(seededStore()))
	generator := agent.NewGenerator(client, "test-model", nil, nil)
	sessions := session.NewManager(maxHistory)
	return New(generator, registry, sessions, "test-model", nil, nil), registry
}

func TestQueryWithRetrievalReturnsSources(t *testing.T) {
	client := &scriptedClient{resps: []llm.Response{
		toolUseResponse("toolu_1", "Model Context Protocol"),
		textResponse("MCP is an open standard for tool connectivity."),
	}}
	system, registry := newSystem(client, 2)

	answer, sources, err := system.Query(context.Background(), "What is MCP?", "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "MCP is an open standard for tool connectivity." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if len(sources) != 1 {
		t.Fatalf("expected one source, got %+v", sources)
	}
	if sources[0].Text != "MCP: Build Rich-Context AI Apps - Lesson 1" {
		t.Fatalf("unexpected source label %q", sources[0].Text)
	}
	if sources[0].URL != "https://example.com/courses/mcp/lesson1" {
		t.Fatalf("unexpected source url %q", sources[0].URL)
	}
	if got := registry.CollectSources(); len(got) != 0 {
		t.Fatalf("sources must be reset after the query, got %+v", got)
	}
}

func TestQueryWrapsQuestionInPrompt(t *testing.T) {
	client := &scriptedClient{resps: []llm.Response{textResponse("answer")}}
	system, _ := newSystem(client, 2)

	if _, _, err := system.Query(context.Background(), "What is MCP?", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := client.reqs[0].Messages[0].Blocks[0].Text
	if first != "Answer this question about course materials: What is MCP?" {
		t.Fatalf("unexpected prompt %q", first)
	}
}

func TestQueryRecordsHistoryForFollowUps(t *testing.T) {
	client := &scriptedClient{resps: []llm.Response{
		textResponse("First answer."),
		textResponse("Second answer."),
	}}
	system, _ := newSystem(client, 2)

	if _, _, err := system.Query(context.Background(), "What is MCP?", "s1"); err != nil {
		t.Fatalf("first query: %v", err)
	}
	if _, _, err := system.Query(context.Background(), "Tell me more", "s1"); err != nil {
		t.Fatalf("second query: %v", err)
	}

	system2 := client.reqs[1].System
	if !strings.Contains(system2, "Previous conversation:") {
		t.Fatalf("history section missing from follow-up system prompt:\n%s", system2)
	}
	if !strings.Contains(system2, "User: What is MCP?") || !strings.Contains(system2, "Assistant: First answer.") {
		t.Fatalf("history must record the raw question and answer:\n%s", system2)
	}
	if strings.Contains(system2, "Answer this question about course materials: What is MCP?") {
		t.Fatalf("history must not record the wrapped prompt:\n%s", system2)
	}
}

func TestQueryWithoutSessionSkipsHistory(t *testing.T) {
	client := &scriptedClient{resps: []llm.Response{
		textResponse("first"),
		textResponse("second"),
	}}
	system, _ := newSystem(client, 2)

	if _, _, err := system.Query(context.Background(), "one-off question", ""); err != nil {
		t.Fatalf("first query: %v", err)
	}
	if _, _, err := system.Query(context.Background(), "another one-off", ""); err != nil {
		t.Fatalf("second query: %v", err)
	}
	if strings.Contains(client.reqs[1].System, "Previous conversation:") {
		t.Fatalf("sessionless queries must not accumulate history:\n%s", client.reqs[1].System)
	}
}

func TestQueryPropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("model unavailable")
	client := &scriptedClient{err: wantErr}
	system, _ := newSystem(client, 2)

	_, _, err := system.Query(context.Background(), "q", "s1")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected generator error to propagate, got %v", err)
	}
	if got := system.Sessions().GetHistory("s1"); got != "" {
		t.Fatalf("failed query must not record history, got %q", got)
	}
}

func TestQueryWithMockClient(t *testing.T) {
	system, _ := newSystem(llm.NewMockClient(), 2)

	answer, sources, err := system.Query(context.Background(), "What is MCP?", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer == "" {
		t.Fatalf("expected a non-empty answer")
	}
	if len(sources) != 1 {
		t.Fatalf("expected the mock search round to produce one source, got %+v", sources)
	}
}
