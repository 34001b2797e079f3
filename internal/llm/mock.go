package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockClient is a deterministic client for tests and demos. Its first call
// requests a course-content search; the second answers from the results.
type MockClient struct {
	mu    sync.Mutex
	calls int
}

// NewMockClient returns a simple scripted mock.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) CreateMessage(ctx context.Context, req Request) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.calls == 1 && len(req.Tools) > 0 {
		args, _ := json.Marshal(map[string]any{"query": "Model Context Protocol"})
		return Response{
			Blocks:     []Block{ToolUseBlock("toolu_mock_1", "search_course_content", args)},
			StopReason: StopToolUse,
		}, nil
	}
	return Response{
		Blocks:     []Block{TextBlock("Mock answer grounded in the retrieved course content.")},
		StopReason: StopEndTurn,
	}, nil
}
