// Package session keeps bounded per-session conversation history used to
// build follow-up context for the model.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type exchange struct {
	userText      string
	assistantText string
}

// Manager stores up to maxHistory recent exchanges per session. Each session
// id is an independent FIFO; unbounded growth is disallowed.
type Manager struct {
	mu         sync.Mutex
	maxHistory int
	sessions   map[string][]exchange
}

// NewManager constructs a Manager bounded to maxHistory exchanges per session.
func NewManager(maxHistory int) *Manager {
	return &Manager{maxHistory: maxHistory, sessions: map[string][]exchange{}}
}

// CreateSession returns a fresh session identifier.
func (m *Manager) CreateSession() string {
	return uuid.NewString()
}

// GetHistory returns a formatted transcript of the session's exchanges,
// oldest first, or "" when the session id is empty or has no prior turns.
func (m *Manager) GetHistory(sessionID string) string {
	if sessionID == "" {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	exchanges := m.sessions[sessionID]
	if len(exchanges) == 0 {
		return ""
	}
	lines := make([]string, 0, len(exchanges)*2)
	for _, ex := range exchanges {
		lines = append(lines, fmt.Sprintf("User: %s", ex.userText))
		lines = append(lines, fmt.Sprintf("Assistant: %s", ex.assistantText))
	}
	return strings.Join(lines, "\n")
}

// AddExchange appends a completed exchange, evicting the oldest when the
// bound is exceeded.
func (m *Manager) AddExchange(sessionID, userText, assistantText string) {
	if sessionID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	exchanges := append(m.sessions[sessionID], exchange{userText: userText, assistantText: assistantText})
	if m.maxHistory > 0 && len(exchanges) > m.maxHistory {
		exchanges = exchanges[len(exchanges)-m.maxHistory:]
	}
	m.sessions[sessionID] = exchanges
}
