package session

import "testing"

func TestGetHistoryEmpty(t *testing.T) {
	m := NewManager(2)

	if got := m.GetHistory(""); got != "" {
		t.Fatalf("empty session id must yield empty history, got %q", got)
	}
	if got := m.GetHistory("unknown"); got != "" {
		t.Fatalf("unknown session must yield empty history, got %q", got)
	}
}

func TestGetHistoryFormatting(t *testing.T) {
	m := NewManager(2)
	m.AddExchange("s1", "What is MCP?", "A protocol for context.")
	m.AddExchange("s1", "Who created it?", "Anthropic.")

	want := "User: What is MCP?\nAssistant: A protocol for context.\nUser: Who created it?\nAssistant: Anthropic."
	if got := m.GetHistory("s1"); got != want {
		t.Fatalf("unexpected history:\n%q\nwant:\n%q", got, want)
	}
}

func TestAddExchangeEvictsOldest(t *testing.T) {
	m := NewManager(2)
	m.AddExchange("s1", "first", "a1")
	m.AddExchange("s1", "second", "a2")
	m.AddExchange("s1", "third", "a3")

	want := "User: second\nAssistant: a2\nUser: third\nAssistant: a3"
	if got := m.GetHistory("s1"); got != want {
		t.Fatalf("oldest exchange not evicted:\n%q", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager(2)
	m.AddExchange("s1", "q1", "a1")
	m.AddExchange("s2", "q2", "a2")

	if got := m.GetHistory("s1"); got != "User: q1\nAssistant: a1" {
		t.Fatalf("unexpected s1 history %q", got)
	}
	if got := m.GetHistory("s2"); got != "User: q2\nAssistant: a2" {
		t.Fatalf("unexpected s2 history %q", got)
	}
}

func TestAddExchangeIgnoresEmptySessionID(t *testing.T) {
	m := NewManager(2)
	m.AddExchange("", "q", "a")

	if got := m.GetHistory(""); got != "" {
		t.Fatalf("empty session id must not record history, got %q", got)
	}
}

func TestCreateSessionReturnsUniqueIDs(t *testing.T) {
	m := NewManager(2)

	first := m.CreateSession()
	second := m.CreateSession()
	if first == "" || second == "" {
		t.Fatalf("session ids must be non-empty")
	}
	if first == second {
		t.Fatalf("session ids must be unique, both %q", first)
	}
}
