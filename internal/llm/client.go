package llm

import (
	"context"
	"encoding/json"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Stop reasons reported by a model response.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

// Block types within a message.
const (
	BlockText       = "text"
	BlockToolUse    = "tool_use"
	BlockToolResult = "tool_result"
)

// Block is a single content block inside a message. The meaningful fields
// depend on Type.
type Block struct {
	Type string

	// BlockText
	Text string

	// BlockToolUse
	ID    string
	Name  string
	Input json.RawMessage

	// BlockToolResult
	ToolUseID string
	Content   string
	IsError   bool
}

// Message is a role plus an ordered sequence of content blocks.
type Message struct {
	Role   string
	Blocks []Block
}

// TextBlock builds a text content block.
func TextBlock(text string) Block {
	return Block{Type: BlockText, Text: text}
}

// ToolUseBlock builds a tool invocation block.
func ToolUseBlock(id, name string, input json.RawMessage) Block {
	return Block{Type: BlockToolUse, ID: id, Name: name, Input: input}
}

// ToolResultBlock builds a tool result block matched to an invocation id.
func ToolResultBlock(toolUseID, content string, isError bool) Block {
	return Block{Type: BlockToolResult, ToolUseID: toolUseID, Content: content, IsError: isError}
}

// UserMessage wraps blocks in a user-role message.
func UserMessage(blocks ...Block) Message {
	return Message{Role: RoleUser, Blocks: blocks}
}

// AssistantMessage wraps blocks in an assistant-role message.
func AssistantMessage(blocks ...Block) Message {
	return Message{Role: RoleAssistant, Blocks: blocks}
}

// Property describes one parameter in a tool input schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// InputSchema is the JSON-schema-like parameter contract of a tool.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// ToolDefinition declares a callable tool to the model. Immutable once
// constructed; one per tool.
type ToolDefinition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"input_schema"`
}

// Request is a single Messages-API call. Tools must be omitted entirely when
// the caller supplies none; ToolChoiceAuto is only meaningful alongside Tools.
type Request struct {
	Model          string
	System         string
	Messages       []Message
	Temperature    float64
	MaxTokens      int
	Tools          []ToolDefinition
	ToolChoiceAuto bool
}

// Response is a model response: ordered content blocks plus a stop reason.
type Response struct {
	Blocks     []Block
	StopReason string
}

// Text returns the concatenated text blocks of the response.
func (r Response) Text() string {
	var out string
	for _, b := range r.Blocks {
		if b.Type == BlockText {
			if out != "" {
				out += "\n"
			}
			out += b.Text
		}
	}
	return out
}

// ToolUses returns the tool invocation blocks of the response in order.
func (r Response) ToolUses() []Block {
	var uses []Block
	for _, b := range r.Blocks {
		if b.Type == BlockToolUse {
			uses = append(uses, b)
		}
	}
	return uses
}

// Client is a language-model client.
type Client interface {
	CreateMessage(ctx context.Context, req Request) (Response, error)
}
