package agent

import (
	"context"
	"errors"
	"time"

	"github.com/ramihermes/starting-ragchatbot-codebase/internal/events"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/llm"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/render"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/tools"
	"github.com/ramihermes/starting-ragchatbot-codebase/internal/util"

	"go.uber.org/zap"
)

// ErrToolManagerRequired reports that the model requested tool use but the
// caller supplied no registry. This is caller misuse, not a runtime condition
// to recover from.
var ErrToolManagerRequired = errors.New("model requested tool use but no tool registry was provided")

// Sampling parameters are fixed, not per-call overrides: answers should be
// deterministic and bounded.
const (
	temperature = 0
	maxTokens   = 800
)

// Generator drives the exchange with the model. Tool use is confined to a
// single round: after tool results are returned, the follow-up call carries
// no tools, so the loop always terminates after at most two model calls.
type Generator struct {
	client   llm.Client
	model    string
	renderer render.Renderer
	logger   *zap.Logger
}

// NewGenerator constructs a Generator. renderer may be nil.
func NewGenerator(client llm.Client, model string, renderer render.Renderer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, model: model, renderer: renderer, logger: logger}
}

// Generate answers a query, optionally grounded by tool retrieval. history is
// a formatted prior-conversation transcript ("" for none). Tool definitions
// are advertised on the first call only when non-empty; registry dispatches
// requested invocations and may be nil when defs is empty.
func (g *Generator) Generate(ctx context.Context, query, history string, defs []llm.ToolDefinition, registry *tools.Registry) (string, error) {
	system := systemPrompt()
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	messages := []llm.Message{llm.UserMessage(llm.TextBlock(query))}

	req := llm.Request{
		Model:       g.model,
		System:      system,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	if len(defs) > 0 {
		req.Tools = defs
		req.ToolChoiceAuto = true
	}

	resp, err := g.client.CreateMessage(ctx, req)
	if err != nil {
		g.logger.Error("model request failed", zap.Error(err))
		return "", err
	}

	if resp.StopReason != llm.StopToolUse {
		return resp.Text(), nil
	}
	if registry == nil {
		return "", ErrToolManagerRequired
	}
	return g.handleToolUse(ctx, system, messages, resp, registry)
}

// handleToolUse executes every requested invocation in order, appends the
// request and result messages to the transcript, and issues the second call
// with no tools.
func (g *Generator) handleToolUse(ctx context.Context, system string, messages []llm.Message, resp llm.Response, registry *tools.Registry) (string, error) {
	messages = append(messages, llm.Message{Role: llm.RoleAssistant, Blocks: resp.Blocks})

	var resultBlocks []llm.Block
	for _, use := range resp.ToolUses() {
		start := time.Now()
		g.emit(events.Event{Type: events.ToolCallStarted, Timestamp: start, Payload: events.ToolCallStartedPayload{
			ToolName: use.Name,
			Input:    util.RedactSecrets(string(use.Input)),
		}})

		out := registry.Execute(ctx, use.Name, use.Input)

		g.emit(events.Event{Type: events.ToolCallFinished, Timestamp: time.Now(), Payload: events.ToolCallFinishedPayload{
			ToolName:   use.Name,
			Preview:    util.Preview(out, 6, 600),
			DurationMs: time.Since(start).Milliseconds(),
		}})
		g.logger.Debug("tool executed", zap.String("tool", use.Name), zap.Duration("elapsed", time.Since(start)))

		resultBlocks = append(resultBlocks, llm.ToolResultBlock(use.ID, out, false))
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Blocks: resultBlocks})

	final, err := g.client.CreateMessage(ctx, llm.Request{
		Model:       g.model,
		System:      system,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		g.logger.Error("follow-up model request failed", zap.Error(err))
		return "", err
	}
	return final.Text(), nil
}

func (g *Generator) emit(event events.Event) {
	if g.renderer != nil {
		g.renderer.Emit(event)
	}
}
