package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"
	"github.com/openai/openai-go/v3/shared/constant"
)

// OpenRouterClient implements Client against any OpenAI-compatible chat
// completion endpoint. Tool invocations and results are translated between
// the block model and the chat tool-call wire shape.
type OpenRouterClient struct {
	client openai.Client
}

// NewOpenRouterClient constructs a client with an API key and optional base URL.
func NewOpenRouterClient(apiKey, baseURL string) *OpenRouterClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenRouterClient{client: openai.NewClient(opts...)}
}

func (c *OpenRouterClient) CreateMessage(ctx context.Context, req Request) (Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(req.Model),
		Temperature: param.NewOpt(req.Temperature),
		MaxTokens:   param.NewOpt(int64(req.MaxTokens)),
	}
	if req.System != "" {
		params.Messages = append(params.Messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		converted, err := encodeChatMessage(m)
		if err != nil {
			return Response{}, err
		}
		params.Messages = append(params.Messages, converted...)
	}
	if len(req.Tools) > 0 {
		for _, def := range req.Tools {
			params.Tools = append(params.Tools, openai.ChatCompletionToolUnionParam{
				OfFunction: &openai.ChatCompletionFunctionToolParam{
					Function: shared.FunctionDefinitionParam{
						Name:        def.Name,
						Description: param.NewOpt(def.Description),
						Parameters:  schemaParameters(def.InputSchema),
					},
				},
			})
		}
		if req.ToolChoiceAuto {
			params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt("auto")}
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, err
	}
	return decodeChatCompletion(resp)
}

// encodeChatMessage flattens one block message into chat-completion messages.
// Tool results become standalone tool-role messages.
func encodeChatMessage(m Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	var out []openai.ChatCompletionMessageParamUnion
	switch m.Role {
	case RoleUser:
		for _, b := range m.Blocks {
			switch b.Type {
			case BlockText:
				out = append(out, openai.UserMessage(b.Text))
			case BlockToolResult:
				out = append(out, openai.ToolMessage(b.Content, b.ToolUseID))
			default:
				return nil, fmt.Errorf("unsupported user block type %q", b.Type)
			}
		}
	case RoleAssistant:
		assistant := openai.ChatCompletionAssistantMessageParam{}
		for _, b := range m.Blocks {
			switch b.Type {
			case BlockText:
				assistant.Content.OfString = param.NewOpt(b.Text)
			case BlockToolUse:
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: b.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      b.Name,
							Arguments: string(b.Input),
						},
						Type: constant.Function("function"),
					},
				})
			default:
				return nil, fmt.Errorf("unsupported assistant block type %q", b.Type)
			}
		}
		out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
	default:
		return nil, fmt.Errorf("unsupported message role %q", m.Role)
	}
	return out, nil
}

func schemaParameters(schema InputSchema) map[string]any {
	props := make(map[string]any, len(schema.Properties))
	for name, p := range schema.Properties {
		entry := map[string]any{"type": p.Type}
		if p.Description != "" {
			entry["description"] = p.Description
		}
		props[name] = entry
	}
	required := schema.Required
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       schema.Type,
		"properties": props,
		"required":   required,
	}
}

func decodeChatCompletion(resp *openai.ChatCompletion) (Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("empty response")
	}
	choice := resp.Choices[0]
	out := Response{StopReason: StopEndTurn}
	if choice.Message.Content != "" {
		out.Blocks = append(out.Blocks, TextBlock(choice.Message.Content))
	}
	for _, call := range choice.Message.ToolCalls {
		if call.Type != "function" {
			continue
		}
		fn := call.AsFunction()
		out.Blocks = append(out.Blocks, ToolUseBlock(fn.ID, fn.Function.Name, json.RawMessage(fn.Function.Arguments)))
	}
	if choice.FinishReason == "tool_calls" || len(out.ToolUses()) > 0 {
		out.StopReason = StopToolUse
	}
	return out, nil
}
