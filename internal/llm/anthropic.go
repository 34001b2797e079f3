package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	client sdk.Client
}

// NewAnthropicClient constructs a client for the given API key. An optional
// base URL overrides the default endpoint.
func NewAnthropicClient(apiKey, baseURL string) *AnthropicClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{client: sdk.NewClient(opts...)}
}

func (c *AnthropicClient) CreateMessage(ctx context.Context, req Request) (Response, error) {
	params, err := encodeRequest(req)
	if err != nil {
		return Response{}, err
	}
	msg, err := c.client.Messages.New(ctx, *params)
	if err != nil {
		return Response{}, err
	}
	return decodeMessage(msg)
}

func encodeRequest(req Request) (*sdk.MessageNewParams, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("messages are required")
	}
	params := &sdk.MessageNewParams{
		Model:       sdk.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: sdk.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	for _, m := range req.Messages {
		blocks, err := encodeBlocks(m.Blocks)
		if err != nil {
			return nil, err
		}
		switch m.Role {
		case RoleUser:
			params.Messages = append(params.Messages, sdk.NewUserMessage(blocks...))
		case RoleAssistant:
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(blocks...))
		default:
			return nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	if len(req.Tools) > 0 {
		for _, def := range req.Tools {
			tool := sdk.ToolUnionParamOfTool(sdk.ToolInputSchemaParam{
				Properties: def.InputSchema.Properties,
				Required:   def.InputSchema.Required,
			}, def.Name)
			if tool.OfTool != nil {
				tool.OfTool.Description = sdk.String(def.Description)
			}
			params.Tools = append(params.Tools, tool)
		}
		if req.ToolChoiceAuto {
			params.ToolChoice = sdk.ToolChoiceUnionParam{OfAuto: &sdk.ToolChoiceAutoParam{}}
		}
	}
	return params, nil
}

func encodeBlocks(blocks []Block) ([]sdk.ContentBlockParamUnion, error) {
	out := make([]sdk.ContentBlockParamUnion, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case BlockText:
			out = append(out, sdk.NewTextBlock(b.Text))
		case BlockToolUse:
			var input any
			if len(b.Input) > 0 {
				if err := json.Unmarshal(b.Input, &input); err != nil {
					return nil, fmt.Errorf("tool_use input for %q: %w", b.Name, err)
				}
			}
			out = append(out, sdk.NewToolUseBlock(b.ID, input, b.Name))
		case BlockToolResult:
			out = append(out, sdk.NewToolResultBlock(b.ToolUseID, b.Content, b.IsError))
		default:
			return nil, fmt.Errorf("unsupported block type %q", b.Type)
		}
	}
	return out, nil
}

func decodeMessage(msg *sdk.Message) (Response, error) {
	if msg == nil {
		return Response{}, errors.New("empty response")
	}
	resp := Response{StopReason: string(msg.StopReason)}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if block.Text == "" {
				continue
			}
			resp.Blocks = append(resp.Blocks, TextBlock(block.Text))
		case "tool_use":
			resp.Blocks = append(resp.Blocks, ToolUseBlock(block.ID, block.Name, json.RawMessage(block.Input)))
		}
	}
	return resp, nil
}
