// Package anthropic provides a provider.Adapter implementation for the
// Anthropic Claude Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/provider"
)

// Options configures the Anthropic adapter. Extend via functional options to
// preserve stability.
type Options struct {
	APIKey string
}

// Adapter wraps the Anthropic Messages API behind the generic
// provider.Adapter interface.
type Adapter struct {
	client *anthropic.Client
}

// New creates a new Anthropic adapter using the official client.
func New(optFns ...func(o *Options)) *Adapter {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Adapter{client: &client}
}

// NewFromClient creates a new Anthropic adapter from an existing client.
func NewFromClient(client *anthropic.Client) *Adapter {
	return &Adapter{client: client}
}

// ListModels implements provider.Adapter.
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	page, err := a.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	models := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, string(m.ID))
	}

	return models, nil
}

// Complete implements provider.Adapter for a single non-streaming turn.
func (a *Adapter) Complete(
	ctx context.Context,
	model string,
	messages []core.Message,
	opts provider.CompleteOptions,
) (*provider.Result, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		Messages:    buildMessages(messages),
		MaxTokens:   opts.Params.MaxTokens,
		Temperature: anthropic.Float(opts.Params.Temperature),
	}

	if systemBlocks := extractSystemMessage(messages); len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	if len(opts.Tools) > 0 {
		params.Tools = buildTools(opts.Tools)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	res := &provider.Result{
		InputTokens:  int(resp.Usage.InputTokens),
		OutputTokens: int(resp.Usage.OutputTokens),
	}

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			res.Text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := json.RawMessage("{}")
			if toolBlock.Input != nil {
				if b, err := json.Marshal(toolBlock.Input); err == nil {
					args = b
				}
			}
			res.ToolCalls = append(res.ToolCalls, core.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			})
		}
	}

	return res, nil
}

// buildMessages converts transcript messages to Anthropic message format.
// System messages are handled separately; tool results become user-role
// tool_result blocks as the Messages API expects.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam

	for _, m := range messages {
		text := m.Text()

		switch m.Role {
		case core.RoleSystem:
			continue
		case core.RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		case core.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(text))
			}
			for _, tc := range m.ToolCalls {
				var input any
				if len(tc.Arguments) > 0 {
					if err := json.Unmarshal(tc.Arguments, &input); err != nil {
						input = string(tc.Arguments) // fallback to string
					}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case core.RoleTool:
			out = append(out, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.ToolCallID, text, false)))
		default:
			// Treat unknown roles as user
			if text != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
			}
		}
	}

	return out
}

// extractSystemMessage extracts system message blocks.
func extractSystemMessage(messages []core.Message) []anthropic.TextBlockParam {
	var blocks []anthropic.TextBlockParam
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			if text := m.Text(); text != "" {
				blocks = append(blocks, anthropic.TextBlockParam{Text: text})
			}
		}
	}
	return blocks
}

// buildTools converts agentfleet tool definitions to Anthropic tool format.
func buildTools(tools []provider.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(tools))

	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if params := tdef.Function.Parameters; params != nil {
			if properties, exists := params["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := params["required"]; exists {
				switch req := required.(type) {
				case []string:
					inputSchema.Required = req
				case []any:
					for _, r := range req {
						if s, ok := r.(string); ok {
							inputSchema.Required = append(inputSchema.Required, s)
						}
					}
				}
			}
		}

		out[i] = anthropic.ToolUnionParamOfTool(inputSchema, tdef.Function.Name)
	}

	return out
}

// Info returns metadata describing this Anthropic adapter implementation.
func (a *Adapter) Info() provider.Info {
	return provider.Info{
		Provider:      "anthropic",
		SupportsTools: true,
	}
}
