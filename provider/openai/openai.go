// Package openai provides a provider.Adapter implementation using the OpenAI
// Chat Completions API (including function/tool calling). It adapts
// agentfleet's normalized transcript into the SDK's message format and back.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/provider"
	"github.com/openai/openai-go"
)

// Adapter wraps the OpenAI Chat Completions API behind the generic
// provider.Adapter interface.
type Adapter struct {
	client *openai.Client
}

// New creates a new OpenAI adapter using the official client, configured from
// the environment.
func New() *Adapter {
	client := openai.NewClient()
	return NewFromClient(&client)
}

// NewFromClient creates a new OpenAI adapter from an existing client.
func NewFromClient(client *openai.Client) *Adapter {
	return &Adapter{client: client}
}

// ListModels implements provider.Adapter.
func (a *Adapter) ListModels(ctx context.Context) ([]string, error) {
	page, err := a.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	models := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, m.ID)
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
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(messages),
		Model:               openai.ChatModel(model),
		Temperature:         openai.Float(opts.Params.Temperature),
		MaxCompletionTokens: openai.Int(opts.Params.MaxTokens),
	}
	if len(opts.Tools) > 0 {
		params.Tools = buildTools(opts.Tools)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}

	msg := resp.Choices[0].Message
	res := &provider.Result{
		Text:         msg.Content,
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
	}
	for _, tc := range msg.ToolCalls {
		res.ToolCalls = append(res.ToolCalls, core.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	return res, nil
}

// buildMessages converts transcript messages into OpenAI chat messages.
func buildMessages(messages []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, m := range messages {
		text := m.Text()

		switch m.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(text))
		case core.RoleUser:
			out = append(out, openai.UserMessage(text))
		case core.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(text))
				continue
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: buildToolCalls(m.ToolCalls),
				},
			})
		case core.RoleTool:
			out = append(out, openai.ToolMessage(text, m.ToolCallID))
		default:
			// Treat unknown roles as user
			if text != "" {
				out = append(out, openai.UserMessage(text))
			}
		}
	}

	return out
}

// buildToolCalls converts normalized tool calls into OpenAI formatted tool calls.
func buildToolCalls(calls []core.ToolCall) []openai.ChatCompletionMessageToolCallParam {
	out := make([]openai.ChatCompletionMessageToolCallParam, len(calls))
	for i, tc := range calls {
		out[i] = openai.ChatCompletionMessageToolCallParam{
			ID:   tc.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Name,
				Arguments: string(tc.Arguments),
			},
		}
	}
	return out
}

// buildTools converts agentfleet tool definitions to OpenAI tool format.
func buildTools(tools []provider.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(tools))
	for i, tdef := range tools {
		out[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Function.Name,
				Description: openai.String(tdef.Function.Description),
				Parameters:  tdef.Function.Parameters,
			},
		}
	}
	return out
}

// Info returns metadata describing this OpenAI adapter implementation.
func (a *Adapter) Info() provider.Info {
	return provider.Info{
		Provider:      "openai",
		SupportsTools: true,
	}
}
