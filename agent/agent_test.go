package agent

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/provider"
	"github.com/hupe1980/agentfleet/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "test-model"

func newTestAdapter() *provider.MockAdapter {
	return provider.NewMockAdapter(testModel)
}

// recordingObserver collects events safely across goroutines.
type recordingObserver struct {
	mu     sync.Mutex
	events []core.Event
}

func (r *recordingObserver) OnEvent(ev core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingObserver) Events() []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]core.Event, len(r.events))
	copy(events, r.events)
	return events
}

func newAddTool() tool.Tool {
	return tool.NewFunctionTool(
		"add",
		"Add two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)
}

func TestNewAgentDefaults(t *testing.T) {
	a := New("Writer", newTestAdapter())

	assert.Equal(t, "Writer", a.Name())
	assert.Equal(t, "Agent Writer", a.Description())
	assert.Equal(t, "You are a helpful assistant.", a.SystemPrompt())
	assert.Nil(t, a.LastResponse())
	assert.Empty(t, a.Messages())
}

func TestCompleteTurnSuccess(t *testing.T) {
	adapter := newTestAdapter()
	adapter.AddResponse("hello", "hi there")

	a := New("Writer", adapter, func(o *Options) { o.SystemPrompt = "You are Writer." })

	resp, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("hello"), provider.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content)
	assert.GreaterOrEqual(t, resp.InputTokens, 0)
	assert.GreaterOrEqual(t, resp.OutputTokens, 0)
	assert.Same(t, resp, a.LastResponse())

	msgs := a.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are Writer.", msgs[0].Text())
	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Equal(t, "hello", msgs[1].Text())
	assert.Equal(t, core.RoleAssistant, msgs[2].Role)
	assert.Equal(t, "hi there", msgs[2].Text())
}

func TestCompleteTurnNoModel(t *testing.T) {
	a := New("Writer", newTestAdapter())

	_, err := a.CompleteTurn(context.Background(), "", core.NewUserMessage("hello"), provider.DefaultGenerationParams())
	require.Error(t, err)

	var invalidReq *core.InvalidRequestError
	assert.True(t, errors.As(err, &invalidReq))
	assert.Empty(t, a.Messages())
}

func TestCompleteTurnUnavailableModel(t *testing.T) {
	a := New("Writer", newTestAdapter())

	_, err := a.CompleteTurn(context.Background(), "unknown-model", core.NewUserMessage("hello"), provider.DefaultGenerationParams())
	require.Error(t, err)

	var unavailable *core.UnavailableModelError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "unknown-model", unavailable.Model)
	assert.Equal(t, "mock", unavailable.Provider)
	assert.Contains(t, err.Error(), "unknown-model")
}

func TestCompleteTurnUnavailableModelDeterministic(t *testing.T) {
	a := New("Writer", newTestAdapter())

	for i := 0; i < 3; i++ {
		_, err := a.CompleteTurn(context.Background(), "unknown-model", core.NewUserMessage("hello"), provider.DefaultGenerationParams())
		var unavailable *core.UnavailableModelError
		require.True(t, errors.As(err, &unavailable))
	}
}

func TestCompleteTurnAccumulatesTranscript(t *testing.T) {
	adapter := newTestAdapter()
	a := New("Writer", adapter)

	_, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("first"), provider.DefaultGenerationParams())
	require.NoError(t, err)
	_, err = a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("second"), provider.DefaultGenerationParams())
	require.NoError(t, err)

	msgs := a.Messages()
	require.Len(t, msgs, 5)
	// System prompt is pinned exactly once.
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, core.RoleUser, msgs[3].Role)
	assert.Equal(t, "second", msgs[3].Text())
}

func TestClearResetsTranscript(t *testing.T) {
	a := New("Writer", newTestAdapter())

	_, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("hello"), provider.DefaultGenerationParams())
	require.NoError(t, err)

	a.Clear()
	assert.Empty(t, a.Messages())
	assert.Nil(t, a.LastResponse())

	// Next turn pins the system prompt again.
	_, err = a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("again"), provider.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, core.RoleSystem, a.Messages()[0].Role)
}

func TestJSONModeInjectsInstruction(t *testing.T) {
	type answer struct {
		Answer string `json:"answer"`
	}

	adapter := newTestAdapter()
	adapter.Enqueue(&provider.Result{Text: `{"answer":"42"}`})

	a := New("Oracle", adapter, WithOutputStruct(answer{}))

	resp, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("what is the answer?"), provider.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"answer": "42"}, resp.Content)

	msgs := a.Messages()
	// The outgoing user message was extended with the format instruction.
	assert.Contains(t, msgs[1].Text(), "what is the answer?")
	assert.Contains(t, msgs[1].Text(), "a JSON object with fields: answer (string)")
}

func TestJSONModeSkipsInjectionWhenPromptMentionsFormat(t *testing.T) {
	type answer struct {
		Answer string `json:"answer"`
	}

	adapter := newTestAdapter()
	adapter.Enqueue(&provider.Result{Text: `{"answer":"42"}`})

	a := New("Oracle", adapter, WithOutputStruct(answer{}), func(o *Options) {
		o.SystemPrompt = "Reply with a JSON object holding an answer field."
	})

	_, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("what is the answer?"), provider.DefaultGenerationParams())
	require.NoError(t, err)

	assert.Equal(t, "what is the answer?", a.Messages()[1].Text())
}

func TestJSONModeMalformedResponse(t *testing.T) {
	type answer struct {
		Answer string `json:"answer"`
	}

	adapter := newTestAdapter()
	adapter.Enqueue(&provider.Result{Text: "definitely not json"})

	a := New("Oracle", adapter, WithOutputStruct(answer{}))

	_, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("what is the answer?"), provider.DefaultGenerationParams())
	require.Error(t, err)

	var malformed *core.MalformedResponseError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, testModel, malformed.Model)
	assert.Equal(t, "definitely not json", malformed.Raw)

	// The raw assistant reply was appended before the parse attempt.
	msgs := a.Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, core.RoleAssistant, last.Role)
	assert.Equal(t, "definitely not json", last.Text())
}

func TestToolRoundTrip(t *testing.T) {
	adapter := newTestAdapter()
	callID := adapter.EnqueueToolCall("add", `{"a":2,"b":3}`)
	adapter.Enqueue(&provider.Result{Text: "The sum is 5."})

	a := New("Calculator", adapter, func(o *Options) {
		o.Tools = []tool.Tool{newAddTool()}
	})

	resp, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("add 2 and 3"), provider.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, "The sum is 5.", resp.Content)

	// Exactly one follow-up completion call.
	assert.Len(t, adapter.Calls(), 2)

	msgs := a.Messages()
	require.Len(t, msgs, 5)

	directive := msgs[2]
	assert.Equal(t, core.RoleAssistant, directive.Role)
	require.Len(t, directive.ToolCalls, 1)
	assert.Equal(t, "add", directive.ToolCalls[0].Name)
	assert.Nil(t, directive.Content)

	toolMsg := msgs[3]
	assert.Equal(t, core.RoleTool, toolMsg.Role)
	assert.Equal(t, callID, toolMsg.ToolCallID)

	var value float64
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Text()), &value))
	assert.Equal(t, 5.0, value)
}

func TestToolRoundTripUnknownTool(t *testing.T) {
	adapter := newTestAdapter()
	adapter.EnqueueToolCall("subtract", `{"a":5,"b":3}`)
	adapter.Enqueue(&provider.Result{Text: "I could not use that tool."})

	a := New("Calculator", adapter, func(o *Options) {
		o.Tools = []tool.Tool{newAddTool()}
	})

	resp, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("subtract 3 from 5"), provider.DefaultGenerationParams())
	require.NoError(t, err)
	require.NotNil(t, resp)

	msgs := a.Messages()
	toolMsg := msgs[3]
	assert.Equal(t, core.RoleTool, toolMsg.Role)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(toolMsg.Text()), &payload))
	require.Contains(t, payload, "error")
	assert.Contains(t, payload["error"], "subtract")
}

func TestToolRoundTripAccumulatesTokens(t *testing.T) {
	adapter := newTestAdapter()
	adapter.Enqueue(&provider.Result{
		ToolCalls:    []core.ToolCall{{ID: "call-1", Name: "add", Arguments: []byte(`{"a":2,"b":3}`)}},
		InputTokens:  10,
		OutputTokens: 2,
	})
	adapter.Enqueue(&provider.Result{Text: "The sum is 5.", InputTokens: 20, OutputTokens: 5})

	a := New("Calculator", adapter, func(o *Options) {
		o.Tools = []tool.Tool{newAddTool()}
	})

	resp, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("add 2 and 3"), provider.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, 30, resp.InputTokens)
	assert.Equal(t, 7, resp.OutputTokens)
}

func TestCompleteTurnEmitsEvents(t *testing.T) {
	adapter := newTestAdapter()
	adapter.EnqueueToolCall("add", `{"a":2,"b":3}`)
	adapter.Enqueue(&provider.Result{Text: "The sum is 5."})

	obs := &recordingObserver{}
	a := New("Calculator", adapter, func(o *Options) {
		o.Tools = []tool.Tool{newAddTool()}
		o.Observer = obs
	})

	_, err := a.CompleteTurn(context.Background(), testModel, core.NewUserMessage("add 2 and 3"), provider.DefaultGenerationParams())
	require.NoError(t, err)

	events := obs.Events()
	require.Len(t, events, 3)
	assert.Equal(t, core.EventTurnStart, events[0].Type)
	assert.Equal(t, core.EventToolInvoked, events[1].Type)
	assert.Equal(t, "add", events[1].Tool)
	assert.Equal(t, core.EventTurnComplete, events[2].Type)
	assert.Equal(t, events[0].TurnID, events[2].TurnID)
	assert.NotEmpty(t, events[0].TurnID)
}

func TestContributeCompletesOneTurn(t *testing.T) {
	adapter := newTestAdapter()
	adapter.AddResponse("hello", "hi")

	a := New("Writer", adapter)

	resp, err := a.Contribute(context.Background(), testModel, core.NewUserMessage("hello"), provider.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Content)
	assert.Len(t, adapter.Calls(), 1)
}

func TestFirstAdapterReturnsBoundAdapter(t *testing.T) {
	adapter := newTestAdapter()
	a := New("Writer", adapter)
	assert.Same(t, adapter, a.FirstAdapter())
}
