package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentfleet/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// GenerationParams carries the sampling parameters forwarded to the backend.
type GenerationParams struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
}

// DefaultGenerationParams returns the baseline sampling configuration.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{Temperature: 0.0, MaxTokens: 1024}
}

// CompleteOptions captures the normalized per-turn input beyond the transcript.
type CompleteOptions struct {
	Params GenerationParams
	Tools  []ToolDefinition
}

// Result is the raw outcome of one backend completion. ToolCalls is non-empty
// when the model requested tool invocations instead of a final answer.
type Result struct {
	Text         string
	ToolCalls    []core.ToolCall
	InputTokens  int
	OutputTokens int
}

// Info contains metadata about an adapter implementation.
type Info struct {
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Adapter is the minimal interface required by agents and fleets to drive
// generation against one backend.
type Adapter interface {
	// ListModels returns the identifiers of the models the backend knows.
	// Repeated calls with unchanged adapter state return the same set.
	ListModels(ctx context.Context) ([]string, error)

	// Complete sends the transcript as one turn and returns the normalized result.
	Complete(ctx context.Context, model string, messages []core.Message, opts CompleteOptions) (*Result, error)

	// Info returns information about the adapter implementation.
	Info() Info
}

// MockCall records one Complete invocation observed by a MockAdapter.
type MockCall struct {
	Model    string
	Messages []core.Message
	Opts     CompleteOptions
}

// MockAdapter is a lightweight in-memory Adapter useful for tests & examples.
// Responses resolve in order of precedence: scripted results (FIFO), canned
// responses keyed by the last message text, then a deterministic echo.
type MockAdapter struct {
	info      Info
	models    []string
	delay     time.Duration
	mu        sync.Mutex
	script    []*Result
	responses map[string]string
	calls     []MockCall
}

// NewMockAdapter constructs a MockAdapter with tool support enabled and the
// given known model set.
func NewMockAdapter(models ...string) *MockAdapter {
	return &MockAdapter{
		info:      Info{Provider: "mock", SupportsTools: true},
		models:    models,
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockAdapter) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Enqueue appends a scripted result consumed by the next Complete call.
// Scripted results take precedence over canned responses.
func (m *MockAdapter) Enqueue(res *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, res)
}

// EnqueueToolCall scripts a tool-call directive for the named tool with the
// given JSON arguments, returning the generated call identifier.
func (m *MockAdapter) EnqueueToolCall(name, arguments string) string {
	id := uuid.NewString()
	m.Enqueue(&Result{ToolCalls: []core.ToolCall{{ID: id, Name: name, Arguments: []byte(arguments)}}})
	return id
}

// SetDelay simulates backend latency on every Complete call.
func (m *MockAdapter) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns a copy of all recorded Complete invocations.
func (m *MockAdapter) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// ListModels implements Adapter.
func (m *MockAdapter) ListModels(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	models := make([]string, len(m.models))
	copy(models, m.models)
	return models, nil
}

// Complete implements Adapter.
func (m *MockAdapter) Complete(ctx context.Context, model string, messages []core.Message, opts CompleteOptions) (*Result, error) {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Model: model, Messages: messages, Opts: opts})

	if len(m.script) > 0 {
		res := m.script[0]
		m.script = m.script[1:]
		return m.finalize(res, messages), nil
	}

	inputText := messages[len(messages)-1].Text()
	text := m.responses[inputText]
	if text == "" {
		text = fmt.Sprintf("Mock response to: %s", inputText)
	}
	return m.finalize(&Result{Text: text}, messages), nil
}

// finalize fills deterministic token counts derived from the payload sizes.
func (m *MockAdapter) finalize(res *Result, messages []core.Message) *Result {
	if res.InputTokens == 0 {
		for _, msg := range messages {
			res.InputTokens += len(msg.Text()) / 4
		}
	}
	if res.OutputTokens == 0 {
		res.OutputTokens = len(res.Text) / 4
	}
	return res
}

// Info implements Adapter.
func (m *MockAdapter) Info() Info { return m.info }
