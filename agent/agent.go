package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/internal/util"
	"github.com/hupe1980/agentfleet/logging"
	"github.com/hupe1980/agentfleet/provider"
	"github.com/hupe1980/agentfleet/tool"
)

// Options configures an Agent instance.
//
// Use functional options with New to override defaults.
type Options struct {
	Description  string
	SystemPrompt string
	Tools        []tool.Tool
	// JSONMode requires replies to parse as the structure declared by
	// OutputSchema before being treated as the turn's content.
	JSONMode     bool
	OutputSchema map[string]any
	Logger       logging.Logger
	Observer     core.Observer
}

// WithOutputStruct enables JSON mode with a schema derived from the given
// struct via reflection.
func WithOutputStruct(structType any) func(o *Options) {
	return func(o *Options) {
		o.JSONMode = true
		o.OutputSchema = util.CreateSchema(structType)
	}
}

// Agent is a single conversational session bound to one provider adapter.
//
// The transcript invariant: the first entry, once set, is the system-role
// message; entries are only ever appended or wholly cleared, never reordered.
// All exported methods are safe for concurrent use, though an agent normally
// has a single logical owner driving it.
type Agent struct {
	name         string
	description  string
	systemPrompt string
	adapter      provider.Adapter
	jsonMode     bool
	outputSchema map[string]any
	tools        tool.Registry
	logger       logging.Logger
	observer     core.Observer

	mu       sync.Mutex
	messages []core.Message
	last     *core.Response
}

// New creates an agent bound to the given provider adapter.
func New(name string, adapter provider.Adapter, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Description:  fmt.Sprintf("Agent %s", name),
		SystemPrompt: "You are a helpful assistant.",
		Logger:       logging.NoOpLogger{},
		Observer:     core.NoOpObserver{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Agent{
		name:         name,
		description:  opts.Description,
		systemPrompt: opts.SystemPrompt,
		adapter:      adapter,
		jsonMode:     opts.JSONMode,
		outputSchema: opts.OutputSchema,
		tools:        tool.NewRegistry(opts.Tools...),
		logger:       opts.Logger,
		observer:     opts.Observer,
	}
}

// Name returns the agent's display label.
func (a *Agent) Name() string { return a.name }

// Description returns the agent's purpose description.
func (a *Agent) Description() string { return a.description }

// SystemPrompt returns the agent's system prompt.
func (a *Agent) SystemPrompt() string { return a.systemPrompt }

// FirstAdapter returns the bound provider adapter. It satisfies the fleet
// participant contract used to locate an adapter for synthesis.
func (a *Agent) FirstAdapter() provider.Adapter { return a.adapter }

// LastResponse returns the most recent completed turn's response, or nil if
// no turn has completed yet.
func (a *Agent) LastResponse() *core.Response {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Append adds a message to the transcript without completing a turn.
func (a *Agent) Append(msg core.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, msg)
}

// Messages returns a copy of the transcript for safe iteration.
func (a *Agent) Messages() []core.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	msgs := make([]core.Message, len(a.messages))
	copy(msgs, a.messages)
	return msgs
}

// Clear wholly resets the transcript and the last response. The system prompt
// is pinned again on the next completed turn.
func (a *Agent) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = nil
	a.last = nil
}

// Contribute completes one turn with the running composition message. It
// satisfies the fleet participant contract; for a leaf agent a contribution
// is exactly one completed turn.
func (a *Agent) Contribute(
	ctx context.Context,
	model string,
	msg core.Message,
	params provider.GenerationParams,
) (*core.Response, error) {
	return a.CompleteTurn(ctx, model, msg, params)
}

// CompleteTurn appends msg to the transcript, obtains the assistant reply
// from the bound adapter and returns the normalized response.
//
// When the model requests tool invocations instead of a final answer, exactly
// one round of tool resolution is performed: every requested call is executed
// (unknown tools yield a structured error payload rather than a failure) and
// a single follow-up completion produces the final answer. Token counts of
// both completions are accumulated into the returned response.
//
// In JSON mode the outgoing message is extended with a format instruction
// unless the system prompt already mentions the output format, and the reply
// must parse as the declared structure; the raw reply stays in the transcript
// either way.
func (a *Agent) CompleteTurn(
	ctx context.Context,
	model string,
	msg core.Message,
	params provider.GenerationParams,
) (*core.Response, error) {
	if model == "" {
		return nil, &core.InvalidRequestError{Reason: "model not specified"}
	}

	models, err := a.adapter.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	if !slices.Contains(models, model) {
		return nil, &core.UnavailableModelError{Model: model, Provider: a.adapter.Info().Provider}
	}

	turnID := uuid.NewString()
	start := time.Now()

	outgoing := a.prepareOutgoing(msg)

	a.observer.OnEvent(core.Event{
		Type:        core.EventTurnStart,
		TurnID:      turnID,
		Participant: a.name,
		Model:       model,
		Content:     core.Excerpt(outgoing.Text()),
		Time:        start,
	})

	a.mu.Lock()
	a.ensureSystemPrompt()
	a.messages = append(a.messages, outgoing)
	transcript := a.snapshotLocked()
	a.mu.Unlock()

	copts := provider.CompleteOptions{Params: params, Tools: a.toolDefinitions()}

	res, err := a.adapter.Complete(ctx, model, transcript, copts)
	if err == nil && len(res.ToolCalls) > 0 {
		res, err = a.resolveToolCalls(ctx, model, turnID, res, copts)
	}
	if err != nil {
		a.logger.Error("turn failed", "agent", a.name, "model", model, "error", err.Error())
		a.observer.OnEvent(core.Event{
			Type:        core.EventTurnComplete,
			TurnID:      turnID,
			Participant: a.name,
			Model:       model,
			Err:         err,
			Time:        time.Now(),
		})
		return nil, err
	}

	a.Append(core.NewAssistantMessage(res.Text))

	content, err := a.parseContent(model, res.Text)
	if err != nil {
		return nil, err
	}

	resp := core.NewResponse(content, res.InputTokens, res.OutputTokens)

	a.mu.Lock()
	a.last = resp
	a.mu.Unlock()

	a.logger.Info("turn completed",
		"agent", a.name,
		"model", model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"duration", time.Since(start),
	)
	a.observer.OnEvent(core.Event{
		Type:        core.EventTurnComplete,
		TurnID:      turnID,
		Participant: a.name,
		Model:       model,
		Content:     core.Excerpt(resp.Text()),
		Time:        time.Now(),
	})

	return resp, nil
}

// ensureSystemPrompt pins the system prompt as the first transcript entry.
// Callers must hold the mutex.
func (a *Agent) ensureSystemPrompt() {
	if len(a.messages) == 0 {
		a.messages = append(a.messages, core.NewSystemMessage(a.systemPrompt))
	}
}

func (a *Agent) snapshotLocked() []core.Message {
	msgs := make([]core.Message, len(a.messages))
	copy(msgs, a.messages)
	return msgs
}

// prepareOutgoing applies the JSON-mode format instruction to the outgoing
// message when needed. Prior transcript entries are never touched.
func (a *Agent) prepareOutgoing(msg core.Message) core.Message {
	if !a.jsonMode || strings.Contains(strings.ToLower(a.systemPrompt), "json") {
		return msg
	}
	instruction := fmt.Sprintf("\n\nRespond with %s. Return only valid JSON.", util.DescribeSchema(a.outputSchema))
	msg.Content = msg.Text() + instruction
	return msg
}

// parseContent parses the raw reply as the declared structure in JSON mode.
func (a *Agent) parseContent(model, raw string) (any, error) {
	if !a.jsonMode {
		return raw, nil
	}
	var structured any
	if err := json.Unmarshal([]byte(raw), &structured); err != nil {
		return nil, &core.MalformedResponseError{Model: model, Raw: raw, Err: err}
	}
	return structured, nil
}

// resolveToolCalls performs the single round of tool resolution for a turn:
// the assistant directive and every tool result are appended to the
// transcript, then one follow-up completion obtains the final answer. No
// recursive multi-hop tool chaining happens within a single turn.
func (a *Agent) resolveToolCalls(
	ctx context.Context,
	model, turnID string,
	res *provider.Result,
	copts provider.CompleteOptions,
) (*provider.Result, error) {
	a.Append(core.Message{Role: core.RoleAssistant, ToolCalls: res.ToolCalls})

	for _, call := range res.ToolCalls {
		started := time.Now()
		payload := a.executeToolCall(ctx, call)
		a.Append(core.NewToolMessage(call.ID, payload))

		a.logger.Debug("tool invoked", "agent", a.name, "tool", call.Name, "duration", time.Since(started))
		a.observer.OnEvent(core.Event{
			Type:        core.EventToolInvoked,
			TurnID:      turnID,
			Participant: a.name,
			Model:       model,
			Tool:        call.Name,
			Time:        time.Now(),
		})
	}

	a.mu.Lock()
	transcript := a.snapshotLocked()
	a.mu.Unlock()

	followUp, err := a.adapter.Complete(ctx, model, transcript, copts)
	if err != nil {
		return nil, err
	}

	followUp.InputTokens += res.InputTokens
	followUp.OutputTokens += res.OutputTokens

	return followUp, nil
}

// executeToolCall runs one requested tool call. Failures never abort the
// turn; they are captured as a structured error payload inserted into the
// transcript so the model can react to its own bad call in the follow-up.
func (a *Agent) executeToolCall(ctx context.Context, call core.ToolCall) any {
	t, ok := a.tools.Lookup(call.Name)
	if !ok {
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", call.Name)}
	}

	var args map[string]any
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return map[string]any{"error": fmt.Sprintf("invalid arguments for tool %q: %v", call.Name, err)}
		}
	}

	result, err := t.Call(ctx, args)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}

// toolDefinitions exposes the registry in the normalized provider shape,
// ordered by name for deterministic requests.
func (a *Agent) toolDefinitions() []provider.ToolDefinition {
	if len(a.tools) == 0 {
		return nil
	}

	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]provider.ToolDefinition, 0, len(names))
	for _, name := range names {
		t := a.tools[name]
		defs = append(defs, provider.ToolDefinition{
			Type: "function",
			Function: provider.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}
