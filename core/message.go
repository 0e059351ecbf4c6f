package core

import (
	"encoding/json"
	"fmt"
)

// Conversation roles used in transcript messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall describes a tool invocation requested by the model instead of a
// final answer. Normalized across providers so downstream logic does not need
// per-vendor branching.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"` // JSON object of arguments
}

// Message is a single transcript entry. Content is a string in plain mode, a
// structured value in JSON mode, or nil while a tool invocation is pending.
// Ordering within a transcript is significant and append-only; the owning
// agent never reorders entries, only appends or wholly clears.
type Message struct {
	Role       string     `json:"role"`
	Content    any        `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // assistant tool-call directive
	ToolCallID string     `json:"tool_call_id,omitempty"` // correlates a tool result with its call
}

// NewSystemMessage builds a system-role message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// NewUserMessage builds a user-role message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage builds an assistant-role message.
func NewAssistantMessage(content any) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolMessage builds a tool-role message carrying the serialized result of
// the tool call identified by callID.
func NewToolMessage(callID string, content any) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// Text renders the message content as plain text. String content is returned
// verbatim; structured content is JSON-encoded so it can participate in the
// running text pipeline of a sequential composition.
func (m Message) Text() string {
	return contentText(m.Content)
}

func contentText(content any) string {
	switch v := content.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
