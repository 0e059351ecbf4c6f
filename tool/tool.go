// Package tool implements the function / tool calling subsystem that lets
// agents invoke structured capabilities (APIs, computations, side effects)
// with schema validated arguments and consistent error handling.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentfleet/internal/util"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools registered with an agent become callable by the model during a turn.
// Implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define a proper JSON schema for parameters
//   - Be safe for concurrent use; concurrent fleet composition may invoke
//     tools of different agents at the same time
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the model to help it decide when to call the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-decoded arguments.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// Registry maps tool names to implementations. The zero value is usable.
type Registry map[string]Tool

// NewRegistry builds a Registry from the given tools, keyed by name.
func NewRegistry(tools ...Tool) Registry {
	r := make(Registry, len(tools))
	for _, t := range tools {
		r[t.Name()] = t
	}
	return r
}

// Lookup returns the named tool and whether it is registered.
func (r Registry) Lookup(name string) (Tool, bool) {
	t, ok := r[name]
	return t, ok
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
