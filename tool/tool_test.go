package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddTool() *FunctionTool {
	return NewFunctionTool(
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

func TestFunctionToolCall(t *testing.T) {
	add := newAddTool()

	result, err := add.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionToolValidationError(t *testing.T) {
	add := newAddTool()

	_, err := add.Call(context.Background(), map[string]any{"a": 2.0})
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.Equal(t, "add", toolErr.Tool)
}

func TestFunctionToolExecutionError(t *testing.T) {
	boom := NewFunctionTool("boom", "Always fails", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("kaboom")
		})

	_, err := boom.Call(context.Background(), map[string]any{})
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "kaboom", toolErr.Message)
}

func TestFunctionToolPreservesToolError(t *testing.T) {
	custom := NewToolError("boom", "rate limited", "RATE_LIMITED")
	boom := NewFunctionTool("boom", "Always fails", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, custom
		})

	_, err := boom.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Same(t, custom, toolErr)
}

func TestFunctionToolFromStruct(t *testing.T) {
	type args struct {
		City string `json:"city" description:"City name"`
	}

	weather := NewFunctionToolFromStruct("get_weather", "Get weather for a city", args{},
		func(_ context.Context, a map[string]any) (any, error) {
			return "sunny in " + a["city"].(string), nil
		})

	params := weather.Parameters()
	properties := params["properties"].(map[string]any)
	assert.Contains(t, properties, "city")

	result, err := weather.Call(context.Background(), map[string]any{"city": "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "sunny in Berlin", result)
}

func TestRegistryLookup(t *testing.T) {
	add := newAddTool()
	registry := NewRegistry(add)

	got, ok := registry.Lookup("add")
	assert.True(t, ok)
	assert.Same(t, add, got)

	_, ok = registry.Lookup("subtract")
	assert.False(t, ok)
}

func TestToolErrorMessage(t *testing.T) {
	err := NewToolError("add", "something broke", "EXECUTION_ERROR")
	assert.Equal(t, "tool error [EXECUTION_ERROR] in add: something broke", err.Error())

	err = &ToolError{Tool: "add", Message: "something broke"}
	assert.Equal(t, "tool error in add: something broke", err.Error())
}
