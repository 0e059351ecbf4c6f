// Package util holds reflection helpers shared by the tool and agent
// packages: deriving JSON schemas from Go structs, validating arguments
// against them and rendering a compact schema description for prompts.
package util

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// CreateSchema derives a minimal JSON schema from a Go struct via reflection.
// Non-pointer fields without omitempty are treated as required. The
// `description` struct tag becomes the property description.
func CreateSchema(structType any) map[string]any {
	t := reflect.TypeOf(structType)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	properties := make(map[string]any)
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		if jsonTag != "" {
			if name := strings.Split(jsonTag, ",")[0]; name != "" {
				fieldName = name
			}
		}

		fieldSchema := map[string]any{
			"type": jsonType(field.Type),
		}
		if desc := field.Tag.Get("description"); desc != "" {
			fieldSchema["description"] = desc
		}

		properties[fieldName] = fieldSchema

		if !hasOmitEmpty(jsonTag) && field.Type.Kind() != reflect.Ptr {
			required = append(required, fieldName)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// DescribeSchema renders a schema as a compact single-line description
// suitable for embedding into an outgoing prompt, e.g.
// `a JSON object with fields: a (number), b (number, optional)`.
func DescribeSchema(schema map[string]any) string {
	properties, _ := schema["properties"].(map[string]any)
	if len(properties) == 0 {
		return "a JSON object"
	}

	required := map[string]bool{}
	switch req := schema["required"].(type) {
	case []string:
		for _, name := range req {
			required[name] = true
		}
	case []any:
		for _, r := range req {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, name := range names {
		typ := "string"
		if propMap, ok := properties[name].(map[string]any); ok {
			if s, ok := propMap["type"].(string); ok {
				typ = s
			}
		}
		if required[name] {
			fields = append(fields, fmt.Sprintf("%s (%s)", name, typ))
		} else {
			fields = append(fields, fmt.Sprintf("%s (%s, optional)", name, typ))
		}
	}

	return "a JSON object with fields: " + strings.Join(fields, ", ")
}

// ValidateParameters validates arguments against a minimal JSON schema
// (required fields plus property types). Extra fields are allowed.
func ValidateParameters(params map[string]any, schema map[string]any) error {
	switch req := schema["required"].(type) {
	case []string:
		for _, name := range req {
			if _, exists := params[name]; !exists {
				return &ValidationError{Field: name, Message: "required field is missing"}
			}
		}
	case []any:
		for _, r := range req {
			name, ok := r.(string)
			if !ok {
				continue
			}
			if _, exists := params[name]; !exists {
				return &ValidationError{Field: name, Message: "required field is missing"}
			}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for name, value := range params {
		propMap, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		expectedType, _ := propMap["type"].(string)
		if !isValidType(value, expectedType) {
			return &ValidationError{
				Field:   name,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", expectedType, value),
			}
		}
	}

	return nil
}

// jsonType returns the JSON schema type for a given Go type.
func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Ptr:
		return jsonType(t.Elem())
	default:
		return "string"
	}
}

// hasOmitEmpty checks if a JSON tag has the "omitempty" option.
func hasOmitEmpty(tag string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if strings.TrimSpace(part) == "omitempty" {
			return true
		}
	}
	return false
}

// isValidType checks if a value is valid according to the expected JSON schema type.
func isValidType(value any, expectedType string) bool {
	if value == nil {
		return true
	}

	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64: // JSON unmarshaling produces float64 for numbers
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true // Unknown types are assumed valid
	}
}
