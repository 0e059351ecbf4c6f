package core

import "fmt"

// InvalidRequestError indicates a turn was attempted with a missing or
// unusable required parameter, e.g. an empty model identifier.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

// UnavailableModelError indicates the requested model is not in the bound
// adapter's known model set.
type UnavailableModelError struct {
	Model    string // offending model identifier
	Provider string // adapter provider name, e.g. "openai"
}

func (e *UnavailableModelError) Error() string {
	return fmt.Sprintf("model %q not available for provider %s", e.Model, e.Provider)
}

// MalformedResponseError indicates a JSON-mode reply could not be parsed as
// the declared structure. The raw assistant reply remains in the transcript.
type MalformedResponseError struct {
	Model string
	Raw   string // unparsed assistant reply
	Err   error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed structured response from model %s: %v", e.Model, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// InvalidModeError indicates an unrecognized fleet composition mode.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid composition mode %q: choose %q or %q", e.Mode, "sequential", "concurrent")
}

// NoAdapterAvailableError indicates synthesis could not locate a bound
// provider adapter among the fleet's participants.
type NoAdapterAvailableError struct {
	Fleet string
}

func (e *NoAdapterAvailableError) Error() string {
	return fmt.Sprintf("no provider adapter available for synthesis in fleet %q", e.Fleet)
}
