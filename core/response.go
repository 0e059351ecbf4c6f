package core

// Response is the normalized result of one completed turn. Content is the
// assistant's reply text, or the parsed structure when the producing agent is
// in JSON mode. A Response is produced exactly once per completed turn and is
// immutable once constructed.
type Response struct {
	Content      any `json:"content"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// NewResponse constructs a Response from content and token usage.
func NewResponse(content any, inputTokens, outputTokens int) *Response {
	return &Response{Content: content, InputTokens: inputTokens, OutputTokens: outputTokens}
}

// Text renders the response content as plain text, JSON-encoding structured
// content. Used by fleet composition to propagate a participant's answer into
// the next participant's input.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return contentText(r.Content)
}
