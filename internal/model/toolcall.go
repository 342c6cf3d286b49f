package model

const WebhookMessageTypeToolCalls = "tool-calls"

// ToolCallFunction is the nested function reference inside a tool call.
// Arguments arrive as a loose JSON object; handlers pick out what they need.
type ToolCallFunction struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolCall is one function invocation requested by the voice agent.
// Some agent payloads flatten name/arguments onto the call itself, so both
// shapes are accepted.
type ToolCall struct {
	ID        string           `json:"id"`
	Function  ToolCallFunction `json:"function"`
	Name      string           `json:"name,omitempty"`
	Arguments map[string]any   `json:"arguments,omitempty"`
}

// FunctionName returns the nested name, falling back to the flat one.
func (c *ToolCall) FunctionName() string {
	if c.Function.Name != "" {
		return c.Function.Name
	}
	return c.Name
}

// FunctionArguments returns the nested arguments, falling back to the flat ones.
func (c *ToolCall) FunctionArguments() map[string]any {
	if c.Function.Arguments != nil {
		return c.Function.Arguments
	}
	return c.Arguments
}

type WebhookMessage struct {
	Type         string     `json:"type"`
	ToolCallList []ToolCall `json:"toolCallList"`
}

type WebhookRequest struct {
	Message *WebhookMessage `json:"message"`
}

// IsToolCalls reports whether the request carries a tool-call batch.
func (r *WebhookRequest) IsToolCalls() bool {
	return r.Message != nil &&
		r.Message.Type == WebhookMessageTypeToolCalls &&
		r.Message.ToolCallList != nil
}

// ToolResult is the success/message pair returned for one call.
type ToolResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ToolCallResult pairs a result with the originating call id.
type ToolCallResult struct {
	ToolCallID string     `json:"toolCallId"`
	Result     ToolResult `json:"result"`
}

type WebhookResponse struct {
	Results []ToolCallResult `json:"results"`
}
