// Package model defines the conversation data types shared by the
// session, providers, and the orchestrator.
package model

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in the conversation log. Messages are
// immutable once appended; corrections are expressed as new messages.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content,omitempty"`

	// ToolCalls is set on assistant messages that request tool execution.
	// An assistant message may have empty content only when it carries at
	// least one tool call.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool message to the call it answers. Text-parsed
	// calls get a synthesized id so the link always exists.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-issued request to execute a named capability.
// It is owned by the assistant message that produced it and consumed
// exactly once by the orchestrator.
type ToolCall struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`

	// Arguments is the raw argument text, expected to decode as a JSON
	// object. Kept raw so decode errors can be reported back to the model.
	Arguments string `json:"arguments"`
}

// HasToolCalls reports whether the message requests any tool execution.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// SystemMessage builds a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds a plain-text assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolMessage builds a tool-result message. callID may be empty for
// results of text-parsed calls.
func ToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}
