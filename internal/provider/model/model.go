package model

import (
	chat "github.com/arlo-cli/arlo/internal/session/model"
)

// GenerateRequest encapsulates all parameters for a generation request.
type GenerateRequest struct {
	// Messages is the full conversation, system prompt first.
	Messages []chat.Message

	// Tools contains tool definitions for native tool calling.
	Tools []ToolDefinition

	// Temperature is optional; nil uses the provider default.
	Temperature *float32
}

// GenerateResponse contains the model's response and metadata.
type GenerateResponse struct {
	Content  ResponseContent
	Metadata ResponseMetadata
}

// ResponseContent is a union type representing different response types.
type ResponseContent struct {
	// Type indicates what the model produced.
	Type ResponseType

	// For Type = ResponseTypeText. A tool-call response may also carry
	// accompanying text.
	Text string

	// For Type = ResponseTypeToolCall
	ToolCalls []chat.ToolCall

	// For Type = ResponseTypeRefusal (safety block, policy violation)
	RefusalReason string
}

// ResponseType indicates the type of response from the model.
type ResponseType string

const (
	ResponseTypeText     ResponseType = "text"
	ResponseTypeToolCall ResponseType = "tool_call"
	ResponseTypeRefusal  ResponseType = "refusal"
)

// ResponseMetadata contains information about the generation.
type ResponseMetadata struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	ModelUsed        string
	LatencyMs        int64
}

// ToolDefinition defines a tool the model can invoke.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *ParameterSchema // nil means no parameters
}

// ParameterSchema maps directly to standard JSON Schema.
type ParameterSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required,omitempty"`
}

// PropertySchema defines a single parameter property.
type PropertySchema struct {
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	Enum        []string        `json:"enum,omitempty"`
	Items       *PropertySchema `json:"items,omitempty"`
}
