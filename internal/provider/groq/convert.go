package groq

import (
	"context"
	"errors"
	"strings"

	pmodel "github.com/arlo-cli/arlo/internal/provider/model"
	chat "github.com/arlo-cli/arlo/internal/session/model"
	openai "github.com/sashabaranov/go-openai"
)

func toOpenAIRole(role chat.Role) string {
	switch role {
	case chat.RoleSystem:
		return openai.ChatMessageRoleSystem
	case chat.RoleUser:
		return openai.ChatMessageRoleUser
	case chat.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case chat.RoleTool:
		return openai.ChatMessageRoleTool
	default:
		return openai.ChatMessageRoleUser
	}
}

func toOpenAIMessages(messages []chat.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		converted := openai.ChatCompletionMessage{
			Role:       toOpenAIRole(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		out = append(out, converted)
	}
	return out
}

func toOpenAITools(defs []pmodel.ToolDefinition) []openai.Tool {
	if len(defs) == 0 {
		return nil
	}
	tools := make([]openai.Tool, 0, len(defs))
	for _, def := range defs {
		fn := &openai.FunctionDefinition{
			Name:        def.Name,
			Description: def.Description,
		}
		if def.Parameters != nil {
			fn.Parameters = def.Parameters
		}
		tools = append(tools, openai.Tool{
			Type:     openai.ToolTypeFunction,
			Function: fn,
		})
	}
	return tools
}

func fromOpenAIResponse(msg openai.ChatCompletionMessage) *pmodel.GenerateResponse {
	content := pmodel.ResponseContent{
		Type: pmodel.ResponseTypeText,
		Text: msg.Content,
	}
	if len(msg.ToolCalls) > 0 {
		content.Type = pmodel.ResponseTypeToolCall
		for _, call := range msg.ToolCalls {
			content.ToolCalls = append(content.ToolCalls, chat.ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
	}
	return &pmodel.GenerateResponse{Content: content}
}

// convertError maps go-openai errors onto the shared provider error type.
func convertError(err error) *pmodel.ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeAuth,
				Message:    apiErr.Message,
				Underlying: err,
			}
		case apiErr.HTTPStatusCode == 429:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeRateLimit,
				Message:    apiErr.Message,
				Underlying: err,
				Retryable:  true,
			}
		case apiErr.HTTPStatusCode == 404:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeInvalidModel,
				Message:    apiErr.Message,
				Underlying: err,
			}
		case apiErr.HTTPStatusCode >= 500:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeUnavailable,
				Message:    apiErr.Message,
				Underlying: err,
				Retryable:  true,
			}
		case strings.Contains(apiErr.Message, "context_length") ||
			strings.Contains(apiErr.Message, "maximum context length"):
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeContextLength,
				Message:    apiErr.Message,
				Underlying: err,
			}
		default:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeInvalidRequest,
				Message:    apiErr.Message,
				Underlying: err,
			}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &pmodel.ProviderError{
			Code:       pmodel.ErrorCodeTimeout,
			Message:    "request timed out",
			Underlying: err,
			Retryable:  true,
		}
	}

	return &pmodel.ProviderError{
		Code:       pmodel.ErrorCodeNetwork,
		Message:    err.Error(),
		Underlying: err,
		Retryable:  true,
	}
}
