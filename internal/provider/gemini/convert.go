package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	pmodel "github.com/arlo-cli/arlo/internal/provider/model"
	chat "github.com/arlo-cli/arlo/internal/session/model"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// toGeminiContents converts the conversation to Gemini Content format.
// System messages are omitted here; they travel as the system instruction
// in the generation config instead.
func toGeminiContents(messages []chat.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))

	// Gemini identifies function responses by name, not call id, so track
	// which name each issued call id maps to. Text-parsed calls carry no id
	// and are matched up in issue order.
	callNames := map[string]string{}
	var pendingNames []string

	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			continue

		case chat.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
			})

		case chat.RoleAssistant:
			parts := make([]*genai.Part, 0, len(msg.ToolCalls)+1)
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				args, err := decodeArguments(call.Arguments)
				if err != nil {
					return nil, err
				}
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						Name: call.Name,
						Args: args,
					},
				})
				if call.ID != "" {
					callNames[call.ID] = call.Name
				}
				pendingNames = append(pendingNames, call.Name)
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})

		case chat.RoleTool:
			name := callNames[msg.ToolCallID]
			if name == "" && len(pendingNames) > 0 {
				name = pendingNames[0]
			}
			if len(pendingNames) > 0 {
				pendingNames = pendingNames[1:]
			}
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name: name,
						Response: map[string]any{
							"content": msg.Content,
						},
					},
				}},
			})
		}
	}

	return contents, nil
}

func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, &pmodel.ProviderError{
			Code:       pmodel.ErrorCodeInvalidRequest,
			Message:    fmt.Sprintf("tool arguments are not a JSON object: %s", raw),
			Underlying: err,
		}
	}
	return args, nil
}

// newGenerateConfig builds the generation config, lifting system messages
// into the system instruction.
func newGenerateConfig(messages []chat.Message, temperature *float32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}

	var systemParts []string
	for _, msg := range messages {
		if msg.Role == chat.RoleSystem && msg.Content != "" {
			systemParts = append(systemParts, msg.Content)
		}
	}
	if len(systemParts) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(strings.Join(systemParts, "\n\n"))},
		}
	}

	if temperature != nil {
		config.Temperature = temperature
	}

	return config
}

func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdOff},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdOff},
	}
}

// toGeminiTools converts tool definitions to Gemini function declarations.
func toGeminiTools(tools []pmodel.ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		fd := &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
		}
		if tool.Parameters != nil {
			fd.Parameters = toGeminiSchema(tool.Parameters)
		}
		declarations = append(declarations, fd)
	}

	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

func toGeminiSchema(params *pmodel.ParameterSchema) *genai.Schema {
	schema := &genai.Schema{Type: genai.TypeObject}

	if params.Properties != nil {
		schema.Properties = make(map[string]*genai.Schema)
		for name, prop := range params.Properties {
			converted := &genai.Schema{
				Type:        toGeminiType(prop.Type),
				Description: prop.Description,
			}
			if len(prop.Enum) > 0 {
				converted.Enum = prop.Enum
			}
			if prop.Items != nil {
				converted.Items = &genai.Schema{
					Type:        toGeminiType(prop.Items.Type),
					Description: prop.Items.Description,
				}
			}
			schema.Properties[name] = converted
		}
	}

	if len(params.Required) > 0 {
		schema.Required = params.Required
	}

	return schema
}

func toGeminiType(typeStr string) genai.Type {
	switch typeStr {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to the internal format.
// Gemini does not assign tool-call ids, so fresh ones are synthesized to
// keep the call/result pairing intact in the session log.
func fromGeminiResponse(resp *genai.GenerateContentResponse, modelUsed string) (*pmodel.GenerateResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, &pmodel.ProviderError{
			Code:       pmodel.ErrorCodeEmptyResponse,
			Message:    "no candidates in response",
			Underlying: pmodel.ErrEmptyResponse,
		}
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return &pmodel.GenerateResponse{
			Content: pmodel.ResponseContent{
				Type:          pmodel.ResponseTypeRefusal,
				RefusalReason: "content blocked by safety filters",
			},
			Metadata: buildMetadata(resp.UsageMetadata, modelUsed),
		}, nil
	}

	content := pmodel.ResponseContent{Type: pmodel.ResponseTypeText}
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				content.Text += part.Text
			}
			if part.FunctionCall != nil {
				args, err := json.Marshal(part.FunctionCall.Args)
				if err != nil {
					args = []byte("{}")
				}
				content.ToolCalls = append(content.ToolCalls, chat.ToolCall{
					ID:        "call_" + uuid.NewString(),
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				})
			}
		}
	}
	if len(content.ToolCalls) > 0 {
		content.Type = pmodel.ResponseTypeToolCall
	}

	return &pmodel.GenerateResponse{
		Content:  content,
		Metadata: buildMetadata(resp.UsageMetadata, modelUsed),
	}, nil
}

func buildMetadata(usage *genai.GenerateContentResponseUsageMetadata, modelUsed string) pmodel.ResponseMetadata {
	metadata := pmodel.ResponseMetadata{ModelUsed: modelUsed}
	if usage != nil {
		metadata.PromptTokens = int(usage.PromptTokenCount)
		metadata.CompletionTokens = int(usage.CandidatesTokenCount)
		metadata.TotalTokens = int(usage.TotalTokenCount)
	}
	return metadata
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 401, 403:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeAuth,
				Message:    "authentication failed",
				Underlying: err,
			}
		case 429:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeRateLimit,
				Message:    "rate limit exceeded",
				Underlying: err,
				Retryable:  true,
			}
		case 400:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeInvalidRequest,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
			}
		case 500, 502, 503, 504:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeUnavailable,
				Message:    "service unavailable",
				Underlying: err,
				Retryable:  true,
			}
		default:
			return &pmodel.ProviderError{
				Code:       pmodel.ErrorCodeNetwork,
				Message:    fmt.Sprintf("API error: %s", apiErr.Message),
				Underlying: err,
				Retryable:  true,
			}
		}
	}

	return &pmodel.ProviderError{
		Code:       pmodel.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}
