package groq

import (
	"context"
	"time"

	pmodel "github.com/arlo-cli/arlo/internal/provider/model"
	openai "github.com/sashabaranov/go-openai"
)

// BaseURL is Groq's OpenAI-compatible endpoint.
const BaseURL = "https://api.groq.com/openai/v1"

// Client is a Provider backed by Groq's OpenAI-compatible chat API.
type Client struct {
	api   chatAPI
	model string
	tools []openai.Tool
}

// chatAPI is the slice of the go-openai client the provider uses,
// extracted so tests can substitute a fake.
type chatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	ListModels(ctx context.Context) (openai.ModelsList, error)
}

// NewClient creates a Groq provider for the given API key and model.
func NewClient(apiKey, model string) *Client {
	if apiKey == "" {
		panic("apiKey is required")
	}
	if model == "" {
		panic("model is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = BaseURL
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Generate sends the conversation to Groq and converts the response.
func (c *Client) Generate(ctx context.Context, req *pmodel.GenerateRequest) (*pmodel.GenerateResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toOpenAIMessages(req.Messages),
		Tools:    c.tools,
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, convertError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &pmodel.ProviderError{
			Code:       pmodel.ErrorCodeEmptyResponse,
			Message:    "groq returned no choices",
			Underlying: pmodel.ErrEmptyResponse,
		}
	}

	result := fromOpenAIResponse(resp.Choices[0].Message)
	result.Metadata = pmodel.ResponseMetadata{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		ModelUsed:        resp.Model,
		LatencyMs:        time.Since(start).Milliseconds(),
	}
	return result, nil
}

// SetModel changes the active model.
func (c *Client) SetModel(name string) error {
	if name == "" {
		return pmodel.ErrInvalidModel
	}
	c.model = name
	return nil
}

// GetModel returns the currently active model name.
func (c *Client) GetModel() string {
	return c.model
}

// ListModels fetches the model identifiers available on Groq.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, convertError(err)
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// DefineTools registers tool definitions offered on every Generate call.
func (c *Client) DefineTools(tools []pmodel.ToolDefinition) {
	c.tools = toOpenAITools(tools)
}
