package gemini

import (
	"context"

	pmodel "github.com/arlo-cli/arlo/internal/provider/model"
)

// Provider implements the provider interface for Google Gemini.
type Provider struct {
	client    GeminiClient
	modelName string
	tools     []pmodel.ToolDefinition
}

// New creates a new Provider with the specified client and model.
func New(client GeminiClient, modelName string) *Provider {
	if client == nil {
		panic("client is required")
	}
	if modelName == "" {
		panic("modelName is required")
	}
	return &Provider{
		client:    client,
		modelName: modelName,
	}
}

// Generate sends the conversation to the Gemini API and converts the response.
func (p *Provider) Generate(ctx context.Context, req *pmodel.GenerateRequest) (*pmodel.GenerateResponse, error) {
	contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, err
	}

	config := newGenerateConfig(req.Messages, req.Temperature)
	if len(p.tools) > 0 {
		config.Tools = toGeminiTools(p.tools)
	}

	resp, err := p.client.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp, p.modelName)
}

// SetModel changes the active model at runtime.
func (p *Provider) SetModel(name string) error {
	if name == "" {
		return pmodel.ErrInvalidModel
	}
	p.modelName = name
	return nil
}

// GetModel returns the currently active model name.
func (p *Provider) GetModel() string {
	return p.modelName
}

// ListModels returns the model names this provider can serve.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	names, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return names, nil
}

// DefineTools registers tool definitions for native tool calling.
func (p *Provider) DefineTools(tools []pmodel.ToolDefinition) {
	p.tools = tools
}
