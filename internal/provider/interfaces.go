package provider

import (
	"context"

	"github.com/arlo-cli/arlo/internal/provider/model"
)

// Provider defines the interface for LLM backends.
type Provider interface {
	// Generate sends the conversation to the model and returns its response.
	// Failures come back as *model.ProviderError so callers can surface them
	// in the conversation.
	Generate(ctx context.Context, req *model.GenerateRequest) (*model.GenerateResponse, error)

	// SetModel changes the active model at runtime.
	SetModel(name string) error

	// GetModel returns the currently active model name.
	GetModel() string

	// ListModels returns the model names this provider can serve.
	ListModels(ctx context.Context) ([]string, error)

	// DefineTools registers tool definitions for native tool calling.
	// Must be called before Generate for tools to be offered.
	DefineTools(tools []model.ToolDefinition)
}
