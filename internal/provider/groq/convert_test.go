package groq

import (
	"context"
	"errors"
	"testing"

	pmodel "github.com/arlo-cli/arlo/internal/provider/model"
	chat "github.com/arlo-cli/arlo/internal/session/model"
	openai "github.com/sashabaranov/go-openai"
)

func TestToOpenAIMessages(t *testing.T) {
	messages := []chat.Message{
		chat.SystemMessage("you are helpful"),
		chat.UserMessage("read main.go"),
		{
			Role: chat.RoleAssistant,
			ToolCalls: []chat.ToolCall{
				{ID: "call_1", Name: "read_file", Arguments: `{"path":"main.go"}`},
			},
		},
		chat.ToolMessage("call_1", "package main"),
	}

	out := toOpenAIMessages(messages)
	if len(out) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(out))
	}
	if out[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("unexpected role %q", out[0].Role)
	}
	if len(out[2].ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(out[2].ToolCalls))
	}
	call := out[2].ToolCalls[0]
	if call.ID != "call_1" || call.Function.Name != "read_file" {
		t.Errorf("unexpected tool call %+v", call)
	}
	if out[3].Role != openai.ChatMessageRoleTool || out[3].ToolCallID != "call_1" {
		t.Errorf("tool message lost its call id: %+v", out[3])
	}
}

func TestFromOpenAIResponse(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		resp := fromOpenAIResponse(openai.ChatCompletionMessage{Content: "4"})
		if resp.Content.Type != pmodel.ResponseTypeText || resp.Content.Text != "4" {
			t.Errorf("unexpected content %+v", resp.Content)
		}
	})

	t.Run("tool calls", func(t *testing.T) {
		resp := fromOpenAIResponse(openai.ChatCompletionMessage{
			Content: "reading the file now",
			ToolCalls: []openai.ToolCall{
				{ID: "c1", Function: openai.FunctionCall{Name: "read_file", Arguments: `{"path":"a"}`}},
				{ID: "c2", Function: openai.FunctionCall{Name: "run_bash", Arguments: `{"command":"ls"}`}},
			},
		})
		if resp.Content.Type != pmodel.ResponseTypeToolCall {
			t.Fatalf("expected tool_call type, got %s", resp.Content.Type)
		}
		if len(resp.Content.ToolCalls) != 2 {
			t.Fatalf("expected 2 calls, got %d", len(resp.Content.ToolCalls))
		}
		if resp.Content.ToolCalls[0].Name != "read_file" || resp.Content.ToolCalls[1].Name != "run_bash" {
			t.Errorf("call order not preserved: %+v", resp.Content.ToolCalls)
		}
		if resp.Content.Text != "reading the file now" {
			t.Errorf("accompanying text lost: %q", resp.Content.Text)
		}
	})
}

func TestToOpenAITools(t *testing.T) {
	tools := toOpenAITools([]pmodel.ToolDefinition{
		{
			Name:        "read_file",
			Description: "Read a file",
			Parameters: &pmodel.ParameterSchema{
				Type: "object",
				Properties: map[string]pmodel.PropertySchema{
					"path": {Type: "string"},
				},
				Required: []string{"path"},
			},
		},
	})
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(tools))
	}
	if tools[0].Type != openai.ToolTypeFunction || tools[0].Function.Name != "read_file" {
		t.Errorf("unexpected tool %+v", tools[0])
	}
}

func TestConvertError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      pmodel.ErrorCode
		retryable bool
	}{
		{"auth", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, pmodel.ErrorCodeAuth, false},
		{"rate limit", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, pmodel.ErrorCodeRateLimit, true},
		{"unknown model", &openai.APIError{HTTPStatusCode: 404, Message: "no such model"}, pmodel.ErrorCodeInvalidModel, false},
		{"server error", &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"}, pmodel.ErrorCodeUnavailable, true},
		{"context length", &openai.APIError{HTTPStatusCode: 400, Message: "maximum context length exceeded"}, pmodel.ErrorCodeContextLength, false},
		{"timeout", context.DeadlineExceeded, pmodel.ErrorCodeTimeout, true},
		{"network", errors.New("connection refused"), pmodel.ErrorCodeNetwork, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertError(tt.err)
			if got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
			if got.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v", got.Retryable, tt.retryable)
			}
			if !errors.Is(got, tt.err) {
				t.Error("underlying error not wrapped")
			}
		})
	}
}

// fakeAPI returns canned completions.
type fakeAPI struct {
	resp openai.ChatCompletionResponse
	err  error
	got  openai.ChatCompletionRequest
}

func (f *fakeAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	return f.resp, f.err
}

func (f *fakeAPI) ListModels(ctx context.Context) (openai.ModelsList, error) {
	return openai.ModelsList{Models: []openai.Model{{ID: "m1"}, {ID: "m2"}}}, nil
}

func TestClientGenerate(t *testing.T) {
	fake := &fakeAPI{
		resp: openai.ChatCompletionResponse{
			Model: "moonshotai/kimi-k2-instruct",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "4"}},
			},
			Usage: openai.Usage{PromptTokens: 10, CompletionTokens: 1, TotalTokens: 11},
		},
	}
	client := &Client{api: fake, model: "moonshotai/kimi-k2-instruct"}
	client.DefineTools([]pmodel.ToolDefinition{{Name: "read_file"}})

	resp, err := client.Generate(context.Background(), &pmodel.GenerateRequest{
		Messages: []chat.Message{chat.UserMessage("Add 2 and 2")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content.Text != "4" {
		t.Errorf("unexpected text %q", resp.Content.Text)
	}
	if resp.Metadata.TotalTokens != 11 {
		t.Errorf("unexpected usage %+v", resp.Metadata)
	}
	if len(fake.got.Tools) != 1 {
		t.Errorf("tools not offered on request")
	}
	if fake.got.Model != "moonshotai/kimi-k2-instruct" {
		t.Errorf("unexpected model %q", fake.got.Model)
	}
}

func TestClientGenerateNoChoices(t *testing.T) {
	client := &Client{api: &fakeAPI{}, model: "m"}

	_, err := client.Generate(context.Background(), &pmodel.GenerateRequest{})
	var provErr *pmodel.ProviderError
	if !errors.As(err, &provErr) || provErr.Code != pmodel.ErrorCodeEmptyResponse {
		t.Fatalf("expected empty response error, got %v", err)
	}
}

func TestClientListModels(t *testing.T) {
	client := &Client{api: &fakeAPI{}, model: "m"}

	names, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "m1" {
		t.Errorf("unexpected models %v", names)
	}
}
