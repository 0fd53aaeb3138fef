package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/arlo-cli/arlo/internal/orchestrator/adapter"
	pmodel "github.com/arlo-cli/arlo/internal/provider/model"
	chat "github.com/arlo-cli/arlo/internal/session/model"
)

// scriptedProvider returns canned responses in order.
type scriptedProvider struct {
	responses []*pmodel.GenerateResponse
	errs      []error
	requests  []*pmodel.GenerateRequest
	defs      []pmodel.ToolDefinition
	model     string
}

func (p *scriptedProvider) Generate(ctx context.Context, req *pmodel.GenerateRequest) (*pmodel.GenerateResponse, error) {
	call := len(p.requests)
	p.requests = append(p.requests, req)
	if call < len(p.errs) && p.errs[call] != nil {
		return nil, p.errs[call]
	}
	if call >= len(p.responses) {
		return nil, errors.New("no more scripted responses")
	}
	return p.responses[call], nil
}

func (p *scriptedProvider) SetModel(model string) error { p.model = model; return nil }
func (p *scriptedProvider) GetModel() string            { return p.model }
func (p *scriptedProvider) ListModels(ctx context.Context) ([]string, error) {
	return []string{p.model}, nil
}
func (p *scriptedProvider) DefineTools(defs []pmodel.ToolDefinition) { p.defs = defs }

// memConversation is a slice-backed Conversation.
type memConversation struct {
	messages []chat.Message
}

func (c *memConversation) Append(msg chat.Message) {
	c.messages = append(c.messages, msg)
}

func (c *memConversation) PrepareForCall() []chat.Message {
	out := make([]chat.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *memConversation) Model() string { return "test-model" }

// fakeTool answers with a fixed result or error and records its arguments.
type fakeTool struct {
	name   string
	result string
	err    error
	args   []map[string]any
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake tool" }
func (f *fakeTool) Definition() pmodel.ToolDefinition {
	return pmodel.ToolDefinition{Name: f.name, Description: "fake tool"}
}

func (f *fakeTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	f.args = append(f.args, args)
	return f.result, f.err
}

type allowAllPolicy struct{}

func (allowAllPolicy) CheckTool(ctx context.Context, toolName string, args map[string]any) error {
	return nil
}

func textResponse(text string) *pmodel.GenerateResponse {
	return &pmodel.GenerateResponse{
		Content: pmodel.ResponseContent{Type: pmodel.ResponseTypeText, Text: text},
	}
}

func toolCallResponse(calls ...chat.ToolCall) *pmodel.GenerateResponse {
	return &pmodel.GenerateResponse{
		Content: pmodel.ResponseContent{Type: pmodel.ResponseTypeToolCall, ToolCalls: calls},
	}
}

func TestRunTurnTextAnswer(t *testing.T) {
	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{textResponse("Hello!")}}
	conv := &memConversation{}
	u := &fakeUI{}
	o := New(p, allowAllPolicy{}, u, conv, nil, 10)

	state, err := o.RunTurn(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if state != StateFinished {
		t.Errorf("state = %v, want finished", state)
	}
	if len(conv.messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(conv.messages))
	}
	if conv.messages[0].Role != chat.RoleUser || conv.messages[0].Content != "Hi" {
		t.Errorf("messages[0] = %+v", conv.messages[0])
	}
	if conv.messages[1].Role != chat.RoleAssistant || conv.messages[1].Content != "Hello!" {
		t.Errorf("messages[1] = %+v", conv.messages[1])
	}
	if len(u.messages) != 1 || u.messages[0] != "Hello!" {
		t.Errorf("ui.messages = %v", u.messages)
	}
}

// The canonical loop: the model asks for a calculation tool, gets its
// result back as a Tool message, then answers in text.
func TestRunTurnToolCallThenAnswer(t *testing.T) {
	calc := &fakeTool{name: "calculator", result: `{"value": 4}`}
	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{
		toolCallResponse(chat.ToolCall{ID: "call_1", Name: "calculator", Arguments: `{"expression": "2+2"}`}),
		textResponse("2 and 2 makes 4."),
	}}
	conv := &memConversation{}
	u := &fakeUI{}
	o := New(p, allowAllPolicy{}, u, conv, []adapter.Tool{calc}, 10)

	state, err := o.RunTurn(context.Background(), "Add 2 and 2")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if state != StateFinished {
		t.Errorf("state = %v, want finished", state)
	}

	// user, assistant(tool call), tool result, assistant(answer)
	if len(conv.messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(conv.messages))
	}
	if len(conv.messages[1].ToolCalls) != 1 {
		t.Errorf("assistant message should carry the tool call")
	}
	toolMsg := conv.messages[2]
	if toolMsg.Role != chat.RoleTool || toolMsg.ToolCallID != "call_1" {
		t.Errorf("tool message = %+v", toolMsg)
	}
	if toolMsg.Content != `{"value": 4}` {
		t.Errorf("tool result = %q", toolMsg.Content)
	}
	if conv.messages[3].Content != "2 and 2 makes 4." {
		t.Errorf("final answer = %q", conv.messages[3].Content)
	}
	if len(calc.args) != 1 || calc.args[0]["expression"] != "2+2" {
		t.Errorf("tool args = %v", calc.args)
	}
}

func TestRunTurnSequentialToolCalls(t *testing.T) {
	order := make([]string, 0, 2)
	first := &orderTool{name: "first", order: &order}
	second := &orderTool{name: "second", order: &order}

	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{
		toolCallResponse(
			chat.ToolCall{ID: "c1", Name: "first", Arguments: `{}`},
			chat.ToolCall{ID: "c2", Name: "second", Arguments: `{}`},
		),
		textResponse("done"),
	}}
	conv := &memConversation{}
	o := New(p, allowAllPolicy{}, &fakeUI{}, conv, []adapter.Tool{first, second}, 10)

	if _, err := o.RunTurn(context.Background(), "go"); err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("execution order = %v", order)
	}
}

type orderTool struct {
	name  string
	order *[]string
}

func (o *orderTool) Name() string        { return o.name }
func (o *orderTool) Description() string { return "order probe" }
func (o *orderTool) Definition() pmodel.ToolDefinition {
	return pmodel.ToolDefinition{Name: o.name}
}
func (o *orderTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	*o.order = append(*o.order, o.name)
	return "ok", nil
}

func TestRunTurnUnknownTool(t *testing.T) {
	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{
		toolCallResponse(chat.ToolCall{ID: "c1", Name: "teleport", Arguments: `{}`}),
		textResponse("sorry"),
	}}
	conv := &memConversation{}
	calc := &fakeTool{name: "calculator", result: "ok"}
	o := New(p, allowAllPolicy{}, &fakeUI{}, conv, []adapter.Tool{calc}, 10)

	if _, err := o.RunTurn(context.Background(), "go"); err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	toolMsg := conv.messages[2]
	if !strings.Contains(toolMsg.Content, "unknown tool 'teleport'") {
		t.Errorf("tool result = %q, want unknown tool error", toolMsg.Content)
	}
	if !strings.Contains(toolMsg.Content, "Available tools: calculator") {
		t.Errorf("tool result = %q, want listing of available tools", toolMsg.Content)
	}
}

func TestRunTurnBadArguments(t *testing.T) {
	calc := &fakeTool{name: "calculator", result: "ok"}
	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{
		toolCallResponse(chat.ToolCall{ID: "c1", Name: "calculator", Arguments: `{not json`}),
		textResponse("sorry"),
	}}
	conv := &memConversation{}
	o := New(p, allowAllPolicy{}, &fakeUI{}, conv, []adapter.Tool{calc}, 10)

	if _, err := o.RunTurn(context.Background(), "go"); err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if !strings.Contains(conv.messages[2].Content, "invalid arguments") {
		t.Errorf("tool result = %q, want invalid arguments error", conv.messages[2].Content)
	}
	if len(calc.args) != 0 {
		t.Error("tool must not run with unparseable arguments")
	}
}

func TestRunTurnToolFailureContinuesLoop(t *testing.T) {
	calc := &fakeTool{name: "calculator", err: errors.New("division by zero")}
	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{
		toolCallResponse(chat.ToolCall{ID: "c1", Name: "calculator", Arguments: `{}`}),
		textResponse("that failed"),
	}}
	conv := &memConversation{}
	o := New(p, allowAllPolicy{}, &fakeUI{}, conv, []adapter.Tool{calc}, 10)

	state, err := o.RunTurn(context.Background(), "go")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if state != StateFinished {
		t.Errorf("state = %v, want finished", state)
	}
	if !strings.Contains(conv.messages[2].Content, "division by zero") {
		t.Errorf("tool result = %q", conv.messages[2].Content)
	}
}

func TestRunTurnPolicyDenial(t *testing.T) {
	sh := &fakeTool{name: "run_bash", result: "ok"}
	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{
		toolCallResponse(chat.ToolCall{ID: "c1", Name: "run_bash", Arguments: `{"command": "rm -rf /"}`}),
		textResponse("blocked"),
	}}
	conv := &memConversation{}
	o := New(p, denyAllPolicy{}, &fakeUI{}, conv, []adapter.Tool{sh}, 10)

	if _, err := o.RunTurn(context.Background(), "go"); err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if !strings.Contains(conv.messages[2].Content, "Error:") {
		t.Errorf("tool result = %q, want policy error", conv.messages[2].Content)
	}
	if len(sh.args) != 0 {
		t.Error("tool must not run after policy denial")
	}
}

type denyAllPolicy struct{}

func (denyAllPolicy) CheckTool(ctx context.Context, toolName string, args map[string]any) error {
	return fmt.Errorf("tool '%s' is denied by policy", toolName)
}

func TestRunTurnProviderErrorSurfacesAsMessage(t *testing.T) {
	p := &scriptedProvider{errs: []error{
		&pmodel.ProviderError{Code: pmodel.ErrorCodeRateLimit, Message: "rate limit exceeded"},
	}}
	conv := &memConversation{}
	u := &fakeUI{}
	o := New(p, allowAllPolicy{}, u, conv, nil, 10)

	state, err := o.RunTurn(context.Background(), "Hi")
	if err != nil {
		t.Fatalf("RunTurn() error = %v, provider errors must not abort the turn", err)
	}
	if state != StateFinished {
		t.Errorf("state = %v, want finished", state)
	}
	last := conv.messages[len(conv.messages)-1]
	if last.Role != chat.RoleAssistant || !strings.Contains(last.Content, "rate limit exceeded") {
		t.Errorf("last message = %+v", last)
	}
	if len(u.messages) != 1 {
		t.Error("provider error must be shown to the user")
	}
}

func TestRunTurnUnexpectedErrorPropagates(t *testing.T) {
	p := &scriptedProvider{errs: []error{errors.New("socket exploded")}}
	o := New(p, allowAllPolicy{}, &fakeUI{}, &memConversation{}, nil, 10)

	if _, err := o.RunTurn(context.Background(), "Hi"); err == nil {
		t.Error("non-provider errors must propagate")
	}
}

func TestRunTurnRefusal(t *testing.T) {
	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{{
		Content: pmodel.ResponseContent{
			Type:          pmodel.ResponseTypeRefusal,
			RefusalReason: "safety",
		},
	}}}
	conv := &memConversation{}
	u := &fakeUI{}
	o := New(p, allowAllPolicy{}, u, conv, nil, 10)

	state, err := o.RunTurn(context.Background(), "do bad things")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if state != StateFinished {
		t.Errorf("state = %v, want finished", state)
	}
	if !strings.Contains(conv.messages[1].Content, "safety") {
		t.Errorf("refusal message = %q", conv.messages[1].Content)
	}
}

func TestRunTurnStepLimit(t *testing.T) {
	loop := &fakeTool{name: "spin", result: "again"}

	// Every response asks for another tool call; the loop must stop at
	// the configured ceiling.
	responses := make([]*pmodel.GenerateResponse, 0, 20)
	for range 20 {
		responses = append(responses, toolCallResponse(
			chat.ToolCall{ID: "c", Name: "spin", Arguments: `{}`},
		))
	}
	p := &scriptedProvider{responses: responses}
	conv := &memConversation{}
	o := New(p, allowAllPolicy{}, &fakeUI{}, conv, []adapter.Tool{loop}, 3)

	state, err := o.RunTurn(context.Background(), "go")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if state != StateStepLimitReached {
		t.Errorf("state = %v, want step limit reached", state)
	}
	if len(p.requests) != 3 {
		t.Errorf("provider calls = %d, want 3", len(p.requests))
	}
	if len(loop.args) != 3 {
		t.Errorf("tool executions = %d, want 3", len(loop.args))
	}
}

func TestRunTurnTextFallbackParsing(t *testing.T) {
	calc := &fakeTool{name: "calculator", result: `{"value": 4}`}
	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{
		textResponse(`Let me compute that. <function=calculator{"expression": "2+2"}</function>`),
		textResponse("It's 4."),
	}}
	conv := &memConversation{}
	u := &fakeUI{}
	o := New(p, allowAllPolicy{}, u, conv, []adapter.Tool{calc}, 10)

	state, err := o.RunTurn(context.Background(), "Add 2 and 2")
	if err != nil {
		t.Fatalf("RunTurn() error = %v", err)
	}
	if state != StateFinished {
		t.Errorf("state = %v, want finished", state)
	}

	assistant := conv.messages[1]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Name != "calculator" {
		t.Fatalf("assistant tool calls = %+v", assistant.ToolCalls)
	}
	if assistant.Content != "Let me compute that." {
		t.Errorf("assistant content = %q, want markup stripped", assistant.Content)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(assistant.ToolCalls[0].Arguments), &args); err != nil {
		t.Fatalf("parsed arguments invalid: %v", err)
	}
	if args["expression"] != "2+2" {
		t.Errorf("args = %v", args)
	}
	if len(calc.args) != 1 {
		t.Errorf("tool executions = %d, want 1", len(calc.args))
	}
}

func TestRunTurnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &scriptedProvider{responses: []*pmodel.GenerateResponse{textResponse("hi")}}
	o := New(p, allowAllPolicy{}, &fakeUI{}, &memConversation{}, nil, 10)

	if _, err := o.RunTurn(ctx, "Hi"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNewRegistersToolDefinitions(t *testing.T) {
	calc := &fakeTool{name: "calculator"}
	p := &scriptedProvider{}
	New(p, allowAllPolicy{}, &fakeUI{}, &memConversation{}, []adapter.Tool{calc}, 10)

	if len(p.defs) != 1 || p.defs[0].Name != "calculator" {
		t.Errorf("provider definitions = %+v", p.defs)
	}
}
