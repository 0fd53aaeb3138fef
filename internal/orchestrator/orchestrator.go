package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/arlo-cli/arlo/internal/orchestrator/adapter"
	"github.com/arlo-cli/arlo/internal/provider"
	pmodel "github.com/arlo-cli/arlo/internal/provider/model"
	chat "github.com/arlo-cli/arlo/internal/session/model"
	"github.com/arlo-cli/arlo/internal/ui"
)

// State describes where a turn ended up.
type State string

const (
	// StateAwaitingResponse means a provider call is in flight or pending.
	StateAwaitingResponse State = "awaiting_response"
	// StateExecuting means tool calls from the last response are running.
	StateExecuting State = "executing"
	// StateFinished means the model produced a final text answer.
	StateFinished State = "finished"
	// StateStepLimitReached means the reasoning step ceiling was hit.
	StateStepLimitReached State = "step_limit_reached"
)

// Conversation is the slice of session behavior the orchestrator needs.
type Conversation interface {
	// Append adds a message to the history
	Append(msg chat.Message)

	// PrepareForCall returns the messages to send, truncated to budget
	PrepareForCall() []chat.Message

	// Model returns the active model identifier
	Model() string
}

// Orchestrator drives the agent loop: provider call, tool execution, repeat
// until the model settles on a text answer or the step ceiling is hit.
type Orchestrator struct {
	provider     provider.Provider
	policy       PolicyService
	ui           ui.UserInterface
	conversation Conversation
	tools        map[string]adapter.Tool
	definitions  []pmodel.ToolDefinition
	maxSteps     int
}

// New creates a new Orchestrator instance and registers the tool
// definitions with the provider.
func New(p provider.Provider, pol PolicyService, userInterface ui.UserInterface, conversation Conversation, tools []adapter.Tool, maxSteps int) *Orchestrator {
	if p == nil {
		panic("provider is required")
	}
	if pol == nil {
		panic("policy is required")
	}
	if userInterface == nil {
		panic("userInterface is required")
	}
	if conversation == nil {
		panic("conversation is required")
	}
	if maxSteps <= 0 {
		panic("maxSteps must be positive")
	}

	toolMap := make(map[string]adapter.Tool, len(tools))
	definitions := make([]pmodel.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		toolMap[t.Name()] = t
		definitions = append(definitions, t.Definition())
	}
	p.DefineTools(definitions)

	return &Orchestrator{
		provider:     p,
		policy:       pol,
		ui:           userInterface,
		conversation: conversation,
		tools:        toolMap,
		definitions:  definitions,
		maxSteps:     maxSteps,
	}
}

// RunTurn processes one user input through the agent loop. It returns once
// the model answers in plain text, refuses, errors, or exhausts its step
// budget. Tool failures flow back to the model as tool output rather than
// aborting the turn.
func (o *Orchestrator) RunTurn(ctx context.Context, userInput string) (State, error) {
	o.conversation.Append(chat.UserMessage(userInput))

	steps := 0
	for {
		if ctx.Err() != nil {
			return StateAwaitingResponse, ctx.Err()
		}

		o.ui.WriteStatus("thinking", "Generating response...")

		req := &pmodel.GenerateRequest{
			Messages: o.conversation.PrepareForCall(),
			Tools:    o.definitions,
		}
		response, err := o.provider.Generate(ctx, req)
		if err != nil {
			var provErr *pmodel.ProviderError
			if errors.As(err, &provErr) {
				// Surface provider failures in the conversation so the
				// user sees them and the model can recover next turn.
				content := fmt.Sprintf("Error: %s", provErr.Message)
				o.conversation.Append(chat.AssistantMessage(content))
				o.ui.WriteMessage(content)
				return StateFinished, nil
			}
			return StateAwaitingResponse, fmt.Errorf("provider error: %w", err)
		}

		var calls []chat.ToolCall
		text := response.Content.Text

		switch response.Content.Type {
		case pmodel.ResponseTypeRefusal:
			content := fmt.Sprintf("I can't help with that: %s", response.Content.RefusalReason)
			o.conversation.Append(chat.AssistantMessage(content))
			o.ui.WriteMessage(content)
			return StateFinished, nil

		case pmodel.ResponseTypeToolCall:
			calls = response.Content.ToolCalls

		case pmodel.ResponseTypeText:
			calls, text = parseTextCalls(text)
			if len(calls) == 0 {
				o.conversation.Append(chat.AssistantMessage(text))
				o.ui.WriteMessage(text)
				return StateFinished, nil
			}

		default:
			return StateAwaitingResponse, fmt.Errorf("unknown response type %q", response.Content.Type)
		}

		msg := chat.AssistantMessage(text)
		msg.ToolCalls = calls
		o.conversation.Append(msg)
		if text != "" {
			o.ui.WriteMessage(text)
		}

		for _, call := range calls {
			result := o.executeToolCall(ctx, call)
			o.conversation.Append(chat.ToolMessage(call.ID, result))
		}

		steps++
		if steps >= o.maxSteps {
			o.ui.WriteStatus("warning", fmt.Sprintf("Stopped after %d reasoning steps", steps))
			return StateStepLimitReached, nil
		}
	}
}

func (o *Orchestrator) toolNames() []string {
	names := make([]string, 0, len(o.tools))
	for name := range o.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// executeToolCall runs a single tool call. Every failure mode is rendered
// as text for the model rather than returned as an error.
func (o *Orchestrator) executeToolCall(ctx context.Context, call chat.ToolCall) string {
	tool, exists := o.tools[call.Name]
	if !exists {
		return fmt.Sprintf("Error: unknown tool '%s'. Available tools: %s", call.Name, strings.Join(o.toolNames(), ", "))
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		return fmt.Sprintf("Error: invalid arguments for '%s': %v", call.Name, err)
	}

	if err := o.policy.CheckTool(ctx, call.Name, args); err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	o.ui.WriteStatus("executing", fmt.Sprintf("Running %s...", call.Name))
	result, err := tool.Execute(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return result
}
