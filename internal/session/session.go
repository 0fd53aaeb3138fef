// Package session owns the conversation state: message history, the
// active model, and the context-budget bookkeeping around them.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/arlo-cli/arlo/internal/config"
	"github.com/arlo-cli/arlo/internal/contextmgr"
	chat "github.com/arlo-cli/arlo/internal/session/model"
)

// ErrEmptyModel is returned when switching to a blank model identifier.
var ErrEmptyModel = errors.New("model identifier cannot be empty")

// Session is the conversation state for one interactive run. It is not
// safe for concurrent use; the REPL drives it from a single goroutine.
type Session struct {
	messages   []chat.Message
	modelName  string
	workingDir string

	accountant *contextmgr.Accountant
	truncator  *contextmgr.Truncator
	config     *config.Config
	snapshot   SnapshotFunc

	fuzzyEnabled bool
}

// New creates a Session seeded with a system prompt built from a fresh
// environment snapshot.
func New(cfg *config.Config, accountant *contextmgr.Accountant, truncator *contextmgr.Truncator, snapshot SnapshotFunc, workingDir string) *Session {
	if cfg == nil {
		panic("cfg is required")
	}
	if accountant == nil {
		panic("accountant is required")
	}
	if truncator == nil {
		panic("truncator is required")
	}
	if snapshot == nil {
		panic("snapshot is required")
	}

	s := &Session{
		modelName:    cfg.Models.DefaultModel,
		workingDir:   workingDir,
		accountant:   accountant,
		truncator:    truncator,
		config:       cfg,
		snapshot:     snapshot,
		fuzzyEnabled: cfg.Fuzzy.Enabled,
	}
	s.reset()
	return s
}

// reset rebuilds the history down to a fresh system prompt.
func (s *Session) reset() {
	prompt := buildSystemPrompt(s.snapshot(s.workingDir))
	s.messages = []chat.Message{chat.SystemMessage(prompt)}
}

// Append adds a message to the history.
func (s *Session) Append(msg chat.Message) {
	s.messages = append(s.messages, msg)
}

// History returns a copy of the full message list.
func (s *Session) History() []chat.Message {
	out := make([]chat.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Model returns the active model identifier.
func (s *Session) Model() string {
	return s.modelName
}

// SwitchModel changes the active model. History is preserved; the context
// budget is re-evaluated against the new model's window on the next call.
func (s *Session) SwitchModel(name string) error {
	if name == "" {
		return ErrEmptyModel
	}
	s.modelName = name
	return nil
}

// Clear drops the conversation and re-seeds the system prompt from a
// fresh environment snapshot.
func (s *Session) Clear() {
	s.reset()
}

// WorkingDir returns the current workspace root.
func (s *Session) WorkingDir() string {
	return s.workingDir
}

// UpdateWorkingDir moves the session to a new workspace root and refreshes
// the system prompt in place. Conversation history is preserved.
func (s *Session) UpdateWorkingDir(dir string) {
	s.workingDir = dir
	prompt := buildSystemPrompt(s.snapshot(s.workingDir))
	s.messages[0] = chat.SystemMessage(prompt)
}

// RemoveMatching drops every history message the predicate selects and
// returns how many were removed. The leading system prompt is never
// considered.
func (s *Session) RemoveMatching(match func(chat.Message) bool) int {
	kept := s.messages[:1]
	removed := 0
	for _, msg := range s.messages[1:] {
		if match(msg) {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	s.messages = kept
	return removed
}

// FuzzyEnabled reports whether fuzzy snippet matching is on for edits.
func (s *Session) FuzzyEnabled() bool {
	return s.fuzzyEnabled
}

// ToggleFuzzy flips fuzzy matching and returns the new state.
func (s *Session) ToggleFuzzy() bool {
	s.fuzzyEnabled = !s.fuzzyEnabled
	return s.fuzzyEnabled
}

// ContextInfo returns the current context-window usage.
func (s *Session) ContextInfo() contextmgr.ContextInfo {
	return s.accountant.Estimate(s.messages, s.modelName)
}

// PrepareForCall returns the messages to send to the provider. When usage
// crosses the critical threshold (or exceeds the window outright) the
// history is truncated first, and the truncated list replaces the stored
// history so the session does not regrow past the budget immediately.
func (s *Session) PrepareForCall() []chat.Message {
	info := s.ContextInfo()
	if info.CriticalLimit || info.EstimatedTokens > info.MaxTokens {
		s.messages = s.truncator.Truncate(s.messages, s.modelName)
	}
	return s.History()
}

// exportEnvelope is the on-disk layout of an exported conversation.
type exportEnvelope struct {
	ExportedAt    string         `json:"exported_at"`
	Model         string         `json:"model"`
	TotalMessages int            `json:"total_messages"`
	Messages      []chat.Message `json:"messages"`
}

// ExportJSON serializes the conversation for sharing. System messages are
// omitted: the environment snapshot is machine-local noise in a transcript.
func (s *Session) ExportJSON(now time.Time) ([]byte, error) {
	visible := make([]chat.Message, 0, len(s.messages))
	for _, msg := range s.messages {
		if msg.Role == chat.RoleSystem {
			continue
		}
		visible = append(visible, msg)
	}

	envelope := exportEnvelope{
		ExportedAt:    now.UTC().Format(time.RFC3339),
		Model:         s.modelName,
		TotalMessages: len(visible),
		Messages:      visible,
	}
	return json.MarshalIndent(envelope, "", "  ")
}
