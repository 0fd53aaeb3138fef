package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// UI implements UserInterface with a Bubble Tea program. The program owns
// the terminal; the REPL talks to it through channels so blocking reads
// never freeze rendering.
type UI struct {
	program *tea.Program

	inputReq  chan string
	inputResp chan string
	permReq   chan string
	permResp  chan PermissionDecision
	statusCh  chan statusUpdate
	messageCh chan string
	contextCh chan string
	clearCh   chan struct{}
	readyCh   chan struct{}
}

// New creates the UI. Call Start from the main goroutine; it blocks until
// the program exits.
func New(renderer MarkdownRenderer) *UI {
	u := &UI{
		inputReq:  make(chan string),
		inputResp: make(chan string),
		permReq:   make(chan string),
		permResp:  make(chan PermissionDecision),
		statusCh:  make(chan statusUpdate, 10),
		messageCh: make(chan string, 10),
		contextCh: make(chan string, 4),
		clearCh:   make(chan struct{}, 1),
		readyCh:   make(chan struct{}),
	}
	model := newBubbleTeaModel(u, renderer)
	u.program = tea.NewProgram(model, tea.WithAltScreen())
	return u
}

// Start runs the program until the user quits.
func (u *UI) Start() error {
	_, err := u.program.Run()
	return err
}

// Quit stops the program.
func (u *UI) Quit() {
	u.program.Quit()
}

// Ready is closed once the program is accepting requests.
func (u *UI) Ready() <-chan struct{} {
	return u.readyCh
}

// ReadInput prompts the user and blocks until they submit a line.
func (u *UI) ReadInput(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case u.inputReq <- prompt:
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case response := <-u.inputResp:
		return response, nil
	}
}

// ReadPermission shows a confirmation popup and blocks for the decision.
func (u *UI) ReadPermission(ctx context.Context, prompt string) (PermissionDecision, error) {
	select {
	case <-ctx.Done():
		return DecisionDeny, ctx.Err()
	case u.permReq <- prompt:
	}
	select {
	case <-ctx.Done():
		return DecisionDeny, ctx.Err()
	case decision := <-u.permResp:
		return decision, nil
	}
}

// WriteStatus updates the status bar. Non-blocking; stale updates are
// dropped when the UI is behind.
func (u *UI) WriteStatus(phase string, message string) {
	select {
	case u.statusCh <- statusUpdate{phase: phase, message: message}:
	default:
	}
}

// WriteMessage appends an assistant message to the transcript.
func (u *UI) WriteMessage(content string) {
	select {
	case u.messageCh <- content:
	default:
	}
}

// WriteContextUsage updates the model/usage segment of the status bar.
func (u *UI) WriteContextUsage(model string, usagePercent float64) {
	line := fmt.Sprintf("%s | %.1f%% context", model, usagePercent)
	select {
	case u.contextCh <- line:
	default:
	}
}

// ClearScreen wipes the transcript.
func (u *UI) ClearScreen() {
	select {
	case u.clearCh <- struct{}{}:
	default:
	}
}
