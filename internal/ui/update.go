package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// chatEntry is one line of the visible transcript.
type chatEntry struct {
	role    string // "user" or "assistant"
	content string
}

// uiState is the mutable view state of the Bubble Tea model.
type uiState struct {
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	messages          []chatEntry
	statusPhase       string
	statusMessage     string
	contextLine       string
	pendingPermission string
	canSubmit         bool

	width    int
	height   int
	dotCount int
}

// bubbleTeaModel implements tea.Model over the UI's channels.
type bubbleTeaModel struct {
	state    uiState
	renderer MarkdownRenderer

	inputReq  <-chan string
	inputResp chan<- string
	permReq   <-chan string
	permResp  chan<- PermissionDecision
	statusCh  <-chan statusUpdate
	messageCh <-chan string
	contextCh <-chan string
	clearCh   <-chan struct{}
	readyCh   chan<- struct{}
}

type statusUpdate struct {
	phase   string
	message string
}

// Internal tea messages fed by the channel listeners.
type tickMsg time.Time
type inputRequestMsg string
type permRequestMsg string
type statusUpdateMsg statusUpdate
type messageReceivedMsg string
type contextUpdateMsg string
type clearScreenMsg struct{}

func newBubbleTeaModel(u *UI, renderer MarkdownRenderer) bubbleTeaModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return bubbleTeaModel{
		state: uiState{
			input:    ti,
			viewport: vp,
			spinner:  sp,
			width:    80,
			height:   24,
		},
		renderer:  renderer,
		inputReq:  u.inputReq,
		inputResp: u.inputResp,
		permReq:   u.permReq,
		permResp:  u.permResp,
		statusCh:  u.statusCh,
		messageCh: u.messageCh,
		contextCh: u.contextCh,
		clearCh:   u.clearCh,
		readyCh:   u.readyCh,
	}
}

func (m bubbleTeaModel) Init() tea.Cmd {
	if m.readyCh != nil {
		close(m.readyCh)
	}
	return tea.Batch(
		textinput.Blink,
		m.state.spinner.Tick,
		tick(),
		listenString(m.inputReq, func(s string) tea.Msg { return inputRequestMsg(s) }),
		listenString(m.permReq, func(s string) tea.Msg { return permRequestMsg(s) }),
		listenStatus(m.statusCh),
		listenString(m.messageCh, func(s string) tea.Msg { return messageReceivedMsg(s) }),
		listenString(m.contextCh, func(s string) tea.Msg { return contextUpdateMsg(s) }),
		listenClear(m.clearCh),
	)
}

func (m bubbleTeaModel) View() string {
	return renderRoot(m.state, m.renderer)
}

func (m bubbleTeaModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.state.width = msg.Width
		m.state.height = msg.Height
		m.state.viewport.Width = msg.Width
		m.state.viewport.Height = msg.Height - 6
		m.refreshViewport()
		return m, nil

	case tickMsg:
		m.state.dotCount = (m.state.dotCount + 1) % 4
		var cmd tea.Cmd
		m.state.spinner, cmd = m.state.spinner.Update(msg)
		return m, tea.Batch(cmd, tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.state.spinner, cmd = m.state.spinner.Update(msg)
		return m, cmd

	case inputRequestMsg:
		m.state.canSubmit = true
		m.state.input.Placeholder = string(msg)
		return m, listenString(m.inputReq, func(s string) tea.Msg { return inputRequestMsg(s) })

	case permRequestMsg:
		m.state.pendingPermission = string(msg)
		return m, listenString(m.permReq, func(s string) tea.Msg { return permRequestMsg(s) })

	case statusUpdateMsg:
		m.state.statusPhase = msg.phase
		m.state.statusMessage = msg.message
		return m, listenStatus(m.statusCh)

	case messageReceivedMsg:
		m.state.messages = append(m.state.messages, chatEntry{role: "assistant", content: string(msg)})
		m.refreshViewport()
		return m, listenString(m.messageCh, func(s string) tea.Msg { return messageReceivedMsg(s) })

	case contextUpdateMsg:
		m.state.contextLine = string(msg)
		return m, listenString(m.contextCh, func(s string) tea.Msg { return contextUpdateMsg(s) })

	case clearScreenMsg:
		m.state.messages = nil
		m.refreshViewport()
		return m, listenClear(m.clearCh)
	}

	var cmd tea.Cmd
	m.state.input, cmd = m.state.input.Update(msg)
	return m, cmd
}

func (m bubbleTeaModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.pendingPermission != "" {
		switch msg.String() {
		case "y":
			m.permResp <- DecisionAllow
			m.state.pendingPermission = ""
		case "n":
			m.permResp <- DecisionDeny
			m.state.pendingPermission = ""
		case "a":
			m.permResp <- DecisionAllowAlways
			m.state.pendingPermission = ""
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		if m.state.canSubmit && m.state.input.Value() != "" {
			input := m.state.input.Value()
			m.state.messages = append(m.state.messages, chatEntry{role: "user", content: input})
			m.refreshViewport()

			m.inputResp <- input
			m.state.input.SetValue("")
			m.state.canSubmit = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.state.input, cmd = m.state.input.Update(msg)
	return m, cmd
}

func (m *bubbleTeaModel) refreshViewport() {
	content := formatChatContent(m.state.messages, m.state.width-4, m.renderer)
	m.state.viewport.SetContent(content)
	m.state.viewport.GotoBottom()
}

func listenString(ch <-chan string, wrap func(string) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return wrap(<-ch)
	}
}

func listenStatus(ch <-chan statusUpdate) tea.Cmd {
	return func() tea.Msg {
		return statusUpdateMsg(<-ch)
	}
}

func listenClear(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return clearScreenMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
