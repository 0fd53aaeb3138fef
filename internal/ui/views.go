package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary = lipgloss.Color("205")
	colorDim     = lipgloss.Color("241")

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true)

	assistantMessageStyle = lipgloss.NewStyle()

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)

	statusThinkingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusExecutingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusWarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusDefaultStyle   = lipgloss.NewStyle().Foreground(colorDim)

	permissionBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2)
)

// renderRoot composes the full frame.
func renderRoot(s uiState, renderer MarkdownRenderer) string {
	sections := []string{
		renderChat(s),
		renderInput(s),
		renderStatus(s),
	}

	if s.pendingPermission != "" {
		popup := renderPermission(s)
		return lipgloss.Place(
			s.width,
			s.height,
			lipgloss.Center,
			lipgloss.Center,
			popup,
			lipgloss.WithWhitespaceChars(""),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderChat(s uiState) string {
	if len(s.messages) == 0 {
		return "No messages yet. Type a message to start, or /help for commands."
	}
	return s.viewport.View()
}

// formatChatContent renders the transcript for the viewport. Assistant
// messages go through the markdown renderer; user lines stay plain.
func formatChatContent(messages []chatEntry, width int, renderer MarkdownRenderer) string {
	var lines []string
	for _, msg := range messages {
		if msg.role == "user" {
			lines = append(lines, userMessageStyle.Render("You: "+msg.content))
		} else {
			rendered, err := renderer.Render(msg.content, width)
			if err != nil {
				rendered = msg.content
			}
			lines = append(lines, assistantMessageStyle.Render(strings.TrimRight(rendered, "\n")))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func renderInput(s uiState) string {
	return inputStyle.Render(s.input.View())
}

func renderStatus(s uiState) string {
	var left string
	switch s.statusPhase {
	case "thinking":
		dots := strings.Repeat(".", s.dotCount)
		left = statusThinkingStyle.Render(fmt.Sprintf("%s %s%s", s.spinner.View(), s.statusMessage, dots))
	case "executing":
		left = statusExecutingStyle.Render(fmt.Sprintf("%s %s", s.spinner.View(), s.statusMessage))
	case "warning":
		left = statusWarningStyle.Render(s.statusMessage)
	default:
		left = statusDefaultStyle.Render("Ready")
	}

	right := ""
	if s.contextLine != "" {
		right = statusDefaultStyle.Render(s.contextLine)
	}
	if right == "" {
		return left
	}

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

func renderPermission(s uiState) string {
	content := s.pendingPermission +
		"\n\n" +
		statusDefaultStyle.Render("y: allow  n: deny  a: always allow")
	return permissionBoxStyle.Render(content)
}
