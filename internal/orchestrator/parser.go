package orchestrator

import (
	"regexp"
	"strings"

	chat "github.com/arlo-cli/arlo/internal/session/model"
	"github.com/google/uuid"
)

// Some models ignore native tool calling and emit calls inline as
// <function=name{...json args...}</function> markup inside the text body.
var textCallPattern = regexp.MustCompile(`(?s)<function=(\w+)\{(.*?)\}</function>`)

// parseTextCalls extracts inline tool calls from a text response. It returns
// the calls in order of appearance and the text with the call markup removed.
// Parsed calls get synthesized IDs since the markup carries none.
func parseTextCalls(text string) ([]chat.ToolCall, string) {
	matches := textCallPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, text
	}

	calls := make([]chat.ToolCall, 0, len(matches))
	for _, m := range matches {
		calls = append(calls, chat.ToolCall{
			ID:        "call_" + uuid.NewString(),
			Name:      m[1],
			Arguments: "{" + m[2] + "}",
		})
	}

	remaining := strings.TrimSpace(textCallPattern.ReplaceAllString(text, ""))
	return calls, remaining
}
