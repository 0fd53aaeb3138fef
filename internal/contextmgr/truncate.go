package contextmgr

import (
	"github.com/arlo-cli/arlo/internal/session/model"
)

// historyBudgetFraction is the share of the context window reserved for
// retained history after truncation; the remainder is headroom for the
// model's next response.
const historyBudgetFraction = 0.6

// Truncator reduces a message list to fit a model's token budget using a
// sliding window over the newest messages.
type Truncator struct {
	accountant *Accountant
}

// NewTruncator creates a Truncator that shares the accountant's estimator.
func NewTruncator(accountant *Accountant) *Truncator {
	if accountant == nil {
		panic("accountant is required")
	}
	return &Truncator{accountant: accountant}
}

// Truncate returns a message list that fits within 60% of the model's
// context window. The first message (the system prompt) is always
// retained. The remaining budget is filled by walking the other messages
// newest-first and greedily accepting until the next older message would
// overflow; accepted messages keep their original relative order. When
// nothing fits, the single most recent message is kept regardless of
// size so the conversation always retains a head and a tail.
//
// Lists of length <= 1 are returned unchanged.
func (t *Truncator) Truncate(messages []model.Message, modelName string) []model.Message {
	if len(messages) <= 1 {
		return messages
	}

	head := messages[0]
	rest := messages[1:]

	maxTokens := t.accountant.cfg.ContextWindow(modelName)
	available := int(float64(maxTokens)*historyBudgetFraction) - t.accountant.MessageTokens(head)

	// Walk backwards so the most recent exchange survives.
	kept := 0
	used := 0
	for i := len(rest) - 1; i >= 0; i-- {
		cost := t.accountant.MessageTokens(rest[i])
		if used+cost > available {
			break
		}
		used += cost
		kept++
	}

	if kept == 0 {
		// Even the newest message is over budget; keep it anyway.
		return append([]model.Message{head}, rest[len(rest)-1])
	}

	result := make([]model.Message, 0, kept+1)
	result = append(result, head)
	result = append(result, rest[len(rest)-kept:]...)
	return result
}
