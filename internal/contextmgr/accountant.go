package contextmgr

import (
	"github.com/arlo-cli/arlo/internal/config"
	"github.com/arlo-cli/arlo/internal/session/model"
)

// ContextInfo describes how full a model's context window is for a given
// message list. It is derived on demand and never cached across mutations.
type ContextInfo struct {
	Model           string
	Messages        int
	EstimatedTokens int
	MaxTokens       int
	UsagePercent    float64

	// ApproachingLimit is set at the warning threshold (default 70%),
	// CriticalLimit at the aggressive-truncation threshold (default 85%).
	ApproachingLimit bool
	CriticalLimit    bool
}

// Accountant estimates token usage of a conversation against a model's
// context window. Pure: no side effects, no stored state beyond its
// estimator and configuration.
type Accountant struct {
	estimator Estimator
	cfg       *config.Config
}

// NewAccountant creates an Accountant with the given estimator.
func NewAccountant(estimator Estimator, cfg *config.Config) *Accountant {
	if estimator == nil {
		panic("estimator is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Accountant{estimator: estimator, cfg: cfg}
}

// Estimate computes the context usage of messages for model. Empty
// content counts as zero tokens.
func (a *Accountant) Estimate(messages []model.Message, modelName string) ContextInfo {
	total := 0
	for _, msg := range messages {
		total += a.estimator.CountTokens(msg.Content)
	}

	maxTokens := a.cfg.ContextWindow(modelName)
	usagePercent := float64(total) / float64(maxTokens) * 100

	return ContextInfo{
		Model:            modelName,
		Messages:         len(messages),
		EstimatedTokens:  total,
		MaxTokens:        maxTokens,
		UsagePercent:     usagePercent,
		ApproachingLimit: usagePercent >= a.cfg.Conversation.WarningThreshold*100,
		CriticalLimit:    usagePercent >= a.cfg.Conversation.CriticalThreshold*100,
	}
}

// MessageTokens returns the estimate for a single message.
func (a *Accountant) MessageTokens(msg model.Message) int {
	return a.estimator.CountTokens(msg.Content)
}
