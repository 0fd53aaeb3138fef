// Package contextmgr keeps the conversation inside a model's token
// budget: it estimates usage, classifies it against thresholds, and
// performs sliding-window truncation when the budget is exceeded.
package contextmgr

import (
	"github.com/pkoukk/tiktoken-go"
)

// Estimator counts tokens in a piece of text. Implementations trade
// accuracy for speed; estimates feed a hard ceiling, not billing.
type Estimator interface {
	CountTokens(text string) int
}

// HeuristicEstimator approximates one token per four characters,
// rounding up. Deterministic and dependency-free.
type HeuristicEstimator struct{}

func (HeuristicEstimator) CountTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + 3) / 4
}

// TiktokenEstimator counts tokens with the cl100k_base subword encoding.
type TiktokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenEstimator loads the cl100k_base encoding. Returns an error
// when the encoding data is unavailable; callers fall back to the
// heuristic in that case.
func NewTiktokenEstimator() (*TiktokenEstimator, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TiktokenEstimator{encoding: encoding}, nil
}

func (e *TiktokenEstimator) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(e.encoding.Encode(text, nil, nil))
}

// NewEstimator returns the exact tokenizer when available and the
// four-chars-per-token heuristic otherwise.
func NewEstimator() Estimator {
	if exact, err := NewTiktokenEstimator(); err == nil {
		return exact
	}
	return HeuristicEstimator{}
}
