package directory

import (
	"fmt"

	"github.com/arlo-cli/arlo/internal/textmatch"
)

// ResolveFuzzy finds the workspace file whose relative path best matches the
// fragment, using the same similarity ratio as snippet patching. The best
// candidate wins only if its score reaches the configured floor; ties keep
// the first-seen candidate, since the result is a suggestion the user
// confirms rather than a silent write.
func (s *Scanner) ResolveFuzzy(fragment string) (string, int, error) {
	if fragment == "" {
		return "", 0, ErrNoMatch
	}

	files, err := s.Files(0)
	if err != nil {
		return "", 0, err
	}

	bestPath := ""
	bestScore := -1
	for _, rel := range files {
		score := textmatch.Ratio(rel, fragment)
		if score > bestScore {
			bestScore = score
			bestPath = rel
		}
	}

	if bestPath == "" || bestScore < s.config.Fuzzy.MinFileScore {
		return "", 0, fmt.Errorf("%w: %q", ErrNoMatch, fragment)
	}
	return bestPath, bestScore, nil
}
