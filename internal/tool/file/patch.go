package file

import (
	"strings"

	"github.com/arlo-cli/arlo/internal/textmatch"
)

// Match describes the best fuzzy window found for a snippet. Produced and
// consumed within a single patch operation.
type Match struct {
	Score       int
	WindowStart int
	WindowLen   int
	TieCount    int
}

// Patch replaces originalSnippet with newSnippet in content.
//
// The exact path runs first: if the snippet occurs verbatim, its first
// occurrence is replaced and fuzzy mode is never consulted. Otherwise a
// window the height of the snippet slides over the file's lines and each
// window is scored against the snippet; the single window at or above
// minScore wins. Two or more qualifying windows is an AmbiguousMatchError,
// none is a NoMatchError.
func Patch(path, content, originalSnippet, newSnippet string, minScore int, fuzzyEnabled bool) (string, error) {
	if originalSnippet == "" {
		return "", ErrEmptySnippet
	}

	if strings.Contains(content, originalSnippet) {
		return strings.Replace(content, originalSnippet, newSnippet, 1), nil
	}

	if !fuzzyEnabled {
		return "", &NoMatchError{Path: path, Reason: "exact snippet not found, fuzzy disabled"}
	}

	match, err := bestWindow(path, content, originalSnippet, minScore)
	if err != nil {
		return "", err
	}
	if match.TieCount > 1 {
		return "", &AmbiguousMatchError{Path: path, Count: match.TieCount, Score: minScore}
	}

	fileLines := strings.Split(content, "\n")
	newLines := strings.Split(newSnippet, "\n")

	replaced := make([]string, 0, len(fileLines)-match.WindowLen+len(newLines))
	replaced = append(replaced, fileLines[:match.WindowStart]...)
	replaced = append(replaced, newLines...)
	replaced = append(replaced, fileLines[match.WindowStart+match.WindowLen:]...)

	return strings.Join(replaced, "\n"), nil
}

// bestWindow scores every window of snippet height against the snippet and
// returns the maximum, counting how many offsets reach minScore.
func bestWindow(path, content, snippet string, minScore int) (Match, error) {
	fileLines := strings.Split(content, "\n")
	snippetLines := strings.Split(snippet, "\n")

	w := len(snippetLines)
	if w > len(fileLines) {
		return Match{}, &NoMatchError{Path: path, Reason: "snippet is taller than the file"}
	}

	target := strings.Join(snippetLines, "\n")

	best := Match{Score: -1, WindowLen: w}
	qualifying := 0
	for offset := 0; offset <= len(fileLines)-w; offset++ {
		window := strings.Join(fileLines[offset:offset+w], "\n")
		score := textmatch.Ratio(window, target)
		if score >= minScore {
			qualifying++
		}
		if score > best.Score {
			best.Score = score
			best.WindowStart = offset
		}
	}

	if best.Score < minScore {
		return Match{}, &NoMatchError{Path: path, Reason: "no window scored above the floor", BestScore: best.Score}
	}

	best.TieCount = qualifying
	return best, nil
}
