package directory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tree renders an indented summary of the workspace for environment
// snapshots. Depth and entry count are capped by configuration so the
// summary stays small relative to the context window.
func (s *Scanner) Tree() (string, error) {
	info, err := s.fs.Stat(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileMissing, s.root)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotADirectory, s.root)
	}

	var b strings.Builder
	b.WriteString(filepath.Base(s.root) + "/\n")

	entries := 0
	maxEntries := s.config.Files.TreeMaxEntries
	maxDepth := s.config.Files.TreeMaxDepth
	truncated := false

	err = s.walk(s.root, "", func(rel string, info os.FileInfo) bool {
		depth := strings.Count(rel, "/") + 1
		if depth > maxDepth {
			return true
		}
		if entries >= maxEntries {
			truncated = true
			return false
		}
		entries++

		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(info.Name())
		if info.IsDir() {
			b.WriteString("/")
		}
		b.WriteString("\n")
		return true
	})
	if err != nil && !errors.Is(err, errWalkStopped) {
		return "", err
	}

	if truncated {
		b.WriteString(fmt.Sprintf("  ... (truncated at %d entries)\n", maxEntries))
	}
	return b.String(), nil
}
