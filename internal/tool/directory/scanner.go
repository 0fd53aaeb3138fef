package directory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/arlo-cli/arlo/internal/config"
)

// fileLister defines the filesystem operations needed for walking directories.
type fileLister interface {
	Stat(path string) (os.FileInfo, error)
	ListDir(path string) ([]os.FileInfo, error)
}

// ignoreMatcher reports whether a workspace-relative path is gitignored.
type ignoreMatcher interface {
	ShouldIgnore(relativePath string) bool
}

// Scanner enumerates workspace files, applying the configured name and
// extension exclusions plus gitignore rules.
type Scanner struct {
	fs     fileLister
	ignore ignoreMatcher
	config *config.Config
	root   string
}

// NewScanner creates a new Scanner rooted at the workspace.
func NewScanner(fs fileLister, ignore ignoreMatcher, cfg *config.Config, root string) *Scanner {
	if fs == nil {
		panic("fs is required")
	}
	if ignore == nil {
		panic("ignore is required")
	}
	if cfg == nil {
		panic("config is required")
	}
	if root == "" {
		panic("root is required")
	}
	return &Scanner{
		fs:     fs,
		ignore: ignore,
		config: cfg,
		root:   root,
	}
}

// Files returns the relative paths of every non-excluded file under the
// workspace root, in depth-first listing order. Enumeration stops once max
// paths have been collected; max <= 0 means unbounded.
func (s *Scanner) Files(max int) ([]string, error) {
	var files []string
	err := s.walk(s.root, "", func(rel string, info os.FileInfo) bool {
		if !info.IsDir() {
			files = append(files, rel)
		}
		return max <= 0 || len(files) < max
	})
	if err != nil && !errors.Is(err, errWalkStopped) {
		return nil, err
	}
	return files, nil
}

// walk visits every non-excluded entry under dir depth-first. The visit
// callback returns false to stop the whole walk early. Unreadable
// subdirectories are skipped rather than failing the walk.
func (s *Scanner) walk(dir, relDir string, visit func(rel string, info os.FileInfo) bool) error {
	entries, err := s.fs.ListDir(dir)
	if err != nil {
		if relDir == "" {
			return &WalkError{Path: dir, Cause: err}
		}
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		rel := name
		if relDir != "" {
			rel = relDir + "/" + name
		}

		if s.excluded(name, rel, entry.IsDir()) {
			continue
		}

		if !visit(rel, entry) {
			return errWalkStopped
		}
		if entry.IsDir() {
			if err := s.walk(filepath.Join(dir, name), rel, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

var errWalkStopped = errors.New("walk stopped")

func (s *Scanner) excluded(name, rel string, isDir bool) bool {
	if s.config.IsExcludedName(name) {
		return true
	}
	if !isDir && s.config.IsExcludedExtension(strings.ToLower(filepath.Ext(name))) {
		return true
	}
	return s.ignore.ShouldIgnore(rel)
}
