package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver provides path resolution within a workspace boundary.
// All model-supplied paths must pass through it before any filesystem
// access happens, whether or not the target exists yet.
type Resolver struct {
	workspaceRoot string
}

// NewResolver creates a new path resolver for the given workspace.
func NewResolver(workspaceRoot string) *Resolver {
	return &Resolver{
		workspaceRoot: workspaceRoot,
	}
}

// Root returns the canonical workspace root the resolver was built with.
func (r *Resolver) Root() string {
	return r.workspaceRoot
}

// CanonicaliseRoot canonicalises a workspace root path by making it absolute
// and resolving symlinks. Returns an error if the path doesn't exist or isn't
// a directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(ExpandHome(root))
	if err != nil {
		return "", &WorkspaceRootError{Root: absRoot, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &WorkspaceRootError{Root: resolved, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &WorkspaceRootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &WorkspaceRootError{Root: resolved, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, resolved)}
	}
	return resolved, nil
}

// ExpandHome replaces a leading "~" with the current user's home directory.
// Paths that do not start with "~" are returned unchanged.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Abs resolves any path to absolute and validates it is within the workspace
// boundary. The check is purely lexical so paths to files that do not exist
// yet are validated the same way as existing ones.
func (r *Resolver) Abs(path string) (string, error) {
	if r.workspaceRoot == "" {
		return "", ErrWorkspaceRootNotSet
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(r.workspaceRoot, path))
	}

	// Boundary check: must be the root itself or a child of the root
	if !strings.HasPrefix(abs, r.workspaceRoot+string(filepath.Separator)) && abs != r.workspaceRoot {
		return "", ErrOutsideWorkspace
	}

	return abs, nil
}

// Rel resolves any path relative to the workspace root and validates it is
// within the boundary.
func (r *Resolver) Rel(path string) (string, error) {
	abs, err := r.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(r.workspaceRoot, abs)
	if err != nil {
		return "", ErrOutsideWorkspace
	}

	if rel == "." {
		return "", nil
	}

	return filepath.ToSlash(rel), nil
}
