package gitutil

import (
	git "github.com/go-git/go-git/v5"
)

// RepoStatus is a point-in-time summary of the workspace repository,
// included in environment snapshots so the model knows what it is editing.
type RepoStatus struct {
	IsRepo bool
	Branch string
	Dirty  bool
}

// Snapshot inspects the git repository at root. A directory that is not a
// repository is not an error; IsRepo is simply false.
func Snapshot(root string) RepoStatus {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return RepoStatus{}
	}

	status := RepoStatus{IsRepo: true}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			status.Branch = head.Name().Short()
		} else {
			// Detached HEAD: report the short hash.
			status.Branch = head.Hash().String()[:7]
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return status
	}
	wtStatus, err := worktree.Status()
	if err != nil {
		return status
	}
	status.Dirty = !wtStatus.IsClean()

	return status
}
