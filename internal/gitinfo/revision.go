// Package gitinfo reads the revision of the repository holding the documentation sources.
package gitinfo

import (
	"errors"
	"log/slog"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Revision identifies the checked out commit.
type Revision struct {
	Commit string
	// Branch is empty for a detached HEAD.
	Branch string
}

// Short returns the abbreviated commit hash.
func (r Revision) Short() string {
	if len(r.Commit) > 8 {
		return r.Commit[:8]
	}
	return r.Commit
}

// ErrNotRepository is returned when no enclosing repository exists.
var ErrNotRepository = ggit.ErrRepositoryNotExists

// Resolve opens the repository containing path, searching parent directories.
func Resolve(path string) (Revision, error) {
	repo, err := ggit.PlainOpenWithOptions(path, &ggit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Revision{}, err
	}

	ref, err := repo.Head()
	if err != nil {
		return Revision{}, err
	}

	rev := Revision{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		rev.Branch = ref.Name().Short()
	}
	return rev, nil
}

// CommitFor returns the HEAD commit for path, or "" when it is not versioned.
func CommitFor(path string) string {
	rev, err := Resolve(path)
	if err != nil {
		if !errors.Is(err, ErrNotRepository) && !errors.Is(err, plumbing.ErrReferenceNotFound) {
			slog.Debug("Failed to read source revision", "path", path, "error", err)
		}
		return ""
	}
	slog.Debug("Resolved source revision", "path", path, "commit", rev.Short(), "branch", rev.Branch)
	return rev.Commit
}
