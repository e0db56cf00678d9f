// Package git reads source provenance for a processed version: the commit the
// extracted category files were produced from. It uses go-git so no git
// binary is required.
package git

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// ErrNotRepository is returned when path is not inside a git repository.
var ErrNotRepository = errors.New("not a git repository")

// openRepo opens the repository containing path, walking up the directory
// tree. If path is empty, the current working directory is used.
func openRepo(path string) (*git.Repository, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotRepository)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return repo, nil
}

// Commit describes the HEAD commit of a repository.
type Commit struct {
	Hash   string
	Short  string
	Branch string
	Dirty  bool
}

// String renders the commit the way it is stamped on a version record.
func (c Commit) String() string {
	if c.Dirty {
		return c.Hash + "-dirty"
	}
	return c.Hash
}

// HeadCommit returns the HEAD commit of the repository containing path.
// Branch is empty on a detached HEAD.
func HeadCommit(path string) (Commit, error) {
	repo, err := openRepo(path)
	if err != nil {
		return Commit{}, err
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Commit{}, fmt.Errorf("repository has no commits: %w", err)
		}
		return Commit{}, fmt.Errorf("getting HEAD reference: %w", err)
	}

	hash := head.Hash().String()
	commit := Commit{
		Hash:  hash,
		Short: hash[:7],
	}
	if head.Name().IsBranch() {
		commit.Branch = head.Name().Short()
	}

	dirty, err := isDirty(repo)
	if err != nil {
		logDebug("[git] status unavailable: %v", err)
	}
	commit.Dirty = dirty

	logDebug("[git] HeadCommit: %s branch=%q dirty=%v", commit.Short, commit.Branch, commit.Dirty)
	return commit, nil
}

func isDirty(repo *git.Repository) (bool, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}
	return !status.IsClean(), nil
}
