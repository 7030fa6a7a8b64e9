// Package scriptsync keeps the script directory in step with a git repository.
package scriptsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Action describes what Sync did.
type Action string

const (
	ActionCloned   Action = "cloned"
	ActionUpdated  Action = "updated"
	ActionUpToDate Action = "up-to-date"
)

// Options select the repository and the local directory.
type Options struct {
	URL    string
	Branch string
	Dir    string
}

// Result reports the outcome of a sync.
type Result struct {
	Action Action
	Head   string
}

// Sync clones URL into Dir, or fast-forwards Dir when it is already a clone of
// URL. A directory holding anything else is left untouched and reported.
func Sync(ctx context.Context, opts Options) (Result, error) {
	if opts.URL == "" {
		return Result{}, errors.New("script repository url is empty")
	}
	if opts.Dir == "" {
		return Result{}, errors.New("script directory is empty")
	}

	info, err := os.Stat(opts.Dir)
	switch {
	case os.IsNotExist(err):
		return clone(ctx, opts)
	case err != nil:
		return Result{}, fmt.Errorf("cannot access script directory: %w", err)
	case !info.IsDir():
		return Result{}, fmt.Errorf("script directory %s is not a directory", opts.Dir)
	}

	if _, err := os.Stat(filepath.Join(opts.Dir, ".git")); err != nil {
		empty, emptyErr := isEmpty(opts.Dir)
		if emptyErr != nil {
			return Result{}, emptyErr
		}
		if empty {
			return clone(ctx, opts)
		}
		return Result{}, fmt.Errorf("script directory %s exists but is not a git repository", opts.Dir)
	}

	return pull(ctx, opts)
}

func clone(ctx context.Context, opts Options) (Result, error) {
	if err := os.MkdirAll(filepath.Dir(opts.Dir), 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create parent directory: %w", err)
	}

	cloneOpts := &git.CloneOptions{URL: opts.URL}
	if opts.Branch != "" {
		cloneOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		cloneOpts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, opts.Dir, false, cloneOpts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to clone scripts: %w", err)
	}
	return result(repo, ActionCloned)
}

func pull(ctx context.Context, opts Options) (Result, error) {
	repo, err := git.PlainOpen(opts.Dir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open script repository: %w", err)
	}

	remote, err := repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return Result{}, fmt.Errorf("script repository has no origin: %w", err)
	}
	if urls := remote.Config().URLs; len(urls) > 0 && urls[0] != opts.URL {
		return Result{}, fmt.Errorf("script repository remote is %s (expected %s)", urls[0], opts.URL)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return Result{}, fmt.Errorf("failed to open worktree: %w", err)
	}

	pullOpts := &git.PullOptions{RemoteName: git.DefaultRemoteName}
	if opts.Branch != "" {
		pullOpts.ReferenceName = plumbing.NewBranchReferenceName(opts.Branch)
		pullOpts.SingleBranch = true
	}

	err = wt.PullContext(ctx, pullOpts)
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		return result(repo, ActionUpToDate)
	case err != nil:
		return Result{}, fmt.Errorf("failed to pull scripts: %w", err)
	}
	return result(repo, ActionUpdated)
}

func result(repo *git.Repository, action Action) (Result, error) {
	head, err := repo.Head()
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return Result{Action: action, Head: head.Hash().String()}, nil
}

func isEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("cannot read script directory: %w", err)
	}
	return len(entries) == 0, nil
}
