package gitrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"go.uber.org/zap"
)

// Repo wraps worktree operations on a cloned repository. The same
// credentials that performed the clone are reused for the push.
type Repo struct {
	repo   *git.Repository
	wt     *git.Worktree
	creds  *Credentials
	logger *zap.Logger
}

// Open opens the repository cloned at path.
func Open(path string, creds *Credentials, logger *zap.Logger) (*Repo, error) {
	r, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Repo{
		repo:   r,
		wt:     wt,
		creds:  creds,
		logger: logger,
	}, nil
}

// CreateBranch creates the named branch off the current HEAD and checks
// it out.
func (r *Repo) CreateBranch(name string) error {
	err := r.wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create branch %s: %w", name, err)
	}

	r.logger.Info("created branch", zap.String("branch", name))
	return nil
}

// StageFile stages exactly one file, given relative to the repository root.
func (r *Repo) StageFile(rel string) error {
	if _, err := r.wt.Add(rel); err != nil {
		return fmt.Errorf("failed to stage %s: %w", rel, err)
	}
	return nil
}

// HasChanges reports whether the working tree has anything pending. A
// clean tree after staging means the generated content is byte-identical
// to what the repository already holds.
func (r *Repo) HasChanges() (bool, error) {
	status, err := r.wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to inspect status: %w", err)
	}
	return !status.IsClean(), nil
}

// Commit commits staged changes with the given author identity and
// returns the commit hash.
func (r *Repo) Commit(message, authorName, authorEmail string) (string, error) {
	hash, err := r.wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Info("committed changes",
		zap.String("message", message),
		zap.String("hash", hash.String()),
	)

	return hash.String(), nil
}

// Push pushes the given branch to the origin remote.
func (r *Repo) Push(ctx context.Context, branch string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs: []gitconfig.RefSpec{
			gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)),
		},
		Auth: r.creds.AuthMethod(),
	})
	if err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}

	r.logger.Info("pushed branch", zap.String("branch", branch))
	return nil
}
