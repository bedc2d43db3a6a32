package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abel-yelin/AI-blog-for-gitbase/internal/config"
	"github.com/abel-yelin/AI-blog-for-gitbase/internal/github"
	"github.com/abel-yelin/AI-blog-for-gitbase/internal/gitrepo"
	"github.com/abel-yelin/AI-blog-for-gitbase/pkg/slug"
	"github.com/abel-yelin/AI-blog-for-gitbase/pkg/types"
)

const (
	baseBranch      = "main"
	branchPrefix    = "blog-post-"
	commitMessage   = "Add generated blog post"
	authorName      = "AI Blog Bot"
	timestampLayout = "20060102150405"
)

// ErrPostsDirMissing indicates the configured posts subdirectory is
// absent after a successful clone, meaning the repository layout does
// not match the configuration.
var ErrPostsDirMissing = errors.New("posts directory missing after clone")

// Generator is the connectivity surface of the content generator.
type Generator interface {
	ProbeConnectivity(ctx context.Context) bool
}

// Composer produces a new post distinct from the existing titles.
type Composer interface {
	Compose(ctx context.Context, existingTitles []string) (types.GeneratedPost, error)
}

// Syncer clones the content repository into a local workspace.
type Syncer interface {
	Clone(ctx context.Context, remoteURL, localPath string) (string, error)
}

// Worktree is the set of git operations the pipeline drives after the
// clone: branch, stage, status, commit, push.
type Worktree interface {
	CreateBranch(name string) error
	StageFile(rel string) error
	HasChanges() (bool, error)
	Commit(message, authorName, authorEmail string) (string, error)
	Push(ctx context.Context, branch string) error
}

// RepoOpener opens the worktree of a cloned repository.
type RepoOpener func(path string) (Worktree, error)

// PullRequester opens the review request on the hosting provider.
type PullRequester interface {
	CreatePullRequest(ctx context.Context, owner, repo, baseBranch, headBranch, title string) (*types.PRInfo, error)
}

// Releaser lets the pipeline drop run-scoped credentials once the last
// authenticated git operation has completed.
type Releaser interface {
	Release()
}

// Deps are the collaborators for one publishing run.
type Deps struct {
	Generator Generator
	Composer  Composer
	Syncer    Syncer
	OpenRepo  RepoOpener
	Host      PullRequester
	Creds     Releaser
	Logger    *zap.Logger
}

// Pipeline runs the end-to-end publishing flow: sync, compose, write,
// branch, commit, push, open pull request. One sequential flow per
// invocation; the only internal retry loop lives in the syncer.
type Pipeline struct {
	cfg  *config.App
	deps Deps
	now  func() time.Time
}

// New creates a pipeline for one run.
func New(cfg *config.App, deps Deps) *Pipeline {
	return &Pipeline{
		cfg:  cfg,
		deps: deps,
		now:  time.Now,
	}
}

// Run executes the publishing flow. Reject-class outcomes (bad config,
// unreachable generator, nothing to commit, remote validation refusal)
// come back as a rejected result with a reason and a nil error; fatal
// failures propagate the wrapped cause. Partial local state is not
// rolled back; the workspace is ephemeral and never reused.
func (p *Pipeline) Run(ctx context.Context) (*types.PublishResult, error) {
	logger := p.deps.Logger

	if err := p.cfg.Validate(); err != nil {
		logger.Warn("configuration rejected", zap.Error(err))
		return types.Rejected("bad config"), nil
	}

	if !p.deps.Generator.ProbeConnectivity(ctx) {
		logger.Warn("generator unreachable")
		return types.Rejected("generator unreachable"), nil
	}

	remoteURL := fmt.Sprintf("https://github.com/%s/%s.git", p.cfg.RepoOwner, p.cfg.RepoName)
	workspace := filepath.Join(p.cfg.WorkspaceDir, slug.ToKebabCase(p.cfg.RepoOwner+" "+p.cfg.RepoName))

	repoPath, err := p.deps.Syncer.Clone(ctx, remoteURL, workspace)
	if err != nil {
		return nil, err
	}

	postsDir := filepath.Join(repoPath, p.cfg.PostsDir)
	titles, err := listPostTitles(postsDir)
	if err != nil {
		return nil, err
	}

	post, err := p.deps.Composer.Compose(ctx, titles)
	if err != nil {
		return nil, err
	}

	// The literal title is the filename. Collisions with an existing
	// post surface later as a clean worktree, not as an overwrite check.
	filename := post.Title + ".md"
	if err := os.WriteFile(filepath.Join(postsDir, filename), []byte(post.Content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write post: %w", err)
	}

	repo, err := p.deps.OpenRepo(repoPath)
	if err != nil {
		return nil, err
	}

	branch := branchPrefix + p.now().UTC().Format(timestampLayout)
	if err := repo.CreateBranch(branch); err != nil {
		return nil, err
	}

	if err := repo.StageFile(filepath.ToSlash(filepath.Join(p.cfg.PostsDir, filename))); err != nil {
		return nil, err
	}

	changed, err := repo.HasChanges()
	if err != nil {
		return nil, err
	}
	if !changed {
		logger.Info("nothing to commit", zap.String("title", post.Title))
		return types.Rejected(gitrepo.ErrNoChanges.Error()), nil
	}

	if _, err := repo.Commit(commitMessage, authorName, p.cfg.RepoEmail); err != nil {
		return nil, err
	}

	if err := repo.Push(ctx, branch); err != nil {
		return nil, err
	}
	if p.deps.Creds != nil {
		p.deps.Creds.Release()
	}

	pr, err := p.deps.Host.CreatePullRequest(ctx, p.cfg.RepoOwner, p.cfg.RepoName, baseBranch, branch, post.Title)
	if err != nil {
		if msg, ok := github.ValidationMessage(err); ok {
			logger.Warn("pull request refused", zap.String("reason", msg))
			return types.Rejected(msg), nil
		}
		return nil, err
	}

	logger.Info("publishing run complete",
		zap.String("branch", branch),
		zap.String("pr_url", pr.PRURL),
	)

	return &types.PublishResult{Status: types.StatusCreated, PRURL: pr.PRURL}, nil
}

// listPostTitles returns the markdown filenames under dir, recursively,
// without their extension, in directory listing order.
func listPostTitles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPostsDirMissing, dir)
		}
		return nil, fmt.Errorf("failed to inspect posts directory: %w", err)
	}

	var titles []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			base := filepath.Base(path)
			titles = append(titles, strings.TrimSuffix(base, filepath.Ext(base)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate posts: %w", err)
	}

	return titles, nil
}
