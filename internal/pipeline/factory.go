package pipeline

import (
	"go.uber.org/zap"

	"github.com/abel-yelin/AI-blog-for-gitbase/internal/composer"
	"github.com/abel-yelin/AI-blog-for-gitbase/internal/config"
	"github.com/abel-yelin/AI-blog-for-gitbase/internal/generator"
	"github.com/abel-yelin/AI-blog-for-gitbase/internal/github"
	"github.com/abel-yelin/AI-blog-for-gitbase/internal/gitrepo"
)

// Build wires the production collaborators for one publishing run. The
// credentials are scoped to the run: constructed here, shared by clone
// and push, released by the pipeline after the push.
func Build(cfg *config.App, logger *zap.Logger) *Pipeline {
	gen := generator.NewClient(cfg.ModelAPIKey, cfg.ModelBaseURL, cfg.ModelName, logger)
	creds := gitrepo.NewTokenCredentials(cfg.RepoUser, cfg.RepoToken)

	return New(cfg, Deps{
		Generator: gen,
		Composer:  composer.New(gen, logger),
		Syncer:    gitrepo.NewSyncer(creds, gitrepo.DefaultRetry, logger),
		OpenRepo: func(path string) (Worktree, error) {
			return gitrepo.Open(path, creds, logger)
		},
		Host:   github.NewClient(cfg.RepoToken, logger),
		Creds:  creds,
		Logger: logger,
	})
}
