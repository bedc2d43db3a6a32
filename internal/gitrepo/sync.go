package gitrepo

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// RetryPolicy bounds the clone loop: a fixed number of attempts with a
// fixed delay between them. No exponential growth, no jitter.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetry is the policy used when none is supplied.
var DefaultRetry = RetryPolicy{Attempts: 5, Backoff: 5 * time.Second}

// Sleeper suspends between attempts. Injectable so tests can run the
// retry loop against a fake clock.
type Sleeper func(ctx context.Context, d time.Duration) error

// CloneFunc performs one clone attempt. Injectable for tests.
type CloneFunc func(ctx context.Context, path string, opts *git.CloneOptions) error

// Syncer clones a remote content repository into a local ephemeral
// workspace, retrying transient failures.
type Syncer struct {
	creds  *Credentials
	retry  RetryPolicy
	sleep  Sleeper
	clone  CloneFunc
	logger *zap.Logger
}

// NewSyncer creates a syncer with the default clone transport.
func NewSyncer(creds *Credentials, retry RetryPolicy, logger *zap.Logger) *Syncer {
	if retry.Attempts <= 0 {
		retry = DefaultRetry
	}
	return &Syncer{
		creds:  creds,
		retry:  retry,
		sleep:  waitContext,
		clone:  plainClone,
		logger: logger,
	}
}

// Clone wipes localPath, recreates it empty, and clones remoteURL into
// it. Any prior partial state at localPath is destroyed without
// recovery. Each failed attempt is logged with its number and cause;
// after the last attempt the error is a *CloneExhaustedError wrapping
// the final cause.
func (s *Syncer) Clone(ctx context.Context, remoteURL, localPath string) (string, error) {
	if err := os.RemoveAll(localPath); err != nil {
		return "", fmt.Errorf("failed to reset workspace: %w", err)
	}
	if err := os.MkdirAll(localPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.retry.Attempts; attempt++ {
		err := s.clone(ctx, localPath, &git.CloneOptions{
			URL:  remoteURL,
			Auth: s.creds.AuthMethod(),
		})
		if err == nil {
			s.logger.Info("cloned repository",
				zap.String("url", remoteURL),
				zap.String("path", localPath),
				zap.Int("attempt", attempt),
			)
			return localPath, nil
		}

		lastErr = err
		s.logger.Warn("clone attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.retry.Attempts),
			zap.Error(err),
		)

		if attempt < s.retry.Attempts {
			if err := s.sleep(ctx, s.retry.Backoff); err != nil {
				return "", err
			}
		}
	}

	return "", &CloneExhaustedError{Attempts: s.retry.Attempts, Err: lastErr}
}

func plainClone(ctx context.Context, path string, opts *git.CloneOptions) error {
	_, err := git.PlainCloneContext(ctx, path, false, opts)
	return err
}

// waitContext sleeps for d or until ctx is cancelled.
func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
