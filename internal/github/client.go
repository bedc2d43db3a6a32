package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/abel-yelin/AI-blog-for-gitbase/pkg/types"
)

// Client wraps the hosting provider's pull request API.
type Client struct {
	apiClient *github.Client
	logger    *zap.Logger
}

// NewClient creates a new hosting API client authenticated by token.
func NewClient(accessToken string, logger *zap.Logger) *Client {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(ctx, ts)

	return &Client{
		apiClient: github.NewClient(tc),
		logger:    logger,
	}
}

// CreatePullRequest opens a pull request from headBranch into baseBranch
// and returns its canonical web URL along with the API metadata.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo, baseBranch, headBranch, title string) (*types.PRInfo, error) {
	newPR := &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(headBranch),
		Base:  github.String(baseBranch),
	}

	pr, _, err := c.apiClient.PullRequests.Create(ctx, owner, repo, newPR)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	prInfo := &types.PRInfo{
		PRNumber: int64(pr.GetNumber()),
		PRURL:    pr.GetHTMLURL(),
		Title:    pr.GetTitle(),
		Status:   pr.GetState(),
	}

	c.logger.Info("created pull request",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int64("pr_number", prInfo.PRNumber),
		zap.String("pr_url", prInfo.PRURL),
	)

	return prInfo, nil
}

// IsValidationError reports whether err is a validation-class refusal
// from the hosting API, such as a duplicate pull request or a branch
// with no diff. Those are user-correctable, not system faults.
func IsValidationError(err error) bool {
	_, ok := ValidationMessage(err)
	return ok
}

// ValidationMessage extracts the provider's own message from a
// validation-class refusal, so callers can surface it verbatim.
func ValidationMessage(err error) (string, bool) {
	var apiErr *github.ErrorResponse
	if !errors.As(err, &apiErr) {
		return "", false
	}
	if apiErr.Response == nil || apiErr.Response.StatusCode != http.StatusUnprocessableEntity {
		return "", false
	}
	return apiErr.Message, true
}
