package pipeline

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	gh "github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"github.com/abel-yelin/AI-blog-for-gitbase/internal/composer"
	"github.com/abel-yelin/AI-blog-for-gitbase/internal/config"
	"github.com/abel-yelin/AI-blog-for-gitbase/pkg/types"
)

type fakeGenerator struct {
	reachable  bool
	response   string
	probeCalls int
	sendCalls  int
}

func (f *fakeGenerator) ProbeConnectivity(context.Context) bool {
	f.probeCalls++
	return f.reachable
}

func (f *fakeGenerator) SendRequest(context.Context, string) (string, error) {
	f.sendCalls++
	if !f.reachable {
		return "", errors.New("status 503")
	}
	return f.response, nil
}

type fakeSyncer struct {
	path     string
	err      error
	calls    int
	gotURL   string
	gotLocal string
}

func (f *fakeSyncer) Clone(_ context.Context, remoteURL, localPath string) (string, error) {
	f.calls++
	f.gotURL = remoteURL
	f.gotLocal = localPath
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeWorktree struct {
	changes  bool
	branches []string
	staged   []string
	commits  []string
	pushed   []string
}

func (f *fakeWorktree) CreateBranch(name string) error {
	f.branches = append(f.branches, name)
	return nil
}

func (f *fakeWorktree) StageFile(rel string) error {
	f.staged = append(f.staged, rel)
	return nil
}

func (f *fakeWorktree) HasChanges() (bool, error) {
	return f.changes, nil
}

func (f *fakeWorktree) Commit(message, name, email string) (string, error) {
	f.commits = append(f.commits, message+"|"+name+"|"+email)
	return "abc123", nil
}

func (f *fakeWorktree) Push(_ context.Context, branch string) error {
	f.pushed = append(f.pushed, branch)
	return nil
}

type fakeHost struct {
	pr       *types.PRInfo
	err      error
	calls    int
	gotHead  string
	gotTitle string
}

func (f *fakeHost) CreatePullRequest(_ context.Context, owner, repo, base, head, title string) (*types.PRInfo, error) {
	f.calls++
	f.gotHead = head
	f.gotTitle = title
	if f.err != nil {
		return nil, f.err
	}
	return f.pr, nil
}

type fakeCreds struct{ released bool }

func (f *fakeCreds) Release() { f.released = true }

func testConfig(workspaceDir string) *config.App {
	return &config.App{
		RepoOwner:    "acme",
		RepoName:     "blog",
		RepoToken:    "ghp_realtoken",
		RepoUser:     "acme-bot",
		RepoEmail:    "bot@acme.test",
		PostsDir:     "posts",
		ModelAPIKey:  "sk-realkey",
		ModelName:    "gpt-4",
		WorkspaceDir: workspaceDir,
	}
}

// seedRepo lays out a cloned-looking repository with two existing posts.
func seedRepo(t *testing.T) string {
	t.Helper()
	repoPath := t.TempDir()
	postsDir := filepath.Join(repoPath, "posts")
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Post A.md", "Post B.md"} {
		if err := os.WriteFile(filepath.Join(postsDir, name), []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return repoPath
}

func newTestPipeline(cfg *config.App, gen *fakeGenerator, syncer *fakeSyncer, wt *fakeWorktree, host *fakeHost, creds *fakeCreds) *Pipeline {
	logger := zap.NewNop()
	p := New(cfg, Deps{
		Generator: gen,
		Composer:  composer.New(gen, logger),
		Syncer:    syncer,
		OpenRepo:  func(string) (Worktree, error) { return wt, nil },
		Host:      host,
		Creds:     creds,
		Logger:    logger,
	})
	p.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC) }
	return p
}

func TestRunEndToEnd(t *testing.T) {
	repoPath := seedRepo(t)
	gen := &fakeGenerator{reachable: true, response: "New Post\n\nBody text."}
	syncer := &fakeSyncer{path: repoPath}
	wt := &fakeWorktree{changes: true}
	host := &fakeHost{pr: &types.PRInfo{PRURL: "https://github.com/acme/blog/pull/7"}}
	creds := &fakeCreds{}

	result, err := newTestPipeline(testConfig(t.TempDir()), gen, syncer, wt, host, creds).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Status != types.StatusCreated {
		t.Fatalf("Status = %q, want %q", result.Status, types.StatusCreated)
	}
	if result.PRURL != "https://github.com/acme/blog/pull/7" {
		t.Errorf("PRURL = %q", result.PRURL)
	}

	if syncer.gotURL != "https://github.com/acme/blog.git" {
		t.Errorf("remote URL = %q", syncer.gotURL)
	}
	if got := filepath.Base(syncer.gotLocal); got != "acme-blog" {
		t.Errorf("workspace dir = %q, want acme-blog", got)
	}

	body, err := os.ReadFile(filepath.Join(repoPath, "posts", "New Post.md"))
	if err != nil {
		t.Fatalf("post file not written: %v", err)
	}
	if string(body) != "Body text." {
		t.Errorf("post body = %q, want %q", body, "Body text.")
	}

	wantBranch := "blog-post-20240301123045"
	if len(wt.branches) != 1 || wt.branches[0] != wantBranch {
		t.Errorf("branches = %v, want [%s]", wt.branches, wantBranch)
	}
	if len(wt.staged) != 1 || wt.staged[0] != "posts/New Post.md" {
		t.Errorf("staged = %v, want [posts/New Post.md]", wt.staged)
	}
	if len(wt.commits) != 1 || wt.commits[0] != "Add generated blog post|AI Blog Bot|bot@acme.test" {
		t.Errorf("commits = %v", wt.commits)
	}
	if len(wt.pushed) != 1 || wt.pushed[0] != wantBranch {
		t.Errorf("pushed = %v, want [%s]", wt.pushed, wantBranch)
	}

	if host.gotHead != wantBranch {
		t.Errorf("PR head = %q, want %q", host.gotHead, wantBranch)
	}
	if host.gotTitle != "New Post" {
		t.Errorf("PR title = %q, want %q", host.gotTitle, "New Post")
	}
	if !creds.released {
		t.Error("credentials not released after push")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.RepoToken = "your-token-here"
	gen := &fakeGenerator{reachable: true}
	syncer := &fakeSyncer{}

	result, err := newTestPipeline(cfg, gen, syncer, &fakeWorktree{}, &fakeHost{}, &fakeCreds{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Status != types.StatusRejected || result.Reason != "bad config" {
		t.Errorf("result = %+v, want rejected bad config", result)
	}
	if gen.probeCalls != 0 {
		t.Error("probe ran before config validation")
	}
	if syncer.calls != 0 {
		t.Error("clone ran despite bad config")
	}
}

func TestRunRejectsUnreachableGenerator(t *testing.T) {
	workspaceDir := t.TempDir()
	gen := &fakeGenerator{reachable: false}
	syncer := &fakeSyncer{}

	result, err := newTestPipeline(testConfig(workspaceDir), gen, syncer, &fakeWorktree{}, &fakeHost{}, &fakeCreds{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Status != types.StatusRejected || result.Reason != "generator unreachable" {
		t.Errorf("result = %+v, want rejected generator unreachable", result)
	}
	if syncer.calls != 0 {
		t.Error("clone attempted after failed probe")
	}

	entries, err := os.ReadDir(workspaceDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("workspace mutated before clone: %v", entries)
	}
}

func TestRunRejectsNoChanges(t *testing.T) {
	gen := &fakeGenerator{reachable: true, response: "Post A\n\nold"}
	wt := &fakeWorktree{changes: false}
	host := &fakeHost{}

	result, err := newTestPipeline(testConfig(t.TempDir()), gen, &fakeSyncer{path: seedRepo(t)}, wt, host, &fakeCreds{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Status != types.StatusRejected || result.Reason != "no changes detected" {
		t.Errorf("result = %+v, want rejected no changes detected", result)
	}
	if len(wt.commits) != 0 {
		t.Error("committed despite clean tree")
	}
	if len(wt.pushed) != 0 {
		t.Error("pushed despite clean tree")
	}
	if host.calls != 0 {
		t.Error("opened pull request despite clean tree")
	}
}

func TestRunFailsOnMissingPostsDir(t *testing.T) {
	gen := &fakeGenerator{reachable: true, response: "T\n\nB"}
	repoPath := t.TempDir() // no posts/ subdirectory

	_, err := newTestPipeline(testConfig(t.TempDir()), gen, &fakeSyncer{path: repoPath}, &fakeWorktree{}, &fakeHost{}, &fakeCreds{}).Run(context.Background())
	if !errors.Is(err, ErrPostsDirMissing) {
		t.Errorf("err = %v, want ErrPostsDirMissing", err)
	}
	if gen.sendCalls != 0 {
		t.Error("composed despite missing posts directory")
	}
}

func TestRunPropagatesCloneFailure(t *testing.T) {
	gen := &fakeGenerator{reachable: true}
	cause := errors.New("clone failed after 5 attempts")

	_, err := newTestPipeline(testConfig(t.TempDir()), gen, &fakeSyncer{err: cause}, &fakeWorktree{}, &fakeHost{}, &fakeCreds{}).Run(context.Background())
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want %v", err, cause)
	}
}

func TestRunRejectsOnRemoteValidation(t *testing.T) {
	gen := &fakeGenerator{reachable: true, response: "New Post\n\nBody text."}
	host := &fakeHost{err: &gh.ErrorResponse{
		Response: &http.Response{
			StatusCode: http.StatusUnprocessableEntity,
			Request:    &http.Request{Method: http.MethodPost},
		},
		Message: "A pull request already exists",
	}}

	result, err := newTestPipeline(testConfig(t.TempDir()), gen, &fakeSyncer{path: seedRepo(t)}, &fakeWorktree{changes: true}, host, &fakeCreds{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Status != types.StatusRejected || result.Reason != "A pull request already exists" {
		t.Errorf("result = %+v, want provider message verbatim", result)
	}
}

func TestRunComposesFromExistingTitles(t *testing.T) {
	gen := &fakeGenerator{reachable: true, response: "New Post\n\nBody text."}
	host := &fakeHost{pr: &types.PRInfo{PRURL: "https://example.test/pr/1"}}

	_, err := newTestPipeline(testConfig(t.TempDir()), gen, &fakeSyncer{path: seedRepo(t)}, &fakeWorktree{changes: true}, host, &fakeCreds{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if gen.sendCalls != 1 {
		t.Errorf("generator called %d times, want 1", gen.sendCalls)
	}
}
