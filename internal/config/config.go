package config

import (
	"fmt"
	"os"
	"strings"
)

// App holds the validated settings for one publishing run. The value is
// immutable for the lifetime of a run.
type App struct {
	// Content repository on the hosting provider.
	RepoOwner string
	RepoName  string
	RepoToken string
	RepoUser  string
	RepoEmail string

	// Subdirectory of the repository holding markdown posts.
	PostsDir string

	// Model API settings.
	ModelBaseURL string
	ModelAPIKey  string
	ModelName    string

	// Local directory under which run workspaces are created.
	WorkspaceDir string
}

// placeholders are sentinel values left behind by sample configs. A
// token or key carrying one of these is treated as absent.
var placeholders = []string{
	"your-token-here",
	"your-key-here",
	"changeme",
	"xxx",
}

// FromEnv builds an App from environment variables with defaults.
func FromEnv() *App {
	return &App{
		RepoOwner:    getEnv("REPO_OWNER", ""),
		RepoName:     getEnv("REPO_NAME", ""),
		RepoToken:    getEnv("REPO_TOKEN", ""),
		RepoUser:     getEnv("REPO_USER", ""),
		RepoEmail:    getEnv("REPO_EMAIL", ""),
		PostsDir:     getEnv("POSTS_DIR", "posts"),
		ModelBaseURL: getEnv("MODEL_BASE_URL", ""),
		ModelAPIKey:  getEnv("MODEL_API_KEY", ""),
		ModelName:    getEnv("MODEL_NAME", ""),
		WorkspaceDir: getEnv("WORKSPACE_DIR", os.TempDir()),
	}
}

// Validate checks that required settings are present and that no
// credential carries a placeholder sentinel. It runs once at pipeline
// entry, before any network activity.
func (a *App) Validate() error {
	required := map[string]string{
		"repository owner": a.RepoOwner,
		"repository name":  a.RepoName,
		"repository token": a.RepoToken,
		"account email":    a.RepoEmail,
		"posts directory":  a.PostsDir,
		"model api key":    a.ModelAPIKey,
		"model name":       a.ModelName,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("missing %s", field)
		}
	}
	for _, credential := range []string{a.RepoToken, a.ModelAPIKey} {
		if isPlaceholder(credential) {
			return fmt.Errorf("credential carries placeholder value %q", credential)
		}
	}
	return nil
}

func isPlaceholder(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(lower, "<") && strings.HasSuffix(lower, ">") {
		return true
	}
	for _, p := range placeholders {
		if lower == p {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
