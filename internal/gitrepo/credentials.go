package gitrepo

import (
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Credentials is the token-derived auth for one publishing run. It is
// constructed once, handed to both clone and push, and released when
// the run is over.
type Credentials struct {
	auth *githttp.BasicAuth
}

// NewTokenCredentials builds HTTPS basic-auth credentials around an
// access token. GitHub ignores the username for token auth, so any
// non-empty value works when the account user is not configured.
func NewTokenCredentials(username, token string) *Credentials {
	if username == "" {
		username = "x-access-token"
	}
	return &Credentials{
		auth: &githttp.BasicAuth{
			Username: username,
			Password: token,
		},
	}
}

// AuthMethod returns the transport auth for a single operation. Called
// per attempt so released credentials surface as nil auth rather than a
// stale token.
func (c *Credentials) AuthMethod() transport.AuthMethod {
	if c == nil || c.auth == nil {
		return nil
	}
	return c.auth
}

// Release drops the token. Further operations authenticate as anonymous.
func (c *Credentials) Release() {
	c.auth = nil
}
