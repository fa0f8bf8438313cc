package gitfetch

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/lazypower/texprogress/internal/auth"
)

// GoGit clones in-process with go-git.
type GoGit struct {
	Depth int
}

// NewGoGit returns a GoGit fetcher making depth-1 clones.
func NewGoGit() *GoGit {
	return &GoGit{Depth: 1}
}

// Fetch clones cloneURL into dir. The token travels as HTTP basic auth and
// is only attached to http(s) URLs.
func (g *GoGit) Fetch(ctx context.Context, cloneURL, dir string, token auth.Token) error {
	opts := &git.CloneOptions{
		URL:          cloneURL,
		Depth:        g.Depth,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if !token.IsZero() && isHTTP(cloneURL) {
		opts.Auth = &githttp.BasicAuth{Username: tokenUser, Password: token.Secret()}
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, opts); err != nil {
		return fmt.Errorf("clone: %s", token.Redact(err.Error()))
	}
	return nil
}
