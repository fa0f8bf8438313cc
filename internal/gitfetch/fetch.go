// Package gitfetch makes shallow single-revision checkouts of remote
// repositories into scratch directories.
package gitfetch

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lazypower/texprogress/internal/auth"
)

// tokenUser is the username GitHub expects alongside an installation or
// personal access token.
const tokenUser = "x-access-token"

// Fetcher checks out the default branch of cloneURL into dir.
type Fetcher interface {
	Fetch(ctx context.Context, cloneURL, dir string, token auth.Token) error
}

// New returns the fetcher for method ("gogit" or "cli").
func New(method string) (Fetcher, error) {
	switch method {
	case "", "gogit":
		return NewGoGit(), nil
	case "cli":
		return NewGitCLI(), nil
	default:
		return nil, fmt.Errorf("unknown fetch method: %q", method)
	}
}

// isHTTP reports whether the credential may be attached to cloneURL.
// Local paths and file:// URLs never carry it.
func isHTTP(cloneURL string) bool {
	u, err := url.Parse(cloneURL)
	if err != nil {
		return false
	}
	return u.Scheme == "https" || u.Scheme == "http"
}
