package gitfetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/lazypower/texprogress/internal/auth"
)

// GitCLI shells out to the git binary.
type GitCLI struct {
	Bin string
}

// NewGitCLI returns a GitCLI using git from $PATH.
func NewGitCLI() *GitCLI {
	return &GitCLI{Bin: "git"}
}

// Fetch runs `git clone --depth 1 --quiet`. The token is embedded in the
// clone URL and scrubbed from any error output.
func (g *GitCLI) Fetch(ctx context.Context, cloneURL, dir string, token auth.Token) error {
	target, err := authURL(cloneURL, token)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, g.Bin, "clone", "--depth", "1", "--quiet", "--no-tags", target, dir)
	cmd.Env = append(filterEnv(os.Environ()), "GIT_TERMINAL_PROMPT=0")

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("git clone: %w", ctxErr)
		}
		msg := strings.TrimSpace(token.Redact(stderr.String()))
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("git clone: exit %d: %s", exitErr.ExitCode(), msg)
		}
		return fmt.Errorf("git clone: %s (stderr: %s)", token.Redact(err.Error()), msg)
	}
	return nil
}

// authURL embeds the credential as userinfo on http(s) clone URLs.
func authURL(cloneURL string, token auth.Token) (string, error) {
	if token.IsZero() || !isHTTP(cloneURL) {
		return cloneURL, nil
	}
	u, err := url.Parse(cloneURL)
	if err != nil {
		return "", fmt.Errorf("parse clone url: %w", err)
	}
	u.User = url.UserPassword(tokenUser, token.Secret())
	return u.String(), nil
}

// filterEnv drops GIT_* variables so the caller's environment cannot
// redirect the clone or prompt for credentials.
func filterEnv(env []string) []string {
	filtered := make([]string, 0, len(env))
	for _, e := range env {
		if !strings.HasPrefix(e, "GIT_") {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
