// Package github lists the repositories owned by the authenticated user.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lazypower/texprogress/internal/auth"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL  = "https://api.github.com"
	defaultPerPage = 100
	httpTimeout    = 30 * time.Second

	// maxPages stops a misbehaving server from paging forever.
	maxPages = 1000
)

// Repository is the subset of the GitHub repository object used here.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	Private  bool   `json:"private"`
	Fork     bool   `json:"fork"`
	Archived bool   `json:"archived"`
}

// Client calls the GitHub REST API.
type Client struct {
	http        *http.Client
	baseURL     string
	token       auth.Token
	perPage     int
	affiliation string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (GitHub Enterprise, tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithPerPage sets the page size. GitHub caps it at 100.
func WithPerPage(n int) Option {
	return func(c *Client) {
		if n > 0 && n <= 100 {
			c.perPage = n
		}
	}
}

// WithAffiliation sets the affiliation filter (owner, collaborator,
// organization_member, comma separated).
func WithAffiliation(a string) Option {
	return func(c *Client) {
		if a != "" {
			c.affiliation = a
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client authenticated with token.
func NewClient(token auth.Token, opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: httpTimeout},
		baseURL:     DefaultAPIURL,
		token:       token,
		perPage:     defaultPerPage,
		affiliation: "owner",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CurrentUser returns the login of the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	var user struct {
		Login string `json:"login"`
	}
	if err := c.get(ctx, "/user", nil, &user); err != nil {
		return "", err
	}
	return user.Login, nil
}

// ListRepositories walks every page of /user/repos until an empty page.
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	var repos []Repository
	for page := 1; page <= maxPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(c.perPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("affiliation", c.affiliation)

		var batch []Repository
		if err := c.get(ctx, "/user/repos", q, &batch); err != nil {
			return nil, fmt.Errorf("list repos page %d: %w", page, err)
		}
		if len(batch) == 0 {
			return repos, nil
		}
		repos = append(repos, batch...)
	}
	return nil, fmt.Errorf("list repos: more than %d pages", maxPages)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token.Secret())
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is a non-200 API response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github api status %d: %s", e.Code, e.Body)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
