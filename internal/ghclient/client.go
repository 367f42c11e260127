// Package ghclient has the GitHub REST client, the repository metadata
// fetcher and the six heuristic quality probes built on it.
package ghclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// ErrNotFound is returned when GitHub answers 404 for a resource.
var ErrNotFound = errors.New("github resource not found")

// listingTTL bounds how long a directory listing is shared between probes.
const listingTTL = 30 * time.Second

// restDoer is the subset of the go-gh REST client used here.
// This allows the client to be tested without network access.
type restDoer interface {
	DoWithContext(ctx context.Context, method string, path string, body io.Reader, response any) error
}

// Client wraps the GitHub REST API with the calls the probes need.
// Directory listings are memoized briefly so concurrent probes share one request.
type Client struct {
	rest     restDoer
	mu       sync.Mutex
	listings map[string]*listingCall
	now      func() time.Time
}

// listingCall is one in-flight or completed directory listing.
type listingCall struct {
	once    sync.Once
	entries []ContentEntry
	err     error
	at      time.Time
}

// NewClient creates a REST client for the configured host. An empty token
// falls back to the gh CLI credentials or the GH_TOKEN and GITHUB_TOKEN variables.
// The configured timeout applies to every request.
func NewClient(cfg *contract.Config) (*Client, error) {
	rest, err := api.NewRESTClient(api.ClientOptions{
		Host:      cfg.GitHubHost,
		AuthToken: cfg.GitHubToken,
		Timeout:   cfg.Timeout,
		Headers: map[string]string{
			"Accept":               "application/vnd.github+json",
			"X-GitHub-Api-Version": "2022-11-28",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w. Run 'gh auth login' or set REPOSCORE_GITHUB_TOKEN", err)
	}
	return newClient(rest), nil
}

func newClient(rest restDoer) *Client {
	return &Client{
		rest:     rest,
		listings: make(map[string]*listingCall),
		now:      time.Now,
	}
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	err := c.rest.DoWithContext(ctx, http.MethodGet, path, nil, out)
	if err == nil {
		return nil
	}
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fmt.Errorf("GET %s: %w", path, err)
}

func repoPath(repo schema.RepositoryCoordinates, suffix string) string {
	p := fmt.Sprintf("repos/%s/%s", url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// Repository returns the repository resource.
func (c *Client) Repository(ctx context.Context, repo schema.RepositoryCoordinates) (RepositoryResponse, error) {
	var resp RepositoryResponse
	err := c.get(ctx, repoPath(repo, ""), &resp)
	return resp, err
}

// Languages returns the byte count per language.
func (c *Client) Languages(ctx context.Context, repo schema.RepositoryCoordinates) (map[string]int64, error) {
	langs := map[string]int64{}
	err := c.get(ctx, repoPath(repo, "languages"), &langs)
	return langs, err
}

// Contents lists a directory of the default branch. The root is "".
// A missing directory yields an empty listing.
func (c *Client) Contents(ctx context.Context, repo schema.RepositoryCoordinates, dir string) ([]ContentEntry, error) {
	key := repo.String() + ":" + dir

	c.mu.Lock()
	call, ok := c.listings[key]
	if !ok || call.expired(c.now()) {
		c.sweepLocked()
		call = &listingCall{}
		c.listings[key] = call
	}
	c.mu.Unlock()

	call.once.Do(func() {
		path := repoPath(repo, "contents")
		if dir != "" {
			path += "/" + strings.Trim(dir, "/")
		}
		var entries []ContentEntry
		err := c.get(ctx, path, &entries)
		if errors.Is(err, ErrNotFound) {
			entries, err = nil, nil
		}
		call.entries, call.err = entries, err

		c.mu.Lock()
		call.at = c.now()
		if err != nil {
			delete(c.listings, key)
		}
		c.mu.Unlock()
	})
	return call.entries, call.err
}

// expired reports whether a completed listing is older than listingTTL.
func (l *listingCall) expired(now time.Time) bool {
	return !l.at.IsZero() && now.Sub(l.at) > listingTTL
}

// sweepLocked drops every expired listing. c.mu must be held.
func (c *Client) sweepLocked() {
	now := c.now()
	for key, call := range c.listings {
		if call.expired(now) {
			delete(c.listings, key)
		}
	}
}

// File returns the decoded content of a file on the default branch.
func (c *Client) File(ctx context.Context, repo schema.RepositoryCoordinates, path string) ([]byte, error) {
	var resp fileResponse
	if err := c.get(ctx, repoPath(repo, "contents/"+strings.TrimPrefix(path, "/")), &resp); err != nil {
		return nil, err
	}
	return resp.decode()
}

// Readme returns the decoded README selected by GitHub.
func (c *Client) Readme(ctx context.Context, repo schema.RepositoryCoordinates) ([]byte, error) {
	var resp fileResponse
	if err := c.get(ctx, repoPath(repo, "readme"), &resp); err != nil {
		return nil, err
	}
	return resp.decode()
}

// CommunityProfile returns the community health profile.
func (c *Client) CommunityProfile(ctx context.Context, repo schema.RepositoryCoordinates) (CommunityProfileResponse, error) {
	var resp CommunityProfileResponse
	err := c.get(ctx, repoPath(repo, "community/profile"), &resp)
	return resp, err
}

// ContributorCount returns the number of contributors on the first page, up to 100.
func (c *Client) ContributorCount(ctx context.Context, repo schema.RepositoryCoordinates) (int, error) {
	var contributors []struct {
		Login string `json:"login"`
	}
	if err := c.get(ctx, repoPath(repo, "contributors?per_page=100&anon=1"), &contributors); err != nil {
		return 0, err
	}
	return len(contributors), nil
}

// fileResponse is the contents API body for a single file.
type fileResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

func (f fileResponse) decode() ([]byte, error) {
	if f.Encoding != "base64" {
		return []byte(f.Content), nil
	}
	// GitHub wraps base64 content at 60 columns
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(f.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}
	return data, nil
}
