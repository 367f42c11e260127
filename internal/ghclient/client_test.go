package ghclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeREST serves canned JSON bodies keyed by request path.
// Unknown paths answer 404.
type fakeREST struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  map[string]int
}

func newFakeREST(bodies map[string]string) *fakeREST {
	return &fakeREST{bodies: bodies, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeREST) DoWithContext(_ context.Context, method string, path string, _ io.Reader, response any) error {
	f.mu.Lock()
	f.calls[path]++
	body, ok := f.bodies[path]
	err := f.errs[path]
	f.mu.Unlock()

	if method != http.MethodGet {
		return errors.New("unexpected method " + method)
	}
	if err != nil {
		return err
	}
	if !ok {
		return &api.HTTPError{StatusCode: http.StatusNotFound, Message: "Not Found"}
	}
	return json.Unmarshal([]byte(body), response)
}

func (f *fakeREST) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

// fileBody encodes content the way the contents API does.
func fileBody(content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	body, _ := json.Marshal(map[string]string{"content": encoded, "encoding": "base64"})
	return string(body)
}

// listing builds a directory listing body from names; a trailing "/" marks a directory.
func listing(dir string, names ...string) string {
	entries := make([]ContentEntry, 0, len(names))
	for _, n := range names {
		e := ContentEntry{Name: n, Type: "file"}
		if n[len(n)-1] == '/' {
			e.Name, e.Type = n[:len(n)-1], "dir"
		}
		e.Path = e.Name
		if dir != "" {
			e.Path = dir + "/" + e.Name
		}
		entries = append(entries, e)
	}
	body, _ := json.Marshal(entries)
	return string(body)
}

var testRepo = schema.RepositoryCoordinates{Owner: "acme", Name: "widget"}

func TestClient_NotFoundIsWrapped(t *testing.T) {
	client := newClient(newFakeREST(map[string]string{}))

	_, err := client.Repository(context.Background(), testRepo)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_TransportErrorIsReturned(t *testing.T) {
	rest := newFakeREST(map[string]string{})
	rest.errs["repos/acme/widget/languages"] = errors.New("connection reset")
	client := newClient(rest)

	_, err := client.Languages(context.Background(), testRepo)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestClient_ContentsMissingDirIsEmpty(t *testing.T) {
	client := newClient(newFakeREST(map[string]string{}))

	entries, err := client.Contents(context.Background(), testRepo, ".github")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestClient_ContentsIsShared(t *testing.T) {
	rest := newFakeREST(map[string]string{
		"repos/acme/widget/contents": listing("", "README.md", "go.mod"),
	})
	client := newClient(rest)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	var wg sync.WaitGroup
	for range 6 {
		wg.Go(func() {
			entries, err := client.Contents(context.Background(), testRepo, "")
			assert.NoError(t, err)
			assert.Len(t, entries, 2)
		})
	}
	wg.Wait()
	assert.Equal(t, 1, rest.count("repos/acme/widget/contents"))

	now = now.Add(time.Minute)
	_, err := client.Contents(context.Background(), testRepo, "")
	require.NoError(t, err)
	assert.Equal(t, 2, rest.count("repos/acme/widget/contents"), "stale listing should be refetched")
}

func TestClient_ContentsSweepsExpiredListings(t *testing.T) {
	rest := newFakeREST(map[string]string{
		"repos/acme/widget/contents":      listing("", "README.md"),
		"repos/acme/widget/contents/docs": listing("docs", "index.md"),
		"repos/acme/widget/contents/test": listing("test", "main_test.go"),
	})
	client := newClient(rest)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	for _, dir := range []string{"", "docs"} {
		_, err := client.Contents(context.Background(), testRepo, dir)
		require.NoError(t, err)
	}
	assert.Len(t, client.listings, 2)

	now = now.Add(time.Minute)
	_, err := client.Contents(context.Background(), testRepo, "test")
	require.NoError(t, err)

	assert.Len(t, client.listings, 1)
	assert.Contains(t, client.listings, "acme/widget:test")
}

func TestClient_ContentsErrorIsNotShared(t *testing.T) {
	rest := newFakeREST(map[string]string{})
	rest.errs["repos/acme/widget/contents"] = errors.New("rate limited")
	client := newClient(rest)

	_, err := client.Contents(context.Background(), testRepo, "")
	require.Error(t, err)

	delete(rest.errs, "repos/acme/widget/contents")
	rest.bodies["repos/acme/widget/contents"] = listing("", "README.md")
	entries, err := client.Contents(context.Background(), testRepo, "")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestClient_FileDecodesBase64(t *testing.T) {
	content := "name: ci\non: push\n"
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	wrapped := encoded[:8] + "\n" + encoded[8:]
	body, err := json.Marshal(map[string]string{"content": wrapped, "encoding": "base64"})
	require.NoError(t, err)

	client := newClient(newFakeREST(map[string]string{
		"repos/acme/widget/contents/.github/workflows/ci.yml": string(body),
	}))

	got, err := client.File(context.Background(), testRepo, ".github/workflows/ci.yml")
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestClient_ContributorCount(t *testing.T) {
	client := newClient(newFakeREST(map[string]string{
		"repos/acme/widget/contributors?per_page=100&anon=1": `[{"login":"a"},{"login":"b"},{"login":""}]`,
	}))

	count, err := client.ContributorCount(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFetcher_GetInfo(t *testing.T) {
	client := newClient(newFakeREST(map[string]string{
		"repos/acme/widget": `{
			"name": "widget",
			"full_name": "acme/widget",
			"html_url": "https://github.com/acme/widget",
			"description": "Widgets for everyone",
			"stargazers_count": 1200,
			"forks_count": 85,
			"open_issues_count": 14,
			"language": "Go",
			"created_at": "2020-01-02T03:04:05Z",
			"updated_at": "2026-02-03T04:05:06Z",
			"owner": {"login": "acme"},
			"license": {"spdx_id": "MIT", "name": "MIT License"}
		}`,
	}))
	fetcher := NewFetcher(client)

	info, err := fetcher.GetInfo(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, "acme", info.Owner)
	assert.Equal(t, "widget", info.Name)
	assert.Equal(t, "acme/widget", info.FullName)
	assert.Equal(t, "https://github.com/acme/widget", info.URL)
	assert.Equal(t, 1200, info.Stars)
	assert.Equal(t, 85, info.Forks)
	assert.Equal(t, 14, info.OpenIssues)
	assert.Equal(t, "MIT", info.License)
	assert.Equal(t, "Go", info.Language)
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), info.CreatedAt)
}

func TestFetcher_LicenseFallsBackToName(t *testing.T) {
	client := newClient(newFakeREST(map[string]string{
		"repos/acme/widget": `{"name":"widget","owner":{"login":"acme"},"license":{"spdx_id":"NOASSERTION","name":"Other"}}`,
	}))

	info, err := NewFetcher(client).GetInfo(context.Background(), testRepo)
	require.NoError(t, err)
	assert.Equal(t, "Other", info.License)
	assert.Equal(t, "acme/widget", info.FullName)
}

func TestFetcher_NotFound(t *testing.T) {
	_, err := NewFetcher(newClient(newFakeREST(map[string]string{}))).GetInfo(context.Background(), testRepo)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewClient_UsesConfiguredToken(t *testing.T) {
	cfg := contract.DefaultConfig()
	cfg.GitHubToken = "ghp_example"

	client, err := NewClient(cfg)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
