package ghclient

import (
	"context"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// Fetcher returns repository metadata from the GitHub REST API.
type Fetcher struct {
	client *Client
}

var _ contract.MetadataFetcher = &Fetcher{} // Compile-time check

// NewFetcher creates a metadata fetcher on top of the client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// GetInfo implements the MetadataFetcher interface.
func (f *Fetcher) GetInfo(ctx context.Context, repo schema.RepositoryCoordinates) (schema.RepositoryInfo, error) {
	resp, err := f.client.Repository(ctx, repo)
	if err != nil {
		return schema.RepositoryInfo{}, err
	}

	info := schema.RepositoryInfo{
		Owner:       resp.Owner.Login,
		Name:        resp.Name,
		FullName:    resp.FullName,
		URL:         resp.HTMLURL,
		Description: resp.Description,
		Stars:       resp.Stars,
		Forks:       resp.Forks,
		OpenIssues:  resp.OpenIssues,
		CreatedAt:   resp.CreatedAt.UTC(),
		UpdatedAt:   resp.UpdatedAt.UTC(),
		Language:    resp.Language,
	}
	if info.Owner == "" {
		info.Owner = repo.Owner
	}
	if info.Name == "" {
		info.Name = repo.Name
	}
	if info.FullName == "" {
		info.FullName = repo.String()
	}
	if resp.License != nil {
		info.License = resp.License.SPDXID
		if info.License == "" || info.License == "NOASSERTION" {
			info.License = resp.License.Name
		}
	}
	return info, nil
}
