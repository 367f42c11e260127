package ghclient

import "time"

// RepositoryResponse is the subset of GET /repos/{owner}/{repo} used for metadata.
type RepositoryResponse struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	OpenIssues  int       `json:"open_issues_count"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
	License *struct {
		SPDXID string `json:"spdx_id"`
		Name   string `json:"name"`
	} `json:"license"`
}

// ContentEntry is one item of a directory listing.
type ContentEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file", "dir", "symlink" or "submodule"
	Size int64  `json:"size"`
}

// IsDir reports whether the entry is a directory.
func (e ContentEntry) IsDir() bool {
	return e.Type == "dir"
}

// CommunityProfileResponse is the body of GET /repos/{owner}/{repo}/community/profile.
type CommunityProfileResponse struct {
	HealthPercentage int `json:"health_percentage"`
	Files            struct {
		CodeOfConduct       *communityFile `json:"code_of_conduct"`
		Contributing        *communityFile `json:"contributing"`
		IssueTemplate       *communityFile `json:"issue_template"`
		PullRequestTemplate *communityFile `json:"pull_request_template"`
		License             *communityFile `json:"license"`
		Readme              *communityFile `json:"readme"`
	} `json:"files"`
}

type communityFile struct {
	HTMLURL string `json:"html_url"`
}
