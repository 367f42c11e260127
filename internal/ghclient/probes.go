package ghclient

import (
	"context"
	"errors"
	"path"
	"slices"
	"strings"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// bytesPerLine approximates source lines from GitHub language byte totals.
const bytesPerLine = 40

// NewProbeSet builds the six probes on a shared client.
func NewProbeSet(client *Client) contract.ProbeSet {
	return contract.ProbeSet{
		CodeQuality:   &CodeQualityProbe{client: client},
		Documentation: &DocumentationProbe{client: client},
		Testing:       &TestingProbe{client: client},
		Community:     &CommunityProbe{client: client},
		Security:      &SecurityProbe{client: client},
		Dependencies:  &DependencyProbe{client: client},
	}
}

// rootListing indexes the root directory of a repository by name.
type rootListing map[string]ContentEntry

func (c *Client) root(ctx context.Context, repo schema.RepositoryCoordinates) (rootListing, error) {
	entries, err := c.Contents(ctx, repo, "")
	if err != nil {
		return nil, err
	}
	listing := make(rootListing, len(entries))
	for _, e := range entries {
		listing[e.Name] = e
	}
	return listing, nil
}

// has reports whether any of the names is present, ignoring case.
func (l rootListing) has(names ...string) bool {
	return l.find(names...) != ""
}

// find returns the first present name, ignoring case.
func (l rootListing) find(names ...string) string {
	for name := range l {
		for _, want := range names {
			if strings.EqualFold(name, want) {
				return name
			}
		}
	}
	return ""
}

// hasPrefix reports whether an entry starts with any of the prefixes, ignoring case.
func (l rootListing) hasPrefix(prefixes ...string) bool {
	for name := range l {
		lower := strings.ToLower(name)
		for _, p := range prefixes {
			if strings.HasPrefix(lower, strings.ToLower(p)) {
				return true
			}
		}
	}
	return false
}

func (l rootListing) dir(name string) bool {
	e, ok := l[name]
	return ok && e.IsDir()
}

// CodeQualityProbe estimates size and maintainability from languages and tooling config.
type CodeQualityProbe struct {
	client *Client
}

var _ contract.Probe[schema.CodeQualityMetrics] = &CodeQualityProbe{} // Compile-time check

// Analyze implements the Probe interface.
func (p *CodeQualityProbe) Analyze(ctx context.Context, repo schema.RepositoryCoordinates) (schema.CodeQualityMetrics, error) {
	langs, err := p.client.Languages(ctx, repo)
	if err != nil {
		return schema.CodeQualityMetrics{}, err
	}
	root, err := p.client.root(ctx, repo)
	if err != nil {
		return schema.CodeQualityMetrics{}, err
	}

	var total int64
	for _, n := range langs {
		total += n
	}
	m := schema.CodeQualityMetrics{
		LinesOfCode:        int(total / bytesPerLine),
		HasLinterConfig:    root.has(linterConfigs...),
		HasFormatterConfig: root.has(formatterConfigs...),
		Languages:          langs,
	}

	mi := 60.0
	if m.HasLinterConfig {
		mi += 10
	}
	if m.HasFormatterConfig {
		mi += 10
	}
	if len(langs) > 5 {
		mi -= 10
	}
	m.MaintainabilityIndex = min(100, max(0, mi))
	return m, nil
}

// DocumentationProbe checks for project documents and grades the README.
type DocumentationProbe struct {
	client *Client
}

var _ contract.Probe[schema.DocumentationMetrics] = &DocumentationProbe{} // Compile-time check

// Analyze implements the Probe interface.
func (p *DocumentationProbe) Analyze(ctx context.Context, repo schema.RepositoryCoordinates) (schema.DocumentationMetrics, error) {
	root, err := p.client.root(ctx, repo)
	if err != nil {
		return schema.DocumentationMetrics{}, err
	}

	m := schema.DocumentationMetrics{
		HasReadme:        root.hasPrefix("readme"),
		HasLicense:       root.hasPrefix("license", "licence", "copying"),
		HasContributing:  root.hasPrefix("contributing"),
		HasChangelog:     root.hasPrefix("changelog", "changes", "history", "news"),
		APIDocumentation: root.dir("docs") || root.dir("doc") || root.dir("documentation") || root.has("mkdocs.yml", "openapi.yaml", "openapi.json", "swagger.yaml", "swagger.json"),
	}

	readme, err := p.client.Readme(ctx, repo)
	switch {
	case errors.Is(err, ErrNotFound):
		m.HasReadme = false
	case err != nil:
		return schema.DocumentationMetrics{}, err
	default:
		m.HasReadme = true
		m.ReadmeQuality = gradeReadme(string(readme))
	}
	return m, nil
}

// ciProviders maps root or .github entries to a CI provider name.
var ciProviders = []struct {
	name  string
	check func(root rootListing, github []ContentEntry) bool
}{
	{"github-actions", func(_ rootListing, github []ContentEntry) bool {
		return slices.ContainsFunc(github, func(e ContentEntry) bool { return e.Name == "workflows" && e.IsDir() })
	}},
	{"travis", func(root rootListing, _ []ContentEntry) bool { return root.has(".travis.yml") }},
	{"circleci", func(root rootListing, _ []ContentEntry) bool { return root.dir(".circleci") }},
	{"gitlab", func(root rootListing, _ []ContentEntry) bool { return root.has(".gitlab-ci.yml") }},
	{"jenkins", func(root rootListing, _ []ContentEntry) bool { return root.has("Jenkinsfile") }},
	{"azure", func(root rootListing, _ []ContentEntry) bool { return root.has("azure-pipelines.yml") }},
}

var testDirNames = []string{"test", "tests", "spec", "specs", "__tests__", "testing", "e2e", "integration"}

// TestingProbe looks for tests, CI configuration and coverage reporting.
type TestingProbe struct {
	client *Client
}

var _ contract.Probe[schema.TestingMetrics] = &TestingProbe{} // Compile-time check

// Analyze implements the Probe interface.
func (p *TestingProbe) Analyze(ctx context.Context, repo schema.RepositoryCoordinates) (schema.TestingMetrics, error) {
	root, err := p.client.root(ctx, repo)
	if err != nil {
		return schema.TestingMetrics{}, err
	}
	github, err := p.client.Contents(ctx, repo, ".github")
	if err != nil {
		return schema.TestingMetrics{}, err
	}

	var m schema.TestingMetrics
	for name, e := range root {
		if e.IsDir() && slices.Contains(testDirNames, strings.ToLower(name)) {
			m.TestDirectories = append(m.TestDirectories, name)
		}
	}
	slices.Sort(m.TestDirectories)

	for _, provider := range ciProviders {
		if provider.check(root, github) {
			m.CIProviders = append(m.CIProviders, provider.name)
		}
	}
	m.HasCI = len(m.CIProviders) > 0

	coverageService := root.has("codecov.yml", ".codecov.yml", ".coveralls.yml")
	workflowTests := false
	if slices.Contains(m.CIProviders, "github-actions") {
		workflowTests, coverageService, err = p.scanWorkflows(ctx, repo, coverageService)
		if err != nil {
			return schema.TestingMetrics{}, err
		}
	}

	m.HasTests = len(m.TestDirectories) > 0 || workflowTests
	switch {
	case m.HasTests && coverageService:
		m.CoveragePercent = 70
	case m.HasTests && m.HasCI:
		m.CoveragePercent = 40
	case m.HasTests:
		m.CoveragePercent = 20
	}
	return m, nil
}

// scanWorkflows parses every workflow file for test and coverage steps.
// Files that fail to parse are skipped.
func (p *TestingProbe) scanWorkflows(ctx context.Context, repo schema.RepositoryCoordinates, coverage bool) (bool, bool, error) {
	entries, err := p.client.Contents(ctx, repo, ".github/workflows")
	if err != nil {
		return false, coverage, err
	}
	runsTests := false
	for _, e := range entries {
		ext := path.Ext(e.Name)
		if e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		body, err := p.client.File(ctx, repo, e.Path)
		if err != nil {
			contract.LogDebug("Skipping workflow", "repo", repo.String(), "path", e.Path, "error", err)
			continue
		}
		tests, uploads, err := parseWorkflow(body)
		if err != nil {
			contract.LogDebug("Skipping workflow", "repo", repo.String(), "path", e.Path, "error", err)
			continue
		}
		runsTests = runsTests || tests
		coverage = coverage || uploads
	}
	return runsTests, coverage, nil
}

// CommunityProbe reads the community profile and contributor count.
type CommunityProbe struct {
	client *Client
}

var _ contract.Probe[schema.CommunityMetrics] = &CommunityProbe{} // Compile-time check

// Analyze implements the Probe interface.
func (p *CommunityProbe) Analyze(ctx context.Context, repo schema.RepositoryCoordinates) (schema.CommunityMetrics, error) {
	profile, err := p.client.CommunityProfile(ctx, repo)
	if err != nil {
		return schema.CommunityMetrics{}, err
	}

	m := schema.CommunityMetrics{
		CommunityHealthScore: float64(min(100, max(0, profile.HealthPercentage))),
		HasCodeOfConduct:     profile.Files.CodeOfConduct != nil,
		HasIssueTemplates:    profile.Files.IssueTemplate != nil,
		HasPRTemplate:        profile.Files.PullRequestTemplate != nil,
	}

	count, err := p.client.ContributorCount(ctx, repo)
	if err != nil {
		contract.LogDebug("Contributor count unavailable", "repo", repo.String(), "error", err)
	}
	m.Contributors = count
	return m, nil
}

// SecurityProbe derives a security score from repository hygiene signals.
// No vulnerability database is consulted.
type SecurityProbe struct {
	client *Client
}

var _ contract.Probe[schema.SecurityMetrics] = &SecurityProbe{} // Compile-time check

// Analyze implements the Probe interface.
func (p *SecurityProbe) Analyze(ctx context.Context, repo schema.RepositoryCoordinates) (schema.SecurityMetrics, error) {
	root, err := p.client.root(ctx, repo)
	if err != nil {
		return schema.SecurityMetrics{}, err
	}
	github, err := p.client.Contents(ctx, repo, ".github")
	if err != nil {
		return schema.SecurityMetrics{}, err
	}
	githubFiles := make(rootListing, len(github))
	for _, e := range github {
		githubFiles[e.Name] = e
	}

	m := schema.SecurityMetrics{
		HasSecurityPolicy: root.has("SECURITY.md") || githubFiles.has("SECURITY.md"),
		DependabotEnabled: githubFiles.has("dependabot.yml", "dependabot.yaml") ||
			root.has("renovate.json", ".renovaterc", ".renovaterc.json") || githubFiles.has("renovate.json"),
	}

	score := 50.0
	if root.has(".gitignore") {
		score += 15
	}
	for name := range root {
		if _, ok := lockFiles[name]; ok {
			score += 15
			break
		}
	}
	if root.has("CODEOWNERS") || githubFiles.has("CODEOWNERS") {
		score += 10
	}
	if githubFiles.dir("workflows") && p.hasSecurityWorkflow(ctx, repo) {
		score += 10
	}
	m.SecurityScore = min(100, score)

	for name, e := range root {
		if !e.IsDir() && isSuspiciousFile(name) {
			m.ExposedSecretCount++
		}
	}
	return m, nil
}

func (p *SecurityProbe) hasSecurityWorkflow(ctx context.Context, repo schema.RepositoryCoordinates) bool {
	entries, err := p.client.Contents(ctx, repo, ".github/workflows")
	if err != nil {
		return false
	}
	return slices.ContainsFunc(entries, func(e ContentEntry) bool {
		name := strings.ToLower(e.Name)
		return strings.Contains(name, "codeql") || strings.Contains(name, "security") || strings.Contains(name, "scorecard")
	})
}

// DependencyProbe checks manifests, lock files and automated update configuration.
type DependencyProbe struct {
	client *Client
}

var _ contract.Probe[schema.DependencyMetrics] = &DependencyProbe{} // Compile-time check

// Analyze implements the Probe interface.
func (p *DependencyProbe) Analyze(ctx context.Context, repo schema.RepositoryCoordinates) (schema.DependencyMetrics, error) {
	root, err := p.client.root(ctx, repo)
	if err != nil {
		return schema.DependencyMetrics{}, err
	}
	github, err := p.client.Contents(ctx, repo, ".github")
	if err != nil {
		return schema.DependencyMetrics{}, err
	}

	var m schema.DependencyMetrics
	wanted := map[string]struct{}{}
	for name := range root {
		if eco, ok := manifestEcosystems[name]; ok {
			m.ManifestFiles = append(m.ManifestFiles, name)
			wanted[eco] = struct{}{}
		}
		if _, ok := lockFiles[name]; ok {
			m.HasLockFile = true
		}
	}
	slices.Sort(m.ManifestFiles)

	var ecosystems []string
	for _, e := range github {
		if e.Name != "dependabot.yml" && e.Name != "dependabot.yaml" {
			continue
		}
		body, err := p.client.File(ctx, repo, e.Path)
		if err != nil {
			return schema.DependencyMetrics{}, err
		}
		cfg, err := parseDependabot(body)
		if err != nil {
			contract.LogDebug("Ignoring dependabot config", "repo", repo.String(), "error", err)
			break
		}
		ecosystems = cfg.ecosystems()
		break
	}
	renovate := root.has("renovate.json", ".renovaterc", ".renovaterc.json") ||
		slices.ContainsFunc(github, func(e ContentEntry) bool { return e.Name == "renovate.json" })

	m.UpdateEcosystems = len(ecosystems)
	m.AutomatedUpdates = len(ecosystems) > 0 || renovate

	if len(m.ManifestFiles) == 0 {
		m.HealthScore = 80
		return m, nil
	}
	score := 40.0
	if m.HasLockFile {
		score += 30
	}
	if m.AutomatedUpdates {
		score += 20
	}
	if renovate || coversAll(ecosystems, wanted) {
		score += 10
	}
	m.HealthScore = min(100, score)
	return m, nil
}

// coversAll reports whether every wanted ecosystem has an update entry.
func coversAll(configured []string, wanted map[string]struct{}) bool {
	if len(configured) == 0 {
		return false
	}
	for eco := range wanted {
		if !slices.Contains(configured, eco) {
			return false
		}
	}
	return true
}
