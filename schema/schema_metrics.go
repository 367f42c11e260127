package schema

// CodeQualityMetrics is the fragment produced by the code quality probe.
type CodeQualityMetrics struct {
	LinesOfCode          int              `json:"lines_of_code"`
	MaintainabilityIndex float64          `json:"maintainability_index"`
	HasLinterConfig      bool             `json:"has_linter_config"`
	HasFormatterConfig   bool             `json:"has_formatter_config"`
	Languages            map[string]int64 `json:"languages,omitempty"`
}

// DocumentationMetrics is the fragment produced by the documentation probe.
type DocumentationMetrics struct {
	HasReadme        bool    `json:"has_readme"`
	ReadmeQuality    float64 `json:"readme_quality"`
	HasLicense       bool    `json:"has_license"`
	HasContributing  bool    `json:"has_contributing"`
	HasChangelog     bool    `json:"has_changelog"`
	APIDocumentation bool    `json:"api_documentation"`
}

// TestingMetrics is the fragment produced by the testing probe.
type TestingMetrics struct {
	HasTests        bool     `json:"has_tests"`
	TestDirectories []string `json:"test_directories,omitempty"`
	CoveragePercent float64  `json:"coverage_percent"`
	HasCI           bool     `json:"has_ci"`
	CIProviders     []string `json:"ci_providers,omitempty"`
}

// CommunityMetrics is the fragment produced by the community probe.
type CommunityMetrics struct {
	CommunityHealthScore float64 `json:"community_health_score"`
	HasCodeOfConduct     bool    `json:"has_code_of_conduct"`
	HasIssueTemplates    bool    `json:"has_issue_templates"`
	HasPRTemplate        bool    `json:"has_pr_template"`
	Contributors         int     `json:"contributors"`
}

// SecurityMetrics is the fragment produced by the security probe.
type SecurityMetrics struct {
	SecurityScore      float64 `json:"security_score"`
	HasSecurityPolicy  bool    `json:"has_security_policy"`
	DependabotEnabled  bool    `json:"dependabot_enabled"`
	VulnerabilityCount int     `json:"vulnerability_count"`
	ExposedSecretCount int     `json:"exposed_secret_count"`
}

// DependencyMetrics is the fragment produced by the dependency probe.
type DependencyMetrics struct {
	HealthScore      float64  `json:"health_score"`
	ManifestFiles    []string `json:"manifest_files,omitempty"`
	HasLockFile      bool     `json:"has_lock_file"`
	AutomatedUpdates bool     `json:"automated_updates"`
	UpdateEcosystems int      `json:"update_ecosystems"`
}

// RepositoryMetrics aggregates all six fragments. Every field is always populated.
type RepositoryMetrics struct {
	CodeQuality   CodeQualityMetrics   `json:"code_quality"`
	Documentation DocumentationMetrics `json:"documentation"`
	Testing       TestingMetrics       `json:"testing"`
	Community     CommunityMetrics     `json:"community"`
	Security      SecurityMetrics      `json:"security"`
	Dependencies  DependencyMetrics    `json:"dependencies"`
}

// DefaultCodeQualityMetrics is substituted when the code quality probe fails.
func DefaultCodeQualityMetrics() CodeQualityMetrics { return CodeQualityMetrics{} }

// DefaultDocumentationMetrics is substituted when the documentation probe fails.
func DefaultDocumentationMetrics() DocumentationMetrics { return DocumentationMetrics{} }

// DefaultTestingMetrics is substituted when the testing probe fails.
func DefaultTestingMetrics() TestingMetrics { return TestingMetrics{} }

// DefaultCommunityMetrics is substituted when the community probe fails.
func DefaultCommunityMetrics() CommunityMetrics { return CommunityMetrics{} }

// DefaultSecurityMetrics is substituted when the security probe fails.
func DefaultSecurityMetrics() SecurityMetrics { return SecurityMetrics{} }

// DefaultDependencyMetrics is substituted when the dependency probe fails.
func DefaultDependencyMetrics() DependencyMetrics { return DependencyMetrics{} }
