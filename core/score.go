package core

import (
	"math"

	"github.com/huangsam/reposcore/schema"
)

// Grade thresholds, inclusive on the lower bound.
const (
	gradeAThreshold = 90
	gradeBThreshold = 80
	gradeCThreshold = 70
	gradeDThreshold = 60
)

// recommendationThreshold is the dimension score below which a recommendation fires.
const recommendationThreshold = 70

// positiveRecommendation is emitted when no dimension needs attention.
const positiveRecommendation = "Repository quality is strong; keep maintaining current standards"

// recommendations holds the fixed advice for each dimension.
var recommendations = map[schema.Dimension]string{
	schema.DocumentationDimension: "Improve documentation: add a detailed README, a license, a contributing guide and a changelog",
	schema.TestingDimension:       "Strengthen testing: add automated tests, raise coverage and run them in CI",
	schema.SecurityDimension:      "Harden security: publish a security policy and enable automated dependency updates",
	schema.CommunityDimension:     "Grow the community: add a code of conduct plus issue and pull request templates",
	schema.CodeQualityDimension:   "Raise code quality: configure a linter and formatter and reduce maintainability hotspots",
	schema.DependenciesDimension:  "Maintain dependencies: commit lock files and keep manifests up to date",
}

// Formulas describes how each dimension score is derived from its metrics.
var Formulas = map[schema.Dimension]string{
	schema.CodeQualityDimension:   "50 + 30*maintainability/100 + size bonus (20 above 100 LOC, 10 from 100k LOC)",
	schema.DocumentationDimension: "30*readme + 30*readme_quality/100 + 15*license + 10*contributing + 10*changelog + 5*api_docs",
	schema.TestingDimension:       "40*has_tests + 40*coverage/100 + 20*has_ci",
	schema.CommunityDimension:     "health/2 + 15*code_of_conduct + 15*issue_templates + 10*pr_template + 10*(contributors > 5)",
	schema.SecurityDimension:      "security_score + 10*policy + 10*dependabot - 5*vulnerabilities - 10*exposed_secrets",
	schema.DependenciesDimension:  "health_score",
}

// ComputeQualityScore turns a complete set of metrics into a weighted, graded score.
// Weights are trusted to be normalized; the function cannot fail.
func ComputeQualityScore(m schema.RepositoryMetrics, weights map[schema.Dimension]float64) schema.QualityScore {
	breakdown := schema.ScoreBreakdown{
		CodeQuality:   scoreCodeQuality(m.CodeQuality),
		Documentation: scoreDocumentation(m.Documentation),
		Testing:       scoreTesting(m.Testing),
		Community:     scoreCommunity(m.Community),
		Security:      scoreSecurity(m.Security),
		Dependencies:  scoreDependencies(m.Dependencies),
	}

	var raw float64
	for _, d := range schema.AllDimensions {
		raw += float64(breakdown.Get(d)) * weights[d]
	}
	overall := clampScore(raw)

	return schema.QualityScore{
		Overall:         overall,
		Breakdown:       breakdown,
		Grade:           GradeForScore(overall),
		Recommendations: buildRecommendations(breakdown),
	}
}

// GradeForScore maps an overall score to its letter grade.
func GradeForScore(score int) schema.Grade {
	switch {
	case score >= gradeAThreshold:
		return schema.GradeA
	case score >= gradeBThreshold:
		return schema.GradeB
	case score >= gradeCThreshold:
		return schema.GradeC
	case score >= gradeDThreshold:
		return schema.GradeD
	default:
		return schema.GradeF
	}
}

// scoreCodeQuality starts at 50, adds up to 30 for maintainability and a size bonus.
func scoreCodeQuality(m schema.CodeQualityMetrics) int {
	score := 50.0
	score += clamp01(m.MaintainabilityIndex/100) * 30
	switch {
	case m.LinesOfCode >= 100_000:
		score += 10
	case m.LinesOfCode > 100:
		score += 20
	}
	return clampScore(score)
}

func scoreDocumentation(m schema.DocumentationMetrics) int {
	var score float64
	if m.HasReadme {
		score += 30
	}
	score += clamp01(m.ReadmeQuality/100) * 30
	if m.HasLicense {
		score += 15
	}
	if m.HasContributing {
		score += 10
	}
	if m.HasChangelog {
		score += 10
	}
	if m.APIDocumentation {
		score += 5
	}
	return clampScore(score)
}

func scoreTesting(m schema.TestingMetrics) int {
	var score float64
	if m.HasTests {
		score += 40
	}
	score += clamp01(m.CoveragePercent/100) * 40
	if m.HasCI {
		score += 20
	}
	return clampScore(score)
}

func scoreCommunity(m schema.CommunityMetrics) int {
	score := finiteOrZero(m.CommunityHealthScore) * 0.5
	if m.HasCodeOfConduct {
		score += 15
	}
	if m.HasIssueTemplates {
		score += 15
	}
	if m.HasPRTemplate {
		score += 10
	}
	if m.Contributors > 5 {
		score += 10
	}
	return clampScore(score)
}

// scoreSecurity can reach 0 through penalties but never goes negative.
func scoreSecurity(m schema.SecurityMetrics) int {
	score := finiteOrZero(m.SecurityScore)
	if m.HasSecurityPolicy {
		score += 10
	}
	if m.DependabotEnabled {
		score += 10
	}
	score -= 5 * float64(m.VulnerabilityCount)
	score -= 10 * float64(m.ExposedSecretCount)
	return clampScore(score)
}

func scoreDependencies(m schema.DependencyMetrics) int {
	return clampScore(m.HealthScore)
}

// buildRecommendations evaluates the threshold rules in their fixed order.
func buildRecommendations(b schema.ScoreBreakdown) []string {
	var result []string
	for _, d := range schema.RecommendationOrder {
		if b.Get(d) < recommendationThreshold {
			result = append(result, recommendations[d])
		}
	}
	if len(result) == 0 {
		return []string{positiveRecommendation}
	}
	return result
}

// clampScore rounds v and clamps it to [0,100].
func clampScore(v float64) int {
	v = finiteOrZero(v)
	return int(math.Round(math.Min(math.Max(v, 0), 100)))
}

func clamp01(v float64) float64 {
	v = finiteOrZero(v)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// finiteOrZero maps NaN to zero. Infinities are left for the clamps.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
