package core

import (
	"testing"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/schema"
)

// FuzzComputeQualityScore fuzzes the scoring engine with arbitrary signals.
func FuzzComputeQualityScore(f *testing.F) {
	f.Add(1000, 75.0, 80.0, 50.0, 60.0, 70.0, 85.0, 0, 0, 12, true)
	f.Add(0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0, 0, 0, false)
	f.Add(-1, -1.0, 101.0, 1e6, -1e6, 200.0, -3.0, 99, 7, -4, true)

	weights := contract.DefaultWeights()
	f.Fuzz(func(t *testing.T,
		loc int,
		maintainability float64,
		readmeQuality float64,
		coverage float64,
		health float64,
		security float64,
		dependencies float64,
		vulnerabilities int,
		secrets int,
		contributors int,
		flag bool,
	) {
		m := schema.RepositoryMetrics{
			CodeQuality:   schema.CodeQualityMetrics{LinesOfCode: loc, MaintainabilityIndex: maintainability},
			Documentation: schema.DocumentationMetrics{HasReadme: flag, ReadmeQuality: readmeQuality, HasLicense: flag},
			Testing:       schema.TestingMetrics{HasTests: flag, CoveragePercent: coverage, HasCI: !flag},
			Community:     schema.CommunityMetrics{CommunityHealthScore: health, Contributors: contributors, HasPRTemplate: flag},
			Security:      schema.SecurityMetrics{SecurityScore: security, VulnerabilityCount: vulnerabilities, ExposedSecretCount: secrets},
			Dependencies:  schema.DependencyMetrics{HealthScore: dependencies},
		}
		score := ComputeQualityScore(m, weights)
		if score.Overall < 0 || score.Overall > 100 {
			t.Fatalf("overall out of range: %d", score.Overall)
		}
		if GradeForScore(score.Overall) != score.Grade {
			t.Fatalf("grade mismatch for %d: %s", score.Overall, score.Grade)
		}
	})
}
