package ghclient

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	linkPattern    = regexp.MustCompile(`\[[^\]]*\]\([^)]+\)`)
	badgePattern   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*(badge|shields\.io|badgen)[^)]*\)`)
	testCmdPattern = regexp.MustCompile(`(?i)\b(go test|pytest|npm (run )?test|yarn test|pnpm test|cargo test|mvn (-\S+ )*(test|verify)|gradle\S* test|make test|tox|jest|vitest|rspec|phpunit|ctest|dotnet test|mix test)\b`)
)

// gradeReadme scores a README from 0 to 100 on length, structure, examples,
// links and badges.
func gradeReadme(body string) float64 {
	if strings.TrimSpace(body) == "" {
		return 0
	}
	score := min(40, float64(len(body))/5000*40)
	score += min(20, float64(len(headingPattern.FindAllString(body, -1)))*5)
	if strings.Contains(body, "```") {
		score += 15
	}
	if len(linkPattern.FindAllString(body, -1)) >= 3 {
		score += 15
	}
	if badgePattern.MatchString(body) {
		score += 10
	}
	return min(100, score)
}

// workflowSteps collects the run commands of every job step in a GitHub Actions workflow.
type workflowSteps []string

func (w *workflowSteps) UnmarshalYAML(value *yaml.Node) error {
	var doc struct {
		Jobs map[string]struct {
			Steps []struct {
				Run  string `yaml:"run"`
				Uses string `yaml:"uses"`
			} `yaml:"steps"`
		} `yaml:"jobs"`
	}
	if err := value.Decode(&doc); err != nil {
		return err
	}
	for _, job := range doc.Jobs {
		for _, step := range job.Steps {
			if step.Run != "" {
				*w = append(*w, step.Run)
			}
			if step.Uses != "" {
				*w = append(*w, step.Uses)
			}
		}
	}
	return nil
}

// parseWorkflow reports whether a workflow runs tests and uploads coverage.
func parseWorkflow(body []byte) (runsTests bool, uploadsCoverage bool, err error) {
	var steps workflowSteps
	if err := yaml.Unmarshal(body, &steps); err != nil {
		return false, false, fmt.Errorf("invalid workflow: %w", err)
	}
	for _, step := range steps {
		if testCmdPattern.MatchString(step) {
			runsTests = true
		}
		lower := strings.ToLower(step)
		if strings.Contains(lower, "codecov") || strings.Contains(lower, "coveralls") {
			uploadsCoverage = true
		}
	}
	return runsTests, uploadsCoverage, nil
}

// dependabotConfig is the subset of .github/dependabot.yml used for dependency health.
type dependabotConfig struct {
	Version int `yaml:"version"`
	Updates []struct {
		Ecosystem string `yaml:"package-ecosystem"`
		Directory string `yaml:"directory"`
	} `yaml:"updates"`
}

// ecosystems returns the distinct package ecosystems configured for updates.
func (c dependabotConfig) ecosystems() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, u := range c.Updates {
		if u.Ecosystem == "" {
			continue
		}
		if _, ok := seen[u.Ecosystem]; ok {
			continue
		}
		seen[u.Ecosystem] = struct{}{}
		out = append(out, u.Ecosystem)
	}
	return out
}

func parseDependabot(body []byte) (dependabotConfig, error) {
	var cfg dependabotConfig
	if err := yaml.Unmarshal(body, &cfg); err != nil {
		return dependabotConfig{}, fmt.Errorf("invalid dependabot config: %w", err)
	}
	return cfg, nil
}

// manifestEcosystems maps dependency manifests to their dependabot ecosystem.
var manifestEcosystems = map[string]string{
	"go.mod":           "gomod",
	"package.json":     "npm",
	"requirements.txt": "pip",
	"pyproject.toml":   "pip",
	"setup.py":         "pip",
	"Pipfile":          "pip",
	"Cargo.toml":       "cargo",
	"pom.xml":          "maven",
	"build.gradle":     "gradle",
	"build.gradle.kts": "gradle",
	"Gemfile":          "bundler",
	"composer.json":    "composer",
	"mix.exs":          "mix",
	"pubspec.yaml":     "pub",
	"Package.swift":    "swift",
}

var lockFiles = map[string]struct{}{
	"go.sum":            {},
	"package-lock.json": {},
	"yarn.lock":         {},
	"pnpm-lock.yaml":    {},
	"bun.lockb":         {},
	"poetry.lock":       {},
	"Pipfile.lock":      {},
	"uv.lock":           {},
	"Cargo.lock":        {},
	"Gemfile.lock":      {},
	"composer.lock":     {},
	"mix.lock":          {},
	"pubspec.lock":      {},
	"Package.resolved":  {},
	"gradle.lockfile":   {},
}

var linterConfigs = []string{
	".golangci.yml", ".golangci.yaml", ".golangci.toml",
	".eslintrc", ".eslintrc.js", ".eslintrc.json", ".eslintrc.yml", "eslint.config.js", "eslint.config.mjs",
	".pylintrc", ".flake8", "ruff.toml", ".ruff.toml", "setup.cfg", "tox.ini",
	".rubocop.yml", "clippy.toml", ".clippy.toml", "checkstyle.xml", ".swiftlint.yml", "biome.json",
}

var formatterConfigs = []string{
	".prettierrc", ".prettierrc.json", ".prettierrc.yml", ".prettierrc.js", "prettier.config.js",
	".editorconfig", "rustfmt.toml", ".rustfmt.toml", ".clang-format", ".black", ".isort.cfg",
	".style.yapf", ".scalafmt.conf", ".swiftformat", "biome.json",
}

// secretPatterns are root file names that usually should not be committed.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\.env(\..+)?$`),
	regexp.MustCompile(`(?i)\.(pem|key|p12|pfx|jks|keystore)$`),
	regexp.MustCompile(`^id_(rsa|dsa|ecdsa|ed25519)$`),
	regexp.MustCompile(`(?i)^credentials(\.json)?$`),
	regexp.MustCompile(`(?i)secrets?\.(json|ya?ml|txt)$`),
	regexp.MustCompile(`^\.npmrc$|^\.pypirc$|^\.netrc$`),
}

func isSuspiciousFile(name string) bool {
	if strings.HasSuffix(name, ".example") || strings.HasSuffix(name, ".sample") || strings.HasSuffix(name, ".template") {
		return false
	}
	for _, p := range secretPatterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}
