package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd scores a single repository.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <repository>",
	Short: "Score one GitHub repository",
	Long: `Analyze one GitHub repository and print its quality score.

Six probes run concurrently against the GitHub REST API:
- Code quality (languages, linter and formatter configs)
- Documentation (README, LICENSE, CONTRIBUTING, CHANGELOG, docs)
- Testing (test directories, CI workflows, coverage services)
- Community (community profile, contributors)
- Security (security policy, dependency automation, exposed secrets)
- Dependencies (manifests, lock files, dependabot or renovate)

A probe that fails contributes its default values instead of aborting the run.
Results are cached for --cache-ttl and recorded in the score history.

Accepted references: owner/name, https://github.com/owner/name, git@github.com:owner/name.git

Examples:
  # Score a repository
  reposcore analyze cli/cli

  # Bypass the cache and emit JSON
  reposcore analyze https://github.com/cli/cli --refresh --output json

  # Score without touching the history
  reposcore analyze cli/cli --no-history`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		analyzer, err := buildAnalyzer()
		if err != nil {
			contract.LogFatal("Cannot build analyzer", err)
		}
		result, err := analyzer.AnalyzeOne(runContext(cmd), args[0])
		if err != nil {
			contract.LogFatal("Analysis failed", err)
		}
		if err := outwriter.NewOutWriter().WriteResult(result, cfg); err != nil {
			contract.LogFatal("Cannot write result", err)
		}
	},
}

// batchCmd scores several repositories with bounded concurrency.
var batchCmd = &cobra.Command{
	Use:   "batch [repository...]",
	Short: "Score several GitHub repositories in one run",
	Long: `Analyze several repositories with bounded concurrency.

References come from positional arguments and/or --input-file (one per line,
blank lines and lines starting with # are ignored). The list is truncated to
--max-repos and processed in windows of --concurrency repositories.

A failing repository never aborts the batch: it is listed under failures
while every other repository is still scored.

Examples:
  # Score three repositories
  reposcore batch cli/cli spf13/cobra spf13/viper

  # Read references from a file, four at a time
  reposcore batch --input-file repos.txt --concurrency 4

  # Export the batch as CSV
  reposcore batch --input-file repos.txt --output csv --output-file scores.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		refs, err := collectReferences(args, viper.GetString("input-file"))
		if err != nil {
			contract.LogFatal("Cannot read repositories", err)
		}
		analyzer, err := buildAnalyzer()
		if err != nil {
			contract.LogFatal("Cannot build analyzer", err)
		}
		batch := analyzer.AnalyzeMany(runContext(cmd), refs)
		if err := outwriter.NewOutWriter().WriteBatch(batch, cfg); err != nil {
			contract.LogFatal("Cannot write batch", err)
		}
	},
}

// collectReferences merges positional references with the ones listed in inputFile.
func collectReferences(args []string, inputFile string) ([]string, error) {
	refs := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			refs = append(refs, arg)
		}
	}

	if inputFile != "" {
		fileRefs, err := readReferences(inputFile)
		if err != nil {
			return nil, err
		}
		refs = append(refs, fileRefs...)
	}

	if len(refs) == 0 {
		return nil, errors.New("no repositories given. Pass references as arguments or use --input-file")
	}
	return refs, nil
}

// readReferences reads one reference per line, skipping blanks and # comments.
func readReferences(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var refs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return refs, nil
}
