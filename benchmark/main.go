// Package main provides a performance benchmarking tool for the Reposcore CLI.
// It measures analysis times against live GitHub repositories, running each test
// multiple times, treating the first cached run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - reposcore binary installed and available in PATH
// - GitHub credentials via 'gh auth login' or REPOSCORE_GITHUB_TOKEN
//
// Usage: go run benchmark/main.go [owner/name ...]
//
//	owner/name: Repositories to benchmark (defaults to a fixed set of sizes)
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Target      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Timeout     time.Duration
	Concurrency int
	NoCacheRuns int
	CacheRuns   int
	Repos       []string
}

func main() {
	config := BenchmarkConfig{
		Timeout:     2 * time.Minute,
		Concurrency: 4,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Repos:       []string{"cli/cli", "sharkdp/fd", "spf13/cobra", "kubernetes/kubernetes"},
	}
	if len(os.Args) > 1 {
		config.Repos = os.Args[1:]
	}

	if _, err := exec.LookPath("reposcore"); err != nil {
		fmt.Printf("Prerequisites check failed: reposcore binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks benchmarks every repository alone, then all of them as one batch.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, concurrency %d, no-cache: %d runs, cache: %d runs\n",
		len(config.Repos), config.Timeout, config.Concurrency, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.Repos {
		results = append(results, runBenchmarkSuite(config, repo, "analyze", []string{repo}))
	}

	batchArgs := append([]string{"--concurrency", fmt.Sprint(config.Concurrency)}, config.Repos...)
	results = append(results, runBenchmarkSuite(config, "all", "batch", batchArgs))

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, target, command string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, target)

	runPhase := func(cacheArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, append(args, cacheArgs...), numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase([]string{"--cache", "no", "--no-history"}, config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs, starting from an empty cache
	clearCache()
	coldTime, warmAvg := runPhase([]string{"--cache-backend", "file", "--no-history"}, config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Target:      target,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// clearCache empties the file cache so the first cached run is cold.
func clearCache() {
	if output, err := exec.Command("reposcore", "cache", "clear", "--cache-backend", "file").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
}

// runBenchmark executes a reposcore command multiple times and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, command string, args []string, numRuns int) (coldTime float64, warmTimes []float64) {
	fullArgs := append([]string{command, "--output", "json"}, args...)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "reposcore", fullArgs...).Output()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output, command) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks that the JSON output carries a score, or a batch without failures.
func isSuccess(output []byte, command string) bool {
	if command == "batch" {
		var batch struct {
			Total     int `json:"total"`
			Completed int `json:"completed"`
		}
		return json.Unmarshal(output, &batch) == nil && batch.Total > 0 && batch.Completed == batch.Total
	}
	var result struct {
		Score struct {
			Grade string `json:"grade"`
		} `json:"score"`
	}
	return json.Unmarshal(output, &result) == nil && result.Score.Grade != ""
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s/reposcore_benchmark_%s.csv", os.TempDir(), timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"target", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Target, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"analyze", "batch"} {
		fmt.Printf("%s:\n", strings.ToUpper(command[:1])+command[1:])
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-24s: No-cache: %s, Cold: %s, Warm: %s\n", result.Target, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
