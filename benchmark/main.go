// Package main benchmarks the repohealth CLI against local clones.
// Every command is timed without a cache and then with a SQLite cache, where
// the first run is cold and the remaining runs are averaged as warm.
//
// Prerequisites:
// - repohealth binary installed and available in PATH
// - Git clones of the benchmark repositories under the base directory
//
// Usage: go run benchmark/main.go [repo-base-dir]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// binary is the CLI under test.
const binary = "repohealth"

// BenchmarkResult holds the timings of one command on one repository.
type BenchmarkResult struct {
	Repository  string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
}

// benchCommand is a command line together with the text that marks success.
type benchCommand struct {
	name    string
	args    []string
	success string
}

// commands are run against every repository.
var commands = []benchCommand{
	{name: "score", args: []string{"score", "--source", "local", "--quiet"}, success: "Scored in"},
	{name: "busfactor", args: []string{"busfactor", "--source", "local", "--quiet"}, success: "Computed in"},
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	if output, err := exec.Command(binary, "cache", "clear").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}

	results := runBenchmarks(config)
	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// checkPrerequisites verifies that the binary and test repositories exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s binary not found in PATH", binary)
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(filepath.Join(repoPath, ".git")); err != nil {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every command across the configured repositories.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, c := range commands {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, c))
		}
	}
	return results
}

// runBenchmarkSuite runs the no-cache and cache phases for one command.
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath string, c benchCommand) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", c.name, repo)

	_, noCache := runBenchmark(config, repoPath, c, "none", config.NoCacheRuns)
	cold, warm := runBenchmark(config, repoPath, c, "sqlite", config.CacheRuns)

	result := BenchmarkResult{
		Repository:  repo,
		Command:     c.name,
		NoCacheTime: formatAverage(noCache),
		ColdTime:    "TIMEOUT",
		WarmTime:    formatAverage(warm),
	}
	if cold > 0 {
		result.ColdTime = fmt.Sprintf("%.3fs", cold)
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark runs a command numRuns times and returns the first successful
// time and the times of the remaining successful runs.
func runBenchmark(config BenchmarkConfig, repoPath string, c benchCommand, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append(append([]string{}, c.args...),
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprint(config.Workers))

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		cmd := exec.CommandContext(ctx, binary, args...)
		cmd.Dir = repoPath

		start := time.Now()
		output, err := cmd.CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && strings.Contains(string(output), c.success) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

// formatAverage renders the mean of times, or TIMEOUT when there are none.
func formatAverage(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	filename := fmt.Sprintf("/tmp/repohealth_benchmark_%s.csv", time.Now().Format("20060102_150405"))

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

	if err := writer.Write([]string{"repo", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		if err := writer.Write([]string{r.Repository, r.Command, r.NoCacheTime, r.ColdTime, r.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results as a table.
func printSummary(results []BenchmarkResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Repository", "Command", "No-cache", "Cold", "Warm"})
	for _, r := range results {
		_ = table.Append([]string{r.Repository, r.Command, r.NoCacheTime, r.ColdTime, r.WarmTime})
	}
	_ = table.Render()
}
