// Package ruletest runs expression test cases stored in YAML files. A test
// file is named *_test.yaml (or *_test.yml) and lists expressions together
// with the variables to evaluate them with and the expected result.
package ruletest

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"

	exprun "github.com/jcormont/expression-runner"
)

// Config holds configuration for running tests.
type Config struct {
	// Patterns specifies files or directories to search for tests.
	// Default is current directory.
	Patterns []string

	// RunPattern filters tests to run by name regex.
	RunPattern string

	// Options are passed to every compilation and evaluation.
	Options []exprun.Option
}

// DiscoverTestFiles finds all test files matching the given patterns. If no
// patterns are provided, searches the current directory.
func DiscoverTestFiles(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if isTestFile(path) && !seen[path] {
			files = append(files, path)
			seen[path] = true
		}
	}

	for _, pattern := range patterns {
		if strings.Contains(pattern, "*") {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
			}
			for _, m := range matches {
				add(m)
			}
			continue
		}

		// "dir/..." searches recursively
		recursive := false
		searchDir := pattern
		if strings.HasSuffix(pattern, "...") {
			recursive = true
			searchDir = strings.TrimSuffix(strings.TrimSuffix(pattern, "..."), "/")
			if searchDir == "" {
				searchDir = "."
			}
		}

		info, err := os.Stat(searchDir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("path not found: %s", searchDir)
			}
			return nil, err
		}
		if !info.IsDir() {
			add(pattern)
			continue
		}
		if recursive {
			err = filepath.WalkDir(searchDir, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}
		entries, err := os.ReadDir(searchDir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				add(filepath.Join(searchDir, e.Name()))
			}
		}
	}
	return files, nil
}

func isTestFile(path string) bool {
	return strings.HasSuffix(path, "_test.yaml") || strings.HasSuffix(path, "_test.yml")
}

// Run executes tests according to the given configuration.
func Run(ctx context.Context, cfg *Config) (*Summary, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	files, err := DiscoverTestFiles(cfg.Patterns)
	if err != nil {
		return nil, err
	}

	var runRe *regexp.Regexp
	if cfg.RunPattern != "" {
		runRe, err = regexp.Compile(cfg.RunPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid run pattern: %w", err)
		}
	}

	summary := &Summary{}
	start := time.Now()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary.Files = append(summary.Files, runTestFile(ctx, file, runRe, cfg.Options))
	}
	summary.Duration = time.Since(start)
	summary.ComputeTotals()
	return summary, nil
}

func runTestFile(ctx context.Context, filename string, runRe *regexp.Regexp, opts []exprun.Option) *FileResult {
	result := &FileResult{Filename: filename}
	file, err := LoadFile(filename)
	if err != nil {
		result.LoadErr = err
		return result
	}

	fileOpts := append([]exprun.Option{exprun.WithFilename(filename)}, opts...)
	if file.AllowAssignment {
		fileOpts = append(fileOpts, exprun.WithAssignment())
	}
	if file.AllowStatements {
		fileOpts = append(fileOpts, exprun.WithStatements())
	}
	for _, c := range file.Tests {
		if runRe != nil && !runRe.MatchString(c.Name) {
			continue
		}
		result.Tests = append(result.Tests, runCase(ctx, filename, file.Vars, c, fileOpts))
	}
	return result
}

func runCase(ctx context.Context, filename string, shared map[string]any, c Case, opts []exprun.Option) *TestResult {
	result := &TestResult{Name: c.Name, Line: c.Line}
	if c.Skip != "" {
		result.Status = StatusSkipped
		result.SkipReason = c.Skip
		return result
	}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	vars := make(map[string]any, len(shared)+len(c.Vars))
	maps.Copy(vars, shared)
	maps.Copy(vars, c.Vars)

	program, err := exprun.Compile(c.Expression, opts...)
	if err != nil {
		if c.Error != "" {
			checkError(result, filename, c, err)
			return result
		}
		result.Status = StatusError
		result.Error = err
		return result
	}
	got, err := program.Run(ctx, vars)
	if c.Error != "" {
		checkError(result, filename, c, err)
		return result
	}
	if err != nil {
		result.fail(Failure{Message: err.Error(), File: filename, Line: c.Line})
		return result
	}

	want, err := normalize(c.Expect)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Errorf("invalid expected value: %w", err)
		return result
	}
	normalized, err := normalize(got)
	if err != nil {
		// Results that cannot be encoded are compared by their string form.
		normalized = fmt.Sprint(got)
	}
	if diff := cmp.Diff(want, normalized); diff != "" {
		result.fail(Failure{
			Message: "unexpected result (-want +got)",
			File:    filename,
			Line:    c.Line,
			Got:     normalized,
			Want:    want,
			Diff:    diff,
		})
		return result
	}
	result.Status = StatusPassed
	return result
}

func checkError(result *TestResult, filename string, c Case, err error) {
	switch {
	case err == nil:
		result.fail(Failure{
			Message: fmt.Sprintf("expected an error containing %q", c.Error),
			File:    filename,
			Line:    c.Line,
		})
	case !strings.Contains(err.Error(), c.Error):
		result.fail(Failure{
			Message: fmt.Sprintf("error %q does not contain %q", err.Error(), c.Error),
			File:    filename,
			Line:    c.Line,
		})
	default:
		result.Status = StatusPassed
	}
}

func (r *TestResult) fail(f Failure) {
	r.Status = StatusFailed
	r.Failures = append(r.Failures, f)
}

// normalize converts a value to its JSON data model, so that YAML integers
// compare equal to result numbers and maps compare by content.
func normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
