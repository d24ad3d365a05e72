package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteOptions configures RunSuite.
type SuiteOptions struct {
	// Filter keeps only scenarios whose name contains it.
	Filter string

	// GoldenDir enables report comparison against <GoldenDir>/<name>.golden.
	GoldenDir string

	// Update rewrites golden files instead of comparing them.
	Update bool

	Logger *slog.Logger
}

// SuiteResult summarizes a scenario directory run.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Skipped  int               `json:"skipped"` // Filtered out
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure is one failed scenario of a suite run.
type ScenarioFailure struct {
	Scenario string   `json:"scenario"`
	Path     string   `json:"path"`
	Errors   []string `json:"errors"`
}

// OK reports whether every scenario passed.
func (r *SuiteResult) OK() bool {
	return r.Failed == 0
}

// FindScenarios returns the *.yaml and *.yml files under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find scenarios in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// RunSuite loads and runs every scenario under dir.
// A scenario that fails to load or run counts as failed; RunSuite only
// returns an error when dir cannot be read.
func RunSuite(ctx context.Context, dir string, opts SuiteOptions) (*SuiteResult, error) {
	paths, err := FindScenarios(dir)
	if err != nil {
		return nil, err
	}

	suite := &SuiteResult{Failures: []ScenarioFailure{}}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		scenario, err := LoadScenario(path)
		if err != nil {
			suite.Total++
			suite.fail(filepath.Base(path), path, []string{err.Error()})
			continue
		}
		if opts.Filter != "" && !strings.Contains(scenario.Name, opts.Filter) {
			suite.Skipped++
			continue
		}
		suite.Total++

		result, err := RunContext(ctx, scenario, opts.Logger)
		if err != nil {
			suite.fail(scenario.Name, path, []string{err.Error()})
			continue
		}

		errs := result.Errors
		if opts.GoldenDir != "" {
			if err := compareGolden(opts.GoldenDir, scenario.Name, result.Report, opts.Update); err != nil {
				errs = append(errs, err.Error())
			}
		}
		if len(errs) > 0 {
			suite.fail(scenario.Name, path, errs)
			continue
		}
		suite.Passed++
	}
	return suite, nil
}

func (r *SuiteResult) fail(name, path string, errs []string) {
	r.Failed++
	r.Failures = append(r.Failures, ScenarioFailure{Scenario: name, Path: path, Errors: errs})
}

// compareGolden checks report against <dir>/<name>.golden, or rewrites the
// file when update is set.
func compareGolden(dir, name, report string, update bool) error {
	path := filepath.Join(dir, name+".golden")
	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("update golden: %w", err)
		}
		if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
			return fmt.Errorf("update golden: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("golden file %s not found (run with --update)", path)
	}
	if err != nil {
		return fmt.Errorf("read golden: %w", err)
	}
	if string(want) != report {
		return fmt.Errorf("report differs from %s", path)
	}
	return nil
}
