package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure describes one scenario that did not pass.
type ScenarioFailure struct {
	Scenario     string `json:"scenario"`
	ScenarioPath string `json:"scenario_path"`
	Error        string `json:"error"`
}

// OK reports whether every scenario passed.
func (r *SuiteResult) OK() bool {
	return r.Failed == 0
}

// FindScenarios returns the .yaml and .yml files directly inside dir,
// sorted by path.
func FindScenarios(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// RunSuite loads and runs every scenario in dir. A scenario that fails to
// load, fails to run, or fails an assertion is counted as failed; the rest
// of the suite still runs.
func RunSuite(dir string, opts ...Option) (*SuiteResult, error) {
	paths, err := FindScenarios(dir)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{}
	for _, path := range paths {
		result.Total++
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		scenario, err := LoadScenario(path)
		if err != nil {
			result.fail(name, path, fmt.Sprintf("failed to load scenario: %v", err))
			continue
		}
		name = scenario.Name

		runResult, err := Run(scenario, opts...)
		if err != nil {
			result.fail(name, path, fmt.Sprintf("scenario execution failed: %v", err))
			continue
		}
		if !runResult.Pass {
			result.fail(name, path, fmt.Sprintf("scenario assertions failed: %v", runResult.Errors))
			continue
		}
		result.Passed++
	}
	return result, nil
}

func (r *SuiteResult) fail(name, path, msg string) {
	r.Failed++
	r.Failures = append(r.Failures, ScenarioFailure{Scenario: name, ScenarioPath: path, Error: msg})
}
