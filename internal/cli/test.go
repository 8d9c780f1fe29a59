package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scenesmith/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name      string   `json:"name"`
	Pass      bool     `json:"pass"`
	BatchHash string   `json:"batch_hash,omitempty"`
	Instances int      `json:"instances"`
	Errors    []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run placement scenarios",
		Long: `Run YAML placement scenarios.

Each scenario names its templates, grid, seed and requests; the batch is
placed, recorded in an in-memory run store, read back and checked against
the scenario's assertions.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  scenesmith test ./scenarios
  scenesmith test ./scenarios --filter "village*"
  scenesmith test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("failed to find scenarios: %v", err))
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	if len(files) == 0 {
		return formatter.Render(result, func(w io.Writer) {
			fmt.Fprintln(w, "No scenarios found.")
		})
	}

	logger := opts.Logger(cmd.ErrOrStderr())
	for _, file := range files {
		formatter.VerboseLog("Running scenario file: %s", file)
		sr := runScenario(file, harness.WithLogger(logger))
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.Format == "json" {
		if result.Failed > 0 {
			_ = formatter.Error("E_TEST_FAILED", fmt.Sprintf("%d scenario(s) failed", result.Failed), result)
			return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
		}
		return formatter.Success(result)
	}

	outputTestText(formatter.Writer, result)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// findScenarioFiles returns YAML scenario files under dir, optionally
// filtered by a glob on the file name without extension.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	paths, err := harness.FindScenarios(dir)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return paths, nil
	}

	var files []string
	for _, path := range paths {
		base := filepath.Base(path)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		matched, err := filepath.Match(filter, name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			files = append(files, path)
		}
	}
	return files, nil
}

// runScenario executes a single scenario file.
func runScenario(file string, opts ...harness.Option) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(scenario, opts...)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	return ScenarioResult{
		Name:      scenario.Name,
		Pass:      result.Pass,
		BatchHash: result.BatchHash,
		Instances: len(result.Instances),
		Errors:    result.Errors,
	}
}

func outputTestText(w io.Writer, result TestResult) {
	for _, s := range result.Scenarios {
		if s.Pass {
			fmt.Fprintf(w, "\u2713 %s (%d instance(s))\n", s.Name, s.Instances)
			continue
		}
		fmt.Fprintf(w, "\u2717 %s\n", s.Name)
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed == 0 {
		fmt.Fprintln(w, "\u2713 All scenarios passed")
	}
}
