package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/harness"
)

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name" yaml:"name"`
	Pass   bool     `json:"pass" yaml:"pass"`
	Golden string   `json:"golden,omitempty" yaml:"golden,omitempty"` // "matched", "updated" or empty when absent
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios" yaml:"scenarios"`
	Passed    int              `json:"passed" yaml:"passed"`
	Failed    int              `json:"failed" yaml:"failed"`
	Total     int              `json:"total" yaml:"total"`
}

func (r TestResult) String() string {
	if r.Total == 0 {
		return "No scenarios found."
	}
	var b strings.Builder
	for _, s := range r.Scenarios {
		mark := "✓"
		if !s.Pass {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s", mark, s.Name)
		if s.Golden == "updated" {
			b.WriteString(" (golden updated)")
		}
		b.WriteByte('\n')
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	fmt.Fprintf(&b, "\n%d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)
	return b.String()
}

type testOptions struct {
	update bool   // regenerate golden files
	filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &testOptions{}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run resolution scenarios",
		Long: `Run every scenario YAML file under a directory: resolve its target and
check its assertions. A scenario named NAME with a golden file at
<scenarios-dir>/../golden/NAME.golden must also reproduce that snapshot.

Examples:
  kgen test ./testdata/scenarios
  kgen test ./testdata/scenarios --filter "qemu_*"
  kgen test ./testdata/scenarios --update
  kgen test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(rootOpts *RootOptions, opts *testOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.logger(cmd.ErrOrStderr())

	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return fail(formatter, &commandError{Code: ErrCodeArgs, Err: fmt.Errorf("scenarios directory not found: %s", scenariosDir)})
	}
	files, err := findScenarioFiles(scenariosDir, opts.filter)
	if err != nil {
		return fail(formatter, &commandError{Code: ErrCodeArgs, Err: err})
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := runScenario(file, opts.update)
		logger.Debug("scenario finished", "scenario", sr.Name, "pass", sr.Pass)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Scenarios = append(result.Scenarios, sr)
	}

	if result.Failed == 0 {
		return formatter.Success(result)
	}
	msg := fmt.Sprintf("%s failed", pluralize(result.Failed, "scenario"))
	if err := formatter.Failure(ErrCodeIssues, msg, result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// findScenarioFiles finds all YAML scenario files in a directory, sorted.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// runScenario executes a single scenario and its golden comparison.
func runScenario(file string, update bool) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}
	sr := ScenarioResult{Name: scenario.Name}

	result, err := harness.Run(scenario)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr
	}
	sr.Errors = result.Errors

	snap, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		sr.Errors = append(sr.Errors, fmt.Sprintf("snapshot failed: %v", err))
		return sr
	}

	goldenPath := goldenFilePath(file, scenario.Name)
	switch {
	case update:
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to create golden directory: %v", err))
			return sr
		}
		if err := renameio.WriteFile(goldenPath, snap, 0o644); err != nil {
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to write golden file: %v", err))
			return sr
		}
		sr.Golden = "updated"
	default:
		want, err := os.ReadFile(goldenPath)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
			return sr
		}
		if !bytes.Equal(want, snap) {
			sr.Errors = append(sr.Errors, "snapshot does not match golden file (run with --update to regenerate)")
			return sr
		}
		sr.Golden = "matched"
	}

	sr.Pass = len(sr.Errors) == 0
	return sr
}

// goldenFilePath returns <scenarios dir>/../golden/<name>.golden, the
// layout the harness package uses for its own tests.
func goldenFilePath(scenarioFile, name string) string {
	return filepath.Join(filepath.Dir(filepath.Dir(scenarioFile)), "golden", name+".golden")
}
