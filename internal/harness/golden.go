package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/kgen/internal/defconfig"
	"github.com/roach88/kgen/internal/emit"
)

// Snapshot renders a result as text for golden comparison: the resolved
// mapping in defconfig form, then the flags, then the portable constants
// file.
func Snapshot(name string, result *Result) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# scenario: %s\n", name)

	fmt.Fprintln(&buf, "## resolved")
	if err := defconfig.Write(&buf, result.Mapping); err != nil {
		return nil, err
	}
	fmt.Fprintln(&buf, "## flags")
	if err := emit.WriteFlags(&buf, result.Flags); err != nil {
		return nil, err
	}
	fmt.Fprintln(&buf, "## constants")
	if err := emit.RenderConstants(&buf, result.Constants, emit.DialectPortable); err != nil {
		return nil, err
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(&buf, "## warning: %s\n", w)
	}
	return buf.Bytes(), nil
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run. Assertion failures are left
// in the result for the caller to report.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	snap, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snap)

	return result, nil
}
