package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kgen/internal/testutil"
)

var (
	kernelSchema = filepath.Join("..", "..", "testdata", "kconfig", "Kconfig.cue")
	hclSchema    = filepath.Join("..", "..", "testdata", "kconfig-hcl", "Kconfig.hcl")
)

// cmdOutput is what one kgen invocation printed.
type cmdOutput struct {
	Stdout string
	Stderr string
	Logs   string
}

// runKgen executes the root command with args. Logs are captured at Debug
// level unless opts already carries a logger.
func runKgen(t *testing.T, opts *RootOptions, args ...string) (cmdOutput, error) {
	t.Helper()
	if opts == nil {
		opts = &RootOptions{}
	}
	var logs *bytes.Buffer
	if opts.Logger == nil {
		opts.Logger, logs = testutil.CaptureLogger(true)
	}

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommandWithOptions(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	out := cmdOutput{Stdout: stdout.String(), Stderr: stderr.String()}
	if logs != nil {
		out.Logs = logs.String()
	}
	return out, err
}

// targetArgs returns the target flags for the kernel fixture.
func targetArgs(board, buildType string) []string {
	return []string{"--kconfig", kernelSchema, "--board", board, "--build_type", buildType}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// decodeError parses a JSON error envelope.
func decodeError(t *testing.T, stdout string) CLIError {
	t.Helper()
	var resp struct {
		Status string   `json:"status"`
		Error  CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "stdout: %s", stdout)
	require.Equal(t, "error", resp.Status)
	return resp.Error
}
