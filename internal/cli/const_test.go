package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kgen/internal/testutil"
)

func TestConstPortable(t *testing.T) {
	output := filepath.Join(t.TempDir(), "gen", "consts.txt")

	out, err := runKgen(t, nil, append([]string{"const", "-o", output}, targetArgs("qemu", "debug")...)...)
	require.NoError(t, err)
	assert.Equal(t, "✓ Wrote 9 constants to "+output+"\n", out.Stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "const_qemu_debug", data)
}

func TestConstRustDialect(t *testing.T) {
	output := filepath.Join(t.TempDir(), "consts.rs")

	_, err := runKgen(t, nil, append([]string{"const", "--output", output, "--dialect", "rust"}, targetArgs("qemu", "release")...)...)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "const_qemu_release_rust", data)
}

func TestConstSkipsBadOverride(t *testing.T) {
	output := filepath.Join(t.TempDir(), "consts.txt")

	out, err := runKgen(t, nil, "const", "-o", output, "--kconfig", hclSchema, "--board", "board", "--build_type", "debug")
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, "✓ Wrote 1 constant to")
	assert.Contains(t, out.Stdout, "(1 warning)")
	assert.Contains(t, out.Logs, "level=WARN")
	assert.Contains(t, out.Logs, "symbol=QUX")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CONST_FOO: unsigned-word-integer = 7;\n")
	assert.NotContains(t, string(data), "QUX")
}

func TestConstReplacesExistingFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "consts.txt")
	require.NoError(t, os.WriteFile(output, []byte("stale\n"), 0o644))

	_, err := runKgen(t, nil, append([]string{"const", "-o", output}, targetArgs("qemu", "debug")...)...)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "CONST_CPUS_NR: unsigned-word-integer = 4;\n")
}

func TestConstNoIntegersWritesNothing(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"Kconfig.hcl": `
config "SMP" {
  type   = "bool"
  prompt = "smp"
  default {
    value = true
  }
}
`,
	})
	output := filepath.Join(dir, "out", "consts.txt")

	out, err := runKgen(t, nil, "const", "-o", output,
		"--kconfig", filepath.Join(dir, "Kconfig.hcl"), "--board", "b", "--build_type", "debug")
	require.NoError(t, err)
	assert.Equal(t, "No integer symbols resolved; nothing written\n", out.Stdout)
	assert.NoFileExists(t, output)
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestConstJSON(t *testing.T) {
	output := filepath.Join(t.TempDir(), "consts.txt")

	out, err := runKgen(t, nil, append([]string{"--format", "json", "const", "-o", output}, targetArgs("qemu", "debug")...)...)
	require.NoError(t, err)
	assert.Contains(t, out.Stdout, `"status":"ok"`)
	assert.Contains(t, out.Stdout, `"written":true`)
	assert.Contains(t, out.Stdout, `{"name":"CPUS_NR","value":4}`)
}

func TestConstErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing output", append([]string{"const"}, targetArgs("qemu", "debug")...), ErrCodeArgs},
		{"unknown dialect", append([]string{"const", "-o", "x", "--dialect", "cobol"}, targetArgs("qemu", "debug")...), ErrCodeArgs},
		{"missing board", []string{"const", "-o", "x", "--kconfig", kernelSchema, "--build_type", "debug"}, ErrCodeTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runKgen(t, nil, append([]string{"--format", "json"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Equal(t, tt.code, decodeError(t, out.Stdout).Code)
		})
	}
}
