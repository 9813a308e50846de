package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles_CreatesNestedFiles(t *testing.T) {
	dir := t.TempDir()

	WriteFiles(t, dir, map[string]string{
		"Kconfig.cue":          "package kconfig\n",
		"qemu/debug/defconfig": "CONFIG_SMP=y\n",
	})

	data, err := os.ReadFile(filepath.Join(dir, "qemu", "debug", "defconfig"))
	require.NoError(t, err)
	assert.Equal(t, "CONFIG_SMP=y\n", string(data))
	assert.FileExists(t, filepath.Join(dir, "Kconfig.cue"))
}

func TestCaptureLogger_Levels(t *testing.T) {
	quiet, quietBuf := CaptureLogger(false)
	quiet.Debug("hidden")
	quiet.Info("shown", "symbol", "FOO")

	assert.NotContains(t, quietBuf.String(), "hidden")
	assert.Contains(t, quietBuf.String(), "symbol=FOO")

	loud, loudBuf := CaptureLogger(true)
	loud.Debug("details")
	assert.Contains(t, loudBuf.String(), "level=DEBUG")
}
