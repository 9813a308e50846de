package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: FormatJSON, Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: FormatJSON, Writer: buf}

	require.NoError(t, formatter.Error("E002", "schema not found", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E002", resp.Error.Code)
	assert.Equal(t, "schema not found", resp.Error.Message)
}

func TestOutputFormatter_YAMLSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: FormatYAML, Writer: buf}

	require.NoError(t, formatter.Success(map[string]int{"count": 2}))

	var resp struct {
		Status string         `yaml:"status"`
		Data   map[string]int `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data["count"])
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: FormatText, Writer: buf}

	require.NoError(t, formatter.Success("all symbols resolved"))
	assert.Equal(t, "all symbols resolved\n", buf.String())
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: FormatText, Writer: out, ErrWriter: errOut, Verbose: true}

	require.NoError(t, formatter.Error("E101", "unknown type", map[string]string{"symbol": "X"}))
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error [E101]: unknown type")
	assert.Contains(t, errOut.String(), "Details:")
}

func TestOutputFormatter_TextErrorWithoutErrWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: FormatText, Writer: buf}

	require.NoError(t, formatter.Error("E001", "failed", nil))
	assert.Contains(t, buf.String(), "Error [E001]")
	assert.NotContains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Failure(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: FormatJSON, Writer: buf}

	require.NoError(t, formatter.Failure("E206", "1 issue", map[string]int{"issues": 1}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, map[string]any{"issues": float64(1)}, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E206", resp.Error.Code)

	text := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter = &OutputFormatter{Format: FormatText, Writer: text, ErrWriter: errOut}
	require.NoError(t, formatter.Failure("E206", "1 issue", "✗ one issue"))
	assert.Equal(t, "✗ one issue\n", text.String())
	assert.Empty(t, errOut.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "boom")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.EqualError(t, WrapExitError(ExitFailure, "inner", errors.New("cause")), "inner: cause")
}
