package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/defconfig"
	"github.com/roach88/kgen/internal/ir"
	"github.com/roach88/kgen/internal/resolver"
	"github.com/roach88/kgen/internal/schema"
	"github.com/roach88/kgen/internal/target"
)

// Error codes reported by commands. Schema load failures keep the
// schema package's codes (E001-E104).
const (
	ErrCodeGeneric   = schema.ErrCodeGeneric
	ErrCodeTarget    = "E201" // missing or invalid --kconfig/--board/--build_type
	ErrCodeOverrides = "E202" // defconfig could not be read
	ErrCodeOutput    = "E203" // constants file could not be written
	ErrCodeStore     = "E204" // snapshot database failure
	ErrCodeArgs      = "E205" // other invalid flag values
	ErrCodeIssues    = "E206" // validate found schema or override issues
)

// commandError pairs an error with the code reported to the user.
type commandError struct {
	Code string
	Err  error
}

func (e *commandError) Error() string { return e.Err.Error() }

func (e *commandError) Unwrap() error { return e.Err }

// fail reports err through f and returns the ExitError the command should
// return.
func fail(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var ce *commandError
	if errors.As(err, &ce) {
		code = ce.Code
	}
	var details any
	var le *schema.LoadError
	if errors.As(err, &le) && le.Pos.IsValid() {
		details = map[string]any{"file": le.Pos.File, "line": le.Pos.Line, "column": le.Pos.Column}
	}
	_ = f.Error(code, err.Error(), details)
	return WrapExitError(ExitFailure, "kgen failed", err)
}

// targetFlags are the flags naming one resolution target.
type targetFlags struct {
	Kconfig   string
	Board     string
	BuildType string
}

func (tf *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tf.Kconfig, "kconfig", "", "schema file (.cue or .hcl) or directory")
	cmd.Flags().StringVar(&tf.Board, "board", "", "target board")
	cmd.Flags().StringVar(&tf.BuildType, "build_type", "", "target build type")
}

// resolution is the outcome of the load and resolve steps every command
// shares.
type resolution struct {
	Target target.Context
	Schema *schema.Schema
	Result *resolver.Result
}

// resolveTarget loads the schema and the target's overrides and resolves
// every symbol.
func resolveTarget(tf targetFlags, logger *slog.Logger) (*resolution, error) {
	tc, err := target.New(tf.Kconfig, tf.Board, tf.BuildType)
	if err != nil {
		return nil, &commandError{Code: ErrCodeTarget, Err: err}
	}
	logger.Debug("resolving target", "target", tc)

	s, err := schema.Load(tc, logger)
	if err != nil {
		return nil, &commandError{Code: loadErrorCode(err), Err: err}
	}

	overrides, err := defconfig.Load(tc.OverridePath(), logger)
	if err != nil {
		return nil, &commandError{Code: ErrCodeOverrides, Err: err}
	}

	res := resolver.Resolve(tc, s, overrides, resolver.WithLogger(logger))
	if n := len(res.Warnings); n > 0 {
		logger.Info("resolution finished with warnings", "warnings", n)
	}
	return &resolution{Target: tc, Schema: s, Result: res}, nil
}

// loadErrorCode returns the code of a schema load failure.
func loadErrorCode(err error) string {
	var le *schema.LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}

// warningStrings renders resolver warnings for structured output.
func warningStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}

// formatValue spells a value for human-readable output.
func formatValue(v ir.Value) string {
	if s, ok := v.(ir.String); ok {
		return strconv.Quote(string(s))
	}
	if v == nil {
		return "<unset>"
	}
	return v.Text()
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
