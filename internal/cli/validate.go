package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/defconfig"
	"github.com/roach88/kgen/internal/schema"
	"github.com/roach88/kgen/internal/target"
)

// IssueUnknownOverride marks an override line naming an undeclared symbol.
const IssueUnknownOverride = "W004"

// ValidationResult is the payload of the validate command.
type ValidationResult struct {
	Valid   bool           `json:"valid" yaml:"valid"`
	Symbols int            `json:"symbols" yaml:"symbols"`
	Issues  []schema.Issue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Valid {
		return fmt.Sprintf("✓ Schema valid (%s)", pluralize(r.Symbols, "symbol"))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✗ Validation found %s", pluralize(len(r.Issues), "issue"))
	for _, is := range r.Issues {
		fmt.Fprintf(&b, "\n  %s", is)
	}
	return b.String()
}

type validateOptions struct {
	target targetFlags
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a schema and its override file without emitting anything",
		Long: `Load the schema for a board and build type and report problems that do
not stop resolution but usually indicate a mistake: references to
undeclared symbols, symbols without a prompt or a default, and override
lines for symbols the schema does not declare.

Exits 1 when any issue is found.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, cmd)
		},
	}

	opts.target.register(cmd)

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *validateOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.logger(cmd.ErrOrStderr())

	tc, err := target.New(opts.target.Kconfig, opts.target.Board, opts.target.BuildType)
	if err != nil {
		return fail(formatter, &commandError{Code: ErrCodeTarget, Err: err})
	}
	s, err := schema.Load(tc, logger)
	if err != nil {
		return fail(formatter, &commandError{Code: loadErrorCode(err), Err: err})
	}
	overrides, err := defconfig.Load(tc.OverridePath(), logger)
	if err != nil {
		return fail(formatter, &commandError{Code: ErrCodeOverrides, Err: err})
	}

	issues := s.Check()
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, ok := s.Lookup(name); !ok {
			issues = append(issues, schema.Issue{
				Code:    IssueUnknownOverride,
				Symbol:  name,
				Message: "override for undeclared symbol",
				Pos:     schema.Position{File: tc.OverridePath()},
			})
		}
	}

	result := ValidationResult{Valid: len(issues) == 0, Symbols: s.Len(), Issues: issues}
	if result.Valid {
		return formatter.Success(result)
	}

	for _, is := range issues {
		logger.Debug("validation issue", "code", is.Code, "symbol", is.Symbol, "message", is.Message)
	}
	msg := fmt.Sprintf("validation found %s", pluralize(len(issues), "issue"))
	if err := formatter.Failure(ErrCodeIssues, msg, result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}
