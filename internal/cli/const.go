package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/emit"
)

// ConstResult is the payload of the const command.
type ConstResult struct {
	Output    string          `json:"output" yaml:"output"`
	Dialect   string          `json:"dialect" yaml:"dialect"`
	Written   bool            `json:"written" yaml:"written"`
	Constants []emit.Constant `json:"constants" yaml:"constants"`
	Warnings  []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func (r ConstResult) String() string {
	if !r.Written {
		return "No integer symbols resolved; nothing written"
	}
	s := fmt.Sprintf("✓ Wrote %s to %s", pluralize(len(r.Constants), "constant"), r.Output)
	if n := len(r.Warnings); n > 0 {
		s += fmt.Sprintf(" (%s)", pluralize(n, "warning"))
	}
	return s
}

type constOptions struct {
	target  targetFlags
	output  string
	dialect string
}

// NewConstCommand creates the const command.
func NewConstCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &constOptions{}

	cmd := &cobra.Command{
		Use:   "const",
		Short: "Write the integer constants file",
		Long: `Resolve the schema for a board and build type and write every integer
symbol as a constant declaration, sorted by name.

The portable dialect writes "CONST_<NAME>: unsigned-word-integer = <n>;".
The rust dialect writes "pub const <NAME>: usize = <n>;" under #![no_std].
The output file is replaced atomically. When no integer symbol resolves
no file is written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConst(rootOpts, opts, cmd)
		},
	}

	opts.target.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "constants file to write")
	cmd.Flags().StringVar(&opts.dialect, "dialect", string(emit.DialectPortable), "declaration syntax (portable|rust)")

	return cmd
}

func runConst(rootOpts *RootOptions, opts *constOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.logger(cmd.ErrOrStderr())

	if opts.output == "" {
		return fail(formatter, &commandError{Code: ErrCodeArgs, Err: fmt.Errorf("--output is required")})
	}
	dialect, err := emit.ParseDialect(opts.dialect)
	if err != nil {
		return fail(formatter, &commandError{Code: ErrCodeArgs, Err: err})
	}

	res, err := resolveTarget(opts.target, logger)
	if err != nil {
		return fail(formatter, err)
	}

	consts := emit.Constants(res.Result.Mapping)
	result := ConstResult{
		Output:    opts.output,
		Dialect:   string(dialect),
		Constants: consts,
		Warnings:  warningStrings(res.Result.Warnings),
	}

	if len(consts) == 0 {
		logger.Info("no integer symbols resolved, constants file not written", "output", opts.output)
		return formatter.Success(result)
	}

	if err := emit.WriteConstants(opts.output, consts, dialect, logger); err != nil {
		return fail(formatter, &commandError{Code: ErrCodeOutput, Err: err})
	}
	result.Written = true
	logger.Info("constants written", "output", opts.output, "count", len(consts))

	return formatter.Success(result)
}
