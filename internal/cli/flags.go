package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/emit"
)

// FlagsResult is the structured payload of the flags command.
type FlagsResult struct {
	Flags    []string `json:"flags" yaml:"flags"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type flagsOptions struct {
	target targetFlags
}

// NewFlagsCommand creates the flags command.
func NewFlagsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &flagsOptions{}

	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Print the build feature flags",
		Long: `Resolve the schema for a board and build type and print one build flag
per line, in declaration order: the lower-cased name of every enabled
bool symbol and name="value" for every non-empty string symbol.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlags(rootOpts, opts, cmd)
		},
	}

	opts.target.register(cmd)

	return cmd
}

func runFlags(rootOpts *RootOptions, opts *flagsOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.logger(cmd.ErrOrStderr())

	res, err := resolveTarget(opts.target, logger)
	if err != nil {
		return fail(formatter, err)
	}

	flags := emit.Flags(res.Result.Mapping)
	logger.Debug("flags emitted", "count", len(flags))

	if formatter.Format == FormatText {
		return emit.WriteFlags(cmd.OutOrStdout(), flags)
	}
	if flags == nil {
		flags = []string{}
	}
	return formatter.Success(FlagsResult{Flags: flags, Warnings: warningStrings(res.Result.Warnings)})
}
