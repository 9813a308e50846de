package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/defconfig"
	"github.com/roach88/kgen/internal/ir"
)

// ResolveResult is the structured payload of the resolve command.
type ResolveResult struct {
	Board     string      `json:"board" yaml:"board"`
	BuildType string      `json:"build_type" yaml:"build_type"`
	Schema    string      `json:"schema" yaml:"schema"`
	Declared  int         `json:"declared" yaml:"declared"`
	Digest    string      `json:"digest" yaml:"digest"`
	Mapping   *ir.Mapping `json:"mapping" yaml:"mapping"`
	Warnings  []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type resolveOptions struct {
	target targetFlags
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved configuration",
		Long: `Resolve the schema for a board and build type and print every resolved
symbol in declaration order.

Text output is in defconfig form and can be used as an override file.
JSON and YAML output add the target, the mapping digest and any warnings.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, opts, cmd)
		},
	}

	opts.target.register(cmd)

	return cmd
}

func runResolve(rootOpts *RootOptions, opts *resolveOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.logger(cmd.ErrOrStderr())

	res, err := resolveTarget(opts.target, logger)
	if err != nil {
		return fail(formatter, err)
	}
	m := res.Result.Mapping

	if formatter.Format == FormatText {
		return defconfig.Write(cmd.OutOrStdout(), m)
	}

	digest, err := ir.Digest(m)
	if err != nil {
		return fail(formatter, err)
	}
	return formatter.Success(ResolveResult{
		Board:     res.Target.Board,
		BuildType: res.Target.BuildType,
		Schema:    res.Target.SchemaPath,
		Declared:  res.Schema.Len(),
		Digest:    digest,
		Mapping:   m,
		Warnings:  warningStrings(res.Result.Warnings),
	})
}
