package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	ConfigFile string // optional TOML defaults file

	// Logger receives diagnostics. Commands create a stderr text logger
	// on first use when it is nil.
	Logger *slog.Logger

	// StoreOptions are passed to every store.Open.
	StoreOptions []store.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML}

// NewRootCommand creates the root command for the kgen CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts. Flags
// overwrite the fields they bind; Logger and StoreOptions are kept.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {

	cmd := &cobra.Command{
		Use:   "kgen",
		Short: "kgen - Kconfig-style configuration generator",
		Long: `Resolve a configuration schema for one board and build type, then emit
the artifacts a native build consumes: integer constants and feature flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ConfigFile != "" {
				values, err := loadFileConfig(opts.ConfigFile)
				if err == nil {
					err = applyFileConfig(cmd, values)
				}
				if err != nil {
					return fail(opts.formatter(cmd), &commandError{Code: ErrCodeArgs, Err: err})
				}
			}
			if !isValidFormat(opts.Format) {
				err := fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				return fail(opts.formatter(cmd), &commandError{Code: ErrCodeArgs, Err: err})
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "TOML file with default flag values")

	cmd.AddCommand(NewConstCommand(opts))
	cmd.AddCommand(NewFlagsCommand(opts))
	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// logger returns the command logger, creating it on w when unset.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	if o.Logger == nil {
		o.Logger = NewLogger(w, o.Verbose)
	}
	return o.Logger
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// NewLogger returns a text logger on w: Debug level when verbose, Info
// otherwise.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
