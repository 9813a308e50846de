package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/ir"
	"github.com/roach88/kgen/internal/store"
)

// DiffResult is the payload of the diff command.
type DiffResult struct {
	Base  string   `json:"base" yaml:"base"`
	Head  string   `json:"head" yaml:"head"`
	Delta ir.Delta `json:"delta" yaml:"delta"`
}

func (r DiffResult) String() string {
	if r.Delta.Empty() {
		return fmt.Sprintf("No differences between %s and %s", r.Base, r.Head)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s", r.Base, r.Head)
	for _, e := range r.Delta.Added {
		fmt.Fprintf(&b, "\n+ %s=%s", e.Name, formatValue(e.Value))
	}
	for _, e := range r.Delta.Removed {
		fmt.Fprintf(&b, "\n- %s=%s", e.Name, formatValue(e.Value))
	}
	for _, c := range r.Delta.Changed {
		fmt.Fprintf(&b, "\n~ %s: %s -> %s", c.Name, formatValue(c.From), formatValue(c.To))
	}
	return b.String()
}

type diffOptions struct {
	db               string
	board            string
	buildType        string
	againstBoard     string
	againstBuildType string
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the latest snapshots of two targets",
		Long: `Compare the latest recorded snapshot of one board/build type (the base)
with that of another (the head) and print the symbols added, removed and
changed. --against-board and --against-build_type default to the base's
values, so only the part that differs needs to be given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.db, "db", "", "snapshot database path")
	cmd.Flags().StringVar(&opts.board, "board", "", "base board")
	cmd.Flags().StringVar(&opts.buildType, "build_type", "", "base build type")
	cmd.Flags().StringVar(&opts.againstBoard, "against-board", "", "head board (defaults to --board)")
	cmd.Flags().StringVar(&opts.againstBuildType, "against-build_type", "", "head build type (defaults to --build_type)")

	return cmd
}

func runDiff(rootOpts *RootOptions, opts *diffOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.logger(cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.db == "" {
		return fail(formatter, &commandError{Code: ErrCodeArgs, Err: fmt.Errorf("--db is required")})
	}
	if opts.board == "" || opts.buildType == "" {
		return fail(formatter, &commandError{Code: ErrCodeTarget, Err: fmt.Errorf("--board and --build_type are required")})
	}
	headBoard := opts.againstBoard
	if headBoard == "" {
		headBoard = opts.board
	}
	headBuildType := opts.againstBuildType
	if headBuildType == "" {
		headBuildType = opts.buildType
	}

	st, err := store.Open(opts.db, rootOpts.StoreOptions...)
	if err != nil {
		return fail(formatter, &commandError{Code: ErrCodeStore, Err: err})
	}
	defer st.Close()

	delta, err := st.Diff(ctx, opts.board, opts.buildType, headBoard, headBuildType)
	if err != nil {
		code := ErrCodeStore
		if errors.Is(err, store.ErrNotFound) {
			code = ErrCodeTarget
		}
		return fail(formatter, &commandError{Code: code, Err: err})
	}
	logger.Debug("diff computed",
		"added", len(delta.Added),
		"removed", len(delta.Removed),
		"changed", len(delta.Changed),
	)

	return formatter.Success(DiffResult{
		Base:  opts.board + "/" + opts.buildType,
		Head:  headBoard + "/" + headBuildType,
		Delta: delta,
	})
}
