package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/kgen/internal/store"
)

// SnapshotResult is the payload of the snapshot command.
type SnapshotResult struct {
	Snapshot store.Snapshot `json:"snapshot" yaml:"snapshot"`
	Inserted bool           `json:"inserted" yaml:"inserted"`
	Warnings []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func (r SnapshotResult) String() string {
	verb := "Recorded"
	if !r.Inserted {
		verb = "Unchanged, refreshed"
	}
	return fmt.Sprintf("✓ %s snapshot %s (seq %d, %s, digest %s)",
		verb, r.Snapshot.ID, r.Snapshot.Seq, pluralize(r.Snapshot.Symbols, "symbol"), shortDigest(r.Snapshot.Digest))
}

// SnapshotList is the payload of snapshot --list.
type SnapshotList struct {
	Board     string           `json:"board" yaml:"board"`
	BuildType string           `json:"build_type" yaml:"build_type"`
	Snapshots []store.Snapshot `json:"snapshots" yaml:"snapshots"`
}

func (l SnapshotList) String() string {
	if len(l.Snapshots) == 0 {
		return fmt.Sprintf("No snapshots for %s/%s", l.Board, l.BuildType)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Snapshots for %s/%s:", l.Board, l.BuildType)
	for _, s := range l.Snapshots {
		fmt.Fprintf(&b, "\n  %4d  %s  %s  %s", s.Seq, s.ID, shortDigest(s.Digest), pluralize(s.Symbols, "symbol"))
	}
	return b.String()
}

type snapshotOptions struct {
	target targetFlags
	db     string
	list   bool
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record the resolved configuration in a snapshot database",
		Long: `Resolve the schema for a board and build type and record the result in
a SQLite snapshot database. Recording an unchanged configuration reuses the
existing snapshot. With --list, print the recorded snapshots of the target
instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(rootOpts, opts, cmd)
		},
	}

	opts.target.register(cmd)
	cmd.Flags().StringVar(&opts.db, "db", "", "snapshot database path")
	cmd.Flags().BoolVar(&opts.list, "list", false, "list recorded snapshots instead of recording")

	return cmd
}

func runSnapshot(rootOpts *RootOptions, opts *snapshotOptions, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)
	logger := rootOpts.logger(cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.db == "" {
		return fail(formatter, &commandError{Code: ErrCodeArgs, Err: fmt.Errorf("--db is required")})
	}

	if opts.list {
		if opts.target.Board == "" || opts.target.BuildType == "" {
			return fail(formatter, &commandError{Code: ErrCodeTarget, Err: fmt.Errorf("--board and --build_type are required")})
		}
		st, err := store.Open(opts.db, rootOpts.StoreOptions...)
		if err != nil {
			return fail(formatter, &commandError{Code: ErrCodeStore, Err: err})
		}
		defer st.Close()

		snaps, err := st.List(ctx, opts.target.Board, opts.target.BuildType)
		if err != nil {
			return fail(formatter, &commandError{Code: ErrCodeStore, Err: err})
		}
		if snaps == nil {
			snaps = []store.Snapshot{}
		}
		return formatter.Success(SnapshotList{Board: opts.target.Board, BuildType: opts.target.BuildType, Snapshots: snaps})
	}

	res, err := resolveTarget(opts.target, logger)
	if err != nil {
		return fail(formatter, err)
	}

	if err := os.MkdirAll(filepath.Dir(opts.db), 0o755); err != nil {
		return fail(formatter, &commandError{Code: ErrCodeStore, Err: err})
	}
	st, err := store.Open(opts.db, rootOpts.StoreOptions...)
	if err != nil {
		return fail(formatter, &commandError{Code: ErrCodeStore, Err: err})
	}
	defer st.Close()

	snap, inserted, err := st.Record(ctx, res.Target.Board, res.Target.BuildType, res.Result.Mapping)
	if err != nil {
		return fail(formatter, &commandError{Code: ErrCodeStore, Err: err})
	}
	logger.Info("snapshot recorded", "id", snap.ID, "seq", snap.Seq, "inserted", inserted)

	snap.Mapping = nil
	return formatter.Success(SnapshotResult{Snapshot: snap, Inserted: inserted, Warnings: warningStrings(res.Result.Warnings)})
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
