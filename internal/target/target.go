// Package target carries the explicit build target a run resolves for.
//
// A Context replaces the process-wide BOARD and KCONFIG_DIR variables a
// Kconfig toolchain traditionally exports: it is built once from CLI input
// and handed to the loader and the resolver as a plain value.
package target

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DefconfigName is the override file name inside <schema_dir>/<board>/<build_type>/.
const DefconfigName = "defconfig"

// ErrInvalid is wrapped by every validation failure from New.
var ErrInvalid = errors.New("invalid target")

// Context identifies one schema resolution: which schema, which board,
// which build type.
type Context struct {
	SchemaPath string // file or directory passed as --kconfig
	SchemaDir  string // directory holding the schema and board subdirectories
	Board      string
	BuildType  string
}

// New validates inputs and derives SchemaDir. When schemaPath is a
// directory it is its own SchemaDir; otherwise SchemaDir is its parent.
func New(schemaPath, board, buildType string) (Context, error) {
	switch {
	case schemaPath == "":
		return Context{}, fmt.Errorf("%w: --kconfig is required", ErrInvalid)
	case board == "":
		return Context{}, fmt.Errorf("%w: --board is required", ErrInvalid)
	case buildType == "":
		return Context{}, fmt.Errorf("%w: --build_type is required", ErrInvalid)
	}
	if err := checkComponent("board", board); err != nil {
		return Context{}, err
	}
	if err := checkComponent("build_type", buildType); err != nil {
		return Context{}, err
	}

	info, err := os.Stat(schemaPath)
	if err != nil {
		return Context{}, fmt.Errorf("schema %s: %w", schemaPath, err)
	}
	dir := filepath.Dir(schemaPath)
	if info.IsDir() {
		dir = schemaPath
	}

	return Context{
		SchemaPath: schemaPath,
		SchemaDir:  dir,
		Board:      board,
		BuildType:  buildType,
	}, nil
}

// checkComponent rejects values that would escape the schema directory
// when joined into the override path.
func checkComponent(flag, v string) error {
	if v == "." || v == ".." || strings.ContainsAny(v, `/\`) {
		return fmt.Errorf("%w: --%s %q must be a single path component", ErrInvalid, flag, v)
	}
	return nil
}

// OverridePath returns <schema_dir>/<board>/<build_type>/defconfig.
func (c Context) OverridePath() string {
	return filepath.Join(c.SchemaDir, c.Board, c.BuildType, DefconfigName)
}

// LogValue implements slog.LogValuer.
func (c Context) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("board", c.Board),
		slog.String("build_type", c.BuildType),
		slog.String("schema", c.SchemaPath),
	)
}
