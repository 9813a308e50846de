package emit

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/roach88/kgen/internal/ir"
)

// Banner opens every generated constants file.
const Banner = "// Code generated by kgen; DO NOT EDIT."

// Dialect selects the declaration syntax of a constants file.
type Dialect string

const (
	// DialectPortable writes CONST_<NAME>: unsigned-word-integer = <n>;
	DialectPortable Dialect = "portable"
	// DialectRust writes pub const <NAME>: usize = <n>; under #![no_std].
	DialectRust Dialect = "rust"
)

// ParseDialect validates a --dialect value. Empty selects the portable
// dialect.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case "", DialectPortable:
		return DialectPortable, nil
	case DialectRust:
		return DialectRust, nil
	}
	return "", fmt.Errorf("unknown dialect %q (want %s or %s)", s, DialectPortable, DialectRust)
}

// Constant is one integer declaration.
type Constant struct {
	Name  string `json:"name" yaml:"name"` // upper-cased symbol name
	Value int64  `json:"value" yaml:"value"`
}

// Constants returns the integer subset of m, names upper-cased, sorted by
// name.
func Constants(m *ir.Mapping) []Constant {
	entries := m.OfType(ir.TypeInt)
	out := make([]Constant, 0, len(entries))
	for _, e := range entries {
		out = append(out, Constant{
			Name:  strings.ToUpper(e.Name),
			Value: int64(e.Value.(ir.Int)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// RenderConstants writes the constants file for consts in dialect d.
func RenderConstants(w io.Writer, consts []Constant, d Dialect) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Banner)
	switch d {
	case DialectRust:
		fmt.Fprintln(bw, "#![no_std]")
		fmt.Fprintln(bw, "#![allow(unused)]")
		fmt.Fprintln(bw)
		for _, c := range consts {
			fmt.Fprintf(bw, "pub const %s: usize = %d;\n", c.Name, c.Value)
		}
	case DialectPortable:
		fmt.Fprintln(bw)
		for _, c := range consts {
			fmt.Fprintf(bw, "CONST_%s: unsigned-word-integer = %d;\n", c.Name, c.Value)
		}
	default:
		return fmt.Errorf("unknown dialect %q", d)
	}
	return bw.Flush()
}

// WriteConstants renders consts to path, creating missing parent
// directories. Negative values are written as they are and logged as a
// warning. The file is replaced atomically: readers see either the old
// contents or the new, never a partial write.
func WriteConstants(path string, consts []Constant, d Dialect, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for _, c := range consts {
		if c.Value < 0 {
			logger.Warn("negative constant written as an unsigned word", "symbol", c.Name, "value", c.Value)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending constants file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug("cleanup pending constants file", "error", err)
		}
	}()

	if err := RenderConstants(pendingFile, consts, d); err != nil {
		return fmt.Errorf("write constants: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace constants file: %w", err)
	}

	logger.Debug("constants written", "path", path, "count", len(consts), "dialect", string(d))
	return nil
}
