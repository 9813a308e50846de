package schema

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/kgen/internal/target"
)

// Front-end formats.
const (
	FormatCUE = "cue"
	FormatHCL = "hcl"
)

// Load reads the schema named by tc and returns its ordered symbol table.
//
// A file is loaded by its extension. A directory is loaded as a whole:
// its .cue files when it has any, otherwise its .hcl files. Duplicate
// declarations are logged on logger and ignored; every other problem is a
// *LoadError.
func Load(tc target.Context, logger *slog.Logger) (*Schema, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	info, err := os.Stat(tc.SchemaPath)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema not found: %s", tc.SchemaPath), Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing schema: %v", err), Err: err}
	}

	format, err := detectFormat(tc.SchemaPath, info.IsDir())
	if err != nil {
		return nil, err
	}
	logger.Debug("loading schema", "path", tc.SchemaPath, "format", format)

	b := newBuilder(logger)
	switch format {
	case FormatCUE:
		err = loadCUE(tc, info.IsDir(), b)
	case FormatHCL:
		err = loadHCL(tc, info.IsDir(), b)
	}
	if err != nil {
		return nil, err
	}

	s := b.finish()
	logger.Debug("schema loaded", "symbols", s.Len(), "expressions", s.Pool.Len())
	return s, nil
}

func detectFormat(path string, isDir bool) (string, error) {
	if !isDir {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".cue":
			return FormatCUE, nil
		case ".hcl":
			return FormatHCL, nil
		}
		return "", &LoadError{
			Code:    ErrCodeFormat,
			Message: fmt.Sprintf("unsupported schema file %s (want .cue or .hcl)", path),
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err), Err: err}
	}
	var hasHCL bool
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".cue":
			return FormatCUE, nil
		case ".hcl":
			hasHCL = true
		}
	}
	if hasHCL {
		return FormatHCL, nil
	}
	return "", &LoadError{
		Code:    ErrCodeFormat,
		Message: fmt.Sprintf("no .cue or .hcl files found in %s", path),
	}
}
