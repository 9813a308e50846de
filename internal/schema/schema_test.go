package schema

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kgen/internal/ir"
	"github.com/roach88/kgen/internal/target"
)

const cueSchema = `package kconfig

board:      string
build_type: string

config: {
	FOO: {
		type:    "int"
		prompt:  "Foo value"
		default: 3
	}
	SMP: {
		type:   "bool"
		prompt: "Symmetric multi-processing"
		default: [{value: true, when: "FOO > 2"}, {value: false}]
	}
	kernel: {
		menu:       "Kernel"
		depends_on: "SMP"
		config: {
			CPUS: {
				type:   "int"
				prompt: "CPUs"
				default: [{expr: "FOO"}]
			}
		}
	}
	BOARD_NAME: {
		type:    "string"
		default: board
	}
}
`

const hclSchema = `
config "FOO" {
  type   = "int"
  prompt = "Foo value"
  default {
    value = board == "pico2" ? 2 : 4
  }
}

menu "Kernel" {
  depends_on = "FOO > 1"

  config "SMP" {
    type       = "bool"
    prompt     = "Symmetric multi-processing"
    visible_if = "FOO != 3"
    default {
      value = true
      when  = "FOO = 2"
    }
  }
}

config "MODE" {
  type = "string"
  default {
    value = build_type
  }
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testContext(path string) target.Context {
	dir := filepath.Dir(path)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		dir = path
	}
	return target.Context{SchemaPath: path, SchemaDir: dir, Board: "pico2", BuildType: "debug"}
}

func symbolNames(s *Schema) []string {
	names := make([]string, 0, s.Len())
	for _, sym := range s.Symbols {
		names = append(names, sym.Name)
	}
	return names
}

func TestLoadCUE(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Kconfig.cue", cueSchema)

	s, err := Load(testContext(path), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"FOO", "SMP", "CPUS", "BOARD_NAME"}, symbolNames(s))

	foo, ok := s.Lookup("FOO")
	require.True(t, ok)
	assert.Equal(t, ir.TypeInt, foo.Type)
	assert.True(t, foo.HasPrompt())
	require.Len(t, foo.Defaults, 1)
	assert.Equal(t, "3", foo.Defaults[0].Value.Text)
	assert.Nil(t, foo.Defaults[0].When)

	smp, _ := s.Lookup("SMP")
	require.Len(t, smp.Defaults, 2)
	assert.Equal(t, "y", smp.Defaults[0].Value.Text)
	assert.Equal(t, "FOO > 2", smp.Defaults[0].When.String())
	assert.Equal(t, "n", smp.Defaults[1].Value.Text)

	cpus, _ := s.Lookup("CPUS")
	assert.Equal(t, "SMP", cpus.DependsOn.String())
	require.Len(t, cpus.Defaults, 1)
	assert.Equal(t, "FOO", cpus.Defaults[0].Value.String())

	name, _ := s.Lookup("BOARD_NAME")
	assert.False(t, name.HasPrompt())
	require.Len(t, name.Defaults, 1)
	assert.Equal(t, "pico2", name.Defaults[0].Value.Text)
	assert.Equal(t, path, name.Pos.File)
}

func TestNonIntegerNumberDefaultsLoad(t *testing.T) {
	dir := t.TempDir()
	cuePath := writeFile(t, dir, "Kconfig.cue", `package kconfig

board:      string
build_type: string

config: {
	RATIO: {type: "int", prompt: "ratio", default: 4.5}
	HUGE: {type: "int", prompt: "huge", default: 100000000000000000000}
}
`)
	s, err := Load(testContext(cuePath), nil)
	require.NoError(t, err)
	ratio, _ := s.Lookup("RATIO")
	require.Len(t, ratio.Defaults, 1)
	assert.Equal(t, "4.5", ratio.Defaults[0].Value.Text)
	huge, _ := s.Lookup("HUGE")
	require.Len(t, huge.Defaults, 1)
	assert.Equal(t, "100000000000000000000", huge.Defaults[0].Value.Text)

	hclPath := writeFile(t, t.TempDir(), "Kconfig.hcl", `
config "RATIO" {
  type   = "int"
  prompt = "ratio"
  default { value = 4.5 }
}
`)
	s, err = Load(testContext(hclPath), nil)
	require.NoError(t, err)
	ratio, _ = s.Lookup("RATIO")
	require.Len(t, ratio.Defaults, 1)
	assert.Equal(t, "4.5", ratio.Defaults[0].Value.Text)
}

func TestLoadHCL(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Kconfig.hcl", hclSchema)

	s, err := Load(testContext(path), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"FOO", "SMP", "MODE"}, symbolNames(s))

	foo, _ := s.Lookup("FOO")
	require.Len(t, foo.Defaults, 1)
	assert.Equal(t, "2", foo.Defaults[0].Value.Text)

	smp, _ := s.Lookup("SMP")
	assert.Equal(t, ir.TypeBool, smp.Type)
	assert.Equal(t, "FOO > 1", smp.DependsOn.String())
	assert.Equal(t, "FOO != 3", smp.Visible.String())
	require.Len(t, smp.Defaults, 1)
	assert.Equal(t, "y", smp.Defaults[0].Value.Text)
	assert.Equal(t, "FOO = 2", smp.Defaults[0].When.String())
	assert.Equal(t, 13, smp.Pos.Line)

	mode, _ := s.Lookup("MODE")
	assert.Equal(t, "debug", mode.Defaults[0].Value.Text)
}

func TestLoadDirectory(t *testing.T) {
	t.Run("hcl files in name order", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "b.hcl", `config "B" { type = "bool" }`)
		writeFile(t, dir, "a.hcl", `config "A" { type = "int" }`)

		s, err := Load(testContext(dir), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, symbolNames(s))
	})

	t.Run("cue preferred", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "Kconfig.cue", cueSchema)
		writeFile(t, dir, "extra.hcl", `config "IGNORED" { type = "bool" }`)

		s, err := Load(testContext(dir), nil)
		require.NoError(t, err)
		_, ok := s.Lookup("IGNORED")
		assert.False(t, ok)
		assert.Equal(t, 4, s.Len())
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := Load(testContext(t.TempDir()), nil)
		assertCode(t, err, ErrCodeFormat)
	})
}

func TestNestedMenusAndConditions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Kconfig.hcl", `
config "A" {
  type   = "bool"
  prompt = "A"
}

menu "Outer" {
  depends_on = "A"
  visible_if = "A"

  menu "Inner" {
    depends_on = "B"

    config "C" {
      type       = "bool"
      prompt     = "C"
      depends_on = "D || E"
    }
  }

  config "F" {
    type = "bool"
  }
}
`)
	s, err := Load(testContext(path), nil)
	require.NoError(t, err)

	c, _ := s.Lookup("C")
	assert.Equal(t, "A && B && (D || E)", c.DependsOn.String())
	assert.Equal(t, "A", c.Visible.String())

	f, _ := s.Lookup("F")
	assert.Equal(t, "A", f.DependsOn.String())

	a, _ := s.Lookup("A")
	assert.Nil(t, a.DependsOn)
	assert.Nil(t, a.Visible)
}

func TestSharedConditionsAreInterned(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Kconfig.hcl", `
config "X" {
  type       = "bool"
  depends_on = "A && B"
}
config "Y" {
  type       = "int"
  depends_on = "A && B"
}
`)
	s, err := Load(testContext(path), nil)
	require.NoError(t, err)

	x, _ := s.Lookup("X")
	y, _ := s.Lookup("Y")
	assert.Same(t, x.DependsOn, y.DependsOn)
}

func TestDuplicateSymbolKeepsFirst(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Kconfig.hcl", `
config "X" {
  type = "int"
}
config "X" {
  type = "string"
}
`)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s, err := Load(testContext(path), logger)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	x, _ := s.Lookup("X")
	assert.Equal(t, ir.TypeInt, x.Type)
	assert.Contains(t, buf.String(), "duplicate symbol declaration ignored")
	assert.Contains(t, buf.String(), "symbol=X")
}

func TestTypeAliases(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Kconfig.hcl", `
config "T" {
  type = "tristate"
}
config "H" {
  type = "hex"
}
`)
	s, err := Load(testContext(path), nil)
	require.NoError(t, err)

	tri, _ := s.Lookup("T")
	hex, _ := s.Lookup("H")
	assert.Equal(t, ir.TypeBool, tri.Type)
	assert.Equal(t, ir.TypeInt, hex.Type)
	assert.True(t, hex.Hex)
	assert.False(t, tri.Hex)

	v, err := hex.Coerce("0x2000")
	require.NoError(t, err)
	assert.Equal(t, ir.Int(8192), v)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		src  string
		code string
	}{
		{
			name: "unknown type",
			file: "Kconfig.hcl",
			src:  `config "X" { type = "float" }`,
			code: ErrCodeInvalidType,
		},
		{
			name: "malformed condition",
			file: "Kconfig.hcl",
			src: `config "X" {
  type       = "bool"
  depends_on = "A &&"
}`,
			code: ErrCodeExpression,
		},
		{
			name: "value and expr",
			file: "Kconfig.hcl",
			src: `config "X" {
  type = "int"
  default {
    value = 1
    expr  = "Y"
  }
}`,
			code: ErrCodeDefault,
		},
		{
			name: "empty default",
			file: "Kconfig.hcl",
			src: `config "X" {
  type = "int"
  default {}
}`,
			code: ErrCodeDefault,
		},
		{
			name: "unknown block",
			file: "Kconfig.hcl",
			src:  `choice "X" {}`,
			code: ErrCodeField,
		},
		{
			name: "hcl syntax",
			file: "Kconfig.hcl",
			src:  `config "X" {`,
			code: ErrCodeLoadFailed,
		},
		{
			name: "missing type",
			file: "Kconfig.cue",
			src:  "package kconfig\n\nconfig: X: prompt: \"x\"\n",
			code: ErrCodeField,
		},
		{
			name: "non-scalar default",
			file: "Kconfig.cue",
			src:  "package kconfig\n\nconfig: X: {type: \"int\", default: [{value: {a: 1}}]}\n",
			code: ErrCodeField,
		},
		{
			name: "no config struct",
			file: "Kconfig.cue",
			src:  "package kconfig\n\nother: 1\n",
			code: ErrCodeGeneric,
		},
		{
			name: "unsupported extension",
			file: "Kconfig",
			src:  "config FOO\n",
			code: ErrCodeFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.src)
			_, err := Load(testContext(path), nil)
			assertCode(t, err, tt.code)
		})
	}
}

func TestLoadMissingSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.cue")
	_, err := Load(testContext(path), nil)
	assertCode(t, err, ErrCodeNotFound)
}

func TestLoadErrorFormatting(t *testing.T) {
	err := &LoadError{Code: ErrCodeField, Message: "bad", Pos: Position{File: "k.hcl", Line: 3, Column: 1}}
	assert.Equal(t, "k.hcl:3:1: E104: bad", err.Error())

	err = &LoadError{Code: ErrCodeGeneric, Message: "bad"}
	assert.Equal(t, "E001: bad", err.Error())
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le), "want *LoadError, got %T: %v", err, err)
	assert.Equal(t, code, le.Code, le.Error())
}
