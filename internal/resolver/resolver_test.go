package resolver

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kgen/internal/defconfig"
	"github.com/roach88/kgen/internal/ir"
	"github.com/roach88/kgen/internal/schema"
	"github.com/roach88/kgen/internal/target"
	"github.com/roach88/kgen/internal/testutil"
)

func loadSchema(t *testing.T, src string) (target.Context, *schema.Schema) {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"Kconfig.hcl": src})
	path := filepath.Join(dir, "Kconfig.hcl")

	tc := target.Context{SchemaPath: path, SchemaDir: dir, Board: "qemu", BuildType: "debug"}
	s, err := schema.Load(tc, nil)
	require.NoError(t, err)
	return tc, s
}

func names(m *ir.Mapping) []string {
	var out []string
	for _, e := range m.Entries() {
		out = append(out, e.Name)
	}
	return out
}

func TestOverrideBeatsDefault(t *testing.T) {
	tc, s := loadSchema(t, `
config "FOO" {
  type   = "int"
  prompt = "foo"
  default { value = 4 }
}
`)
	res := Resolve(tc, s, defconfig.Overrides{"FOO": "7"})

	v, ok := res.Mapping.Get("FOO")
	require.True(t, ok)
	assert.Equal(t, ir.Int(7), v)
	assert.Empty(t, res.Warnings)

	res = Resolve(tc, s, nil)
	v, _ = res.Mapping.Get("FOO")
	assert.Equal(t, ir.Int(4), v)
}

func TestBadOverrideOmitsOnlyThatSymbol(t *testing.T) {
	tc, s := loadSchema(t, `
config "QUX" {
  type   = "int"
  prompt = "qux"
  default { value = 1 }
}
config "BAR" {
  type   = "bool"
  prompt = "bar"
  default { value = true }
}
config "SIZE" {
  type   = "hex"
  prompt = "size"
  default { value = 16 }
}
`)
	logger, buf := testutil.CaptureLogger(false)

	res := Resolve(tc, s, defconfig.Overrides{"QUX": "lots", "SIZE": "0x20"}, WithLogger(logger))

	assert.Equal(t, []string{"BAR", "SIZE"}, names(res.Mapping))
	size, _ := res.Mapping.Get("SIZE")
	assert.Equal(t, ir.Int(32), size)

	require.Len(t, res.Warnings, 1)
	var verr *ValueError
	require.True(t, errors.As(res.Warnings[0], &verr))
	assert.Equal(t, "QUX", verr.Symbol)
	assert.Equal(t, SourceOverride, verr.Source)
	assert.ErrorIs(t, verr, ir.ErrCoerce)

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "symbol=QUX")
}

func TestIntOverridesAreDecimal(t *testing.T) {
	tc, s := loadSchema(t, `
config "PRIO" {
  type   = "int"
  prompt = "prio"
  default { value = 1 }
}
config "MASK" {
  type   = "int"
  prompt = "mask"
  default { value = 1 }
}
config "ADDR" {
  type   = "hex"
  prompt = "addr"
  default { value = 0 }
}
`)
	res := Resolve(tc, s, defconfig.Overrides{"PRIO": "010", "MASK": "0b101", "ADDR": "0x2000"})

	prio, _ := res.Mapping.Get("PRIO")
	assert.Equal(t, ir.Int(10), prio)
	addr, _ := res.Mapping.Get("ADDR")
	assert.Equal(t, ir.Int(8192), addr)

	_, ok := res.Mapping.Get("MASK")
	assert.False(t, ok)
	require.Len(t, res.Warnings, 1)
	var verr *ValueError
	require.True(t, errors.As(res.Warnings[0], &verr))
	assert.Equal(t, "MASK", verr.Symbol)
}

func TestNotSetAppliesOnlyToBools(t *testing.T) {
	tc, s := loadSchema(t, `
config "DEBUG" {
  type   = "bool"
  prompt = "debug"
  default { value = true }
}
config "ARCH" {
  type   = "string"
  prompt = "arch"
  default { value = "riscv" }
}
config "CPUS" {
  type   = "int"
  prompt = "cpus"
  default { value = 2 }
}
`)
	overrides, problems, err := defconfig.Parse(strings.NewReader(
		"# CONFIG_DEBUG is not set\n# CONFIG_ARCH is not set\n# CONFIG_CPUS is not set\n"), "defconfig")
	require.NoError(t, err)
	require.Empty(t, problems)

	res := Resolve(tc, s, overrides)

	assert.Empty(t, res.Warnings)
	debug, _ := res.Mapping.Get("DEBUG")
	assert.Equal(t, ir.Bool(false), debug)
	arch, _ := res.Mapping.Get("ARCH")
	assert.Equal(t, ir.String("riscv"), arch)
	cpus, _ := res.Mapping.Get("CPUS")
	assert.Equal(t, ir.Int(2), cpus)
}

func TestBadDefaultIsOmitted(t *testing.T) {
	tc, s := loadSchema(t, `
config "N" {
  type   = "int"
  prompt = "n"
  default { value = "many" }
}
`)
	res := Resolve(tc, s, nil)

	assert.Equal(t, 0, res.Mapping.Len())
	require.Len(t, res.Warnings, 1)
	var verr *ValueError
	require.True(t, errors.As(res.Warnings[0], &verr))
	assert.Equal(t, SourceDefault, verr.Source)
	assert.Equal(t, "many", verr.Text)
}

func TestNonIntegerDefaultOmitsOnlyThatSymbol(t *testing.T) {
	tc, s := loadSchema(t, `
config "RATIO" {
  type   = "int"
  prompt = "ratio"
  default { value = 4.5 }
}
config "HUGE" {
  type   = "int"
  prompt = "huge"
  default { value = 100000000000000000000 }
}
config "OK" {
  type   = "int"
  prompt = "ok"
  default { value = 2 }
}
`)
	res := Resolve(tc, s, nil)

	assert.Equal(t, []string{"OK"}, names(res.Mapping))
	require.Len(t, res.Warnings, 2)
	var verr *ValueError
	require.True(t, errors.As(res.Warnings[0], &verr))
	assert.Equal(t, "RATIO", verr.Symbol)
	assert.Equal(t, "4.5", verr.Text)
	require.True(t, errors.As(res.Warnings[1], &verr))
	assert.Equal(t, "HUGE", verr.Symbol)
}

func TestHiddenSymbolsNeverAppear(t *testing.T) {
	tc, s := loadSchema(t, `
config "OFF" {
  type   = "bool"
  prompt = "off"
  default { value = false }
}
config "NO_PROMPT" {
  type = "int"
  default { value = 1 }
}
config "INVISIBLE" {
  type       = "int"
  prompt     = "invisible"
  visible_if = "OFF"
  default { value = 2 }
}
config "BLOCKED" {
  type       = "int"
  prompt     = "blocked"
  depends_on = "OFF"
  default { value = 3 }
}
`)
	overrides := defconfig.Overrides{"NO_PROMPT": "9", "INVISIBLE": "9", "BLOCKED": "9"}
	res := Resolve(tc, s, overrides)

	assert.Equal(t, []string{"OFF"}, names(res.Mapping))
	assert.Empty(t, res.Warnings)
}

func TestFirstSatisfiedDefaultWins(t *testing.T) {
	tc, s := loadSchema(t, `
config "MODE" {
  type   = "string"
  prompt = "mode"
  default { value = "release" }
}
config "LEVEL" {
  type   = "int"
  prompt = "level"
  default {
    value = 3
    when  = "MODE = \"debug\""
  }
  default {
    value = 1
    when  = "MODE = \"release\""
  }
  default { value = 0 }
}
config "NONE" {
  type   = "int"
  prompt = "none"
  default {
    value = 5
    when  = "MODE = \"other\""
  }
}
`)
	res := Resolve(tc, s, nil)
	level, _ := res.Mapping.Get("LEVEL")
	assert.Equal(t, ir.Int(1), level)

	_, ok := res.Mapping.Get("NONE")
	assert.False(t, ok, "no default applies, so the symbol is omitted")

	res = Resolve(tc, s, defconfig.Overrides{"MODE": "debug"})
	level, _ = res.Mapping.Get("LEVEL")
	assert.Equal(t, ir.Int(3), level)
}

func TestLaterDefaultsAreNotEvaluated(t *testing.T) {
	// Consulting either later default would record a warning: the second
	// value is not an integer and the third guard re-enters PICK.
	tc, s := loadSchema(t, `
config "PICK" {
  type   = "int"
  prompt = "pick"
  default { value = 7 }
  default { value = "seven" }
  default {
    value = 9
    when  = "PICK = 9"
  }
}
`)
	logger, logs := testutil.CaptureLogger(false)

	res := Resolve(tc, s, nil, WithLogger(logger))

	pick, ok := res.Mapping.Get("PICK")
	require.True(t, ok)
	assert.Equal(t, ir.Int(7), pick)
	assert.Empty(t, res.Warnings)
	assert.NotContains(t, logs.String(), "level=WARN")
}

func TestExpressionDefaults(t *testing.T) {
	tc, s := loadSchema(t, `
config "FOO" {
  type   = "int"
  prompt = "foo"
  default { value = 4 }
}
config "COPY" {
  type   = "int"
  prompt = "copy"
  default { expr = "FOO" }
}
config "BIG" {
  type   = "bool"
  prompt = "big"
  default { expr = "FOO >= 4" }
}
config "UNSET" {
  type   = "bool"
  prompt = "unset"
}
config "ECHO" {
  type   = "string"
  prompt = "echo"
  default { expr = "UNSET" }
}
`)
	res := Resolve(tc, s, nil)

	v, _ := res.Mapping.Get("COPY")
	assert.Equal(t, ir.Int(4), v)
	v, _ = res.Mapping.Get("BIG")
	assert.Equal(t, ir.Bool(true), v)
	v, _ = res.Mapping.Get("ECHO")
	assert.Equal(t, ir.String("n"), v, "an unresolved bool reads as n")
	_, ok := res.Mapping.Get("UNSET")
	assert.False(t, ok)
}

func TestForwardReferenceKeepsDeclarationOrder(t *testing.T) {
	tc, s := loadSchema(t, `
config "CPUS" {
  type       = "int"
  prompt     = "cpus"
  depends_on = "SMP"
  default { value = 4 }
}
config "SMP" {
  type   = "bool"
  prompt = "smp"
  default { value = true }
}
`)
	res := Resolve(tc, s, nil)
	assert.Equal(t, []string{"CPUS", "SMP"}, names(res.Mapping))

	res = Resolve(tc, s, defconfig.Overrides{"SMP": "n"})
	assert.Equal(t, []string{"SMP"}, names(res.Mapping))
}

func TestDependencyCycle(t *testing.T) {
	tc, s := loadSchema(t, `
config "A" {
  type       = "bool"
  prompt     = "a"
  depends_on = "B"
  default { value = true }
}
config "B" {
  type       = "bool"
  prompt     = "b"
  depends_on = "A"
  default { value = true }
}
config "C" {
  type   = "int"
  prompt = "c"
  default { value = 1 }
}
`)
	logger, buf := testutil.CaptureLogger(false)

	res := Resolve(tc, s, nil, WithLogger(logger))

	assert.Equal(t, []string{"C"}, names(res.Mapping))
	require.Len(t, res.Warnings, 1)
	var cerr *CycleError
	require.True(t, errors.As(res.Warnings[0], &cerr))
	assert.Equal(t, "A", cerr.Symbol)
	assert.Contains(t, buf.String(), "dependency cycle")
}

func TestSharedConditionIsMemoized(t *testing.T) {
	tc, s := loadSchema(t, `
config "SMP" {
  type   = "bool"
  prompt = "smp"
  default { value = true }
}
config "A" {
  type       = "bool"
  prompt     = "a"
  depends_on = "SMP && !SMP_DISABLE"
  default { value = true }
}
config "B" {
  type       = "bool"
  prompt     = "b"
  depends_on = "SMP && !SMP_DISABLE"
  default { value = true }
}
config "C" {
  type       = "bool"
  prompt     = "c"
  depends_on = "SMP && !SMP_DISABLE"
  default { value = true }
}
`)
	res := Resolve(tc, s, nil)

	assert.Equal(t, []string{"SMP", "A", "B", "C"}, names(res.Mapping))
	assert.Equal(t, 2, res.Hits)
}

func TestResolveIsDeterministic(t *testing.T) {
	tc, s := loadSchema(t, `
config "X" {
  type   = "int"
  prompt = "x"
  default { expr = "Y" }
}
config "Y" {
  type   = "int"
  prompt = "y"
  default { value = 2 }
}
`)
	first := Resolve(tc, s, nil)
	second := Resolve(tc, s, nil)
	assert.Equal(t, ir.MustDigest(first.Mapping), ir.MustDigest(second.Mapping))
}
