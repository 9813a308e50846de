package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/kgen/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the resolved mapping to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Mapping  *ir.Mapping // Full mapping for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Mapping != nil {
		fmt.Fprintf(&buf, "\nResolved mapping:\n")
		for _, entry := range e.Mapping.Entries() {
			fmt.Fprintf(&buf, "  %s=%s\n", entry.Name, entry.Value.Text())
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertValue:
		return assertValue(result.Mapping, a)
	case AssertAbsent:
		return assertAbsent(result.Mapping, a)
	case AssertOrder:
		return assertOrder(result.Mapping, a)
	case AssertFlags:
		return assertFlags(result, a)
	case AssertConstants:
		return assertConstants(result, a)
	case AssertWarnings:
		return assertWarnings(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertValue checks that the symbol resolved to the expected value.
func assertValue(m *ir.Mapping, a Assertion) error {
	got, ok := m.Get(a.Symbol)
	if !ok {
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("%s=%v", a.Symbol, a.Value),
			Actual:   "symbol not resolved",
			Mapping:  m,
		}
	}
	if !matchValue(got, a.Value) {
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("%s=%v", a.Symbol, a.Value),
			Actual:   fmt.Sprintf("%s=%s (%s)", a.Symbol, got.Text(), got.Type()),
			Mapping:  m,
		}
	}
	return nil
}

// matchValue compares a resolved value with a YAML-decoded expectation.
// Bool symbols also accept "y" and "n".
func matchValue(got ir.Value, want any) bool {
	switch w := want.(type) {
	case bool:
		return got == ir.Bool(w)
	case int:
		return got == ir.Int(int64(w))
	case int64:
		return got == ir.Int(w)
	case string:
		if got.Type() == ir.TypeBool {
			return got.Text() == w
		}
		return got == ir.String(w)
	default:
		return false
	}
}

func assertAbsent(m *ir.Mapping, a Assertion) error {
	if got, ok := m.Get(a.Symbol); ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("%s not resolved", a.Symbol),
			Actual:   fmt.Sprintf("%s=%s", a.Symbol, got.Text()),
			Mapping:  m,
		}
	}
	return nil
}

// assertOrder checks that the symbols appear in the mapping in the given
// order. Other symbols may appear in between.
func assertOrder(m *ir.Mapping, a Assertion) error {
	positions := make(map[string]int)
	for i, e := range m.Entries() {
		positions[e.Name] = i + 1 // 1-indexed for readability
	}

	for _, name := range a.Symbols {
		if positions[name] == 0 {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("all symbols present: %v", a.Symbols),
				Actual:   fmt.Sprintf("missing symbol: %s", name),
				Mapping:  m,
			}
		}
	}
	for i := 1; i < len(a.Symbols); i++ {
		prev, curr := a.Symbols[i-1], a.Symbols[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("symbols in order: %v", a.Symbols),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Mapping: m,
			}
		}
	}
	return nil
}

func assertFlags(result *Result, a Assertion) error {
	want := a.Values
	if want == nil {
		want = []string{}
	}
	got := result.Flags
	if got == nil {
		got = []string{}
	}
	if !slices.Equal(want, got) {
		return &AssertionError{
			Type:     AssertFlags,
			Expected: fmt.Sprintf("%q", want),
			Actual:   fmt.Sprintf("%q", got),
		}
	}
	return nil
}

func assertConstants(result *Result, a Assertion) error {
	got := make(map[string]int64, len(result.Constants))
	for _, c := range result.Constants {
		got[c.Name] = c.Value
	}

	names := make([]string, 0, len(a.Constants))
	for name := range a.Constants {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		want := a.Constants[name]
		v, ok := got[name]
		switch {
		case !ok:
			return &AssertionError{
				Type:     AssertConstants,
				Expected: fmt.Sprintf("%s = %d", name, want),
				Actual:   "constant not emitted",
			}
		case v != want:
			return &AssertionError{
				Type:     AssertConstants,
				Expected: fmt.Sprintf("%s = %d", name, want),
				Actual:   fmt.Sprintf("%s = %d", name, v),
			}
		}
	}
	return nil
}

func assertWarnings(result *Result, a Assertion) error {
	if len(result.Warnings) != a.Count {
		return &AssertionError{
			Type:     AssertWarnings,
			Expected: fmt.Sprintf("%d warning(s)", a.Count),
			Actual:   fmt.Sprintf("%d warning(s): %v", len(result.Warnings), result.Warnings),
		}
	}
	return nil
}
