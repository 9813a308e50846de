package expr

import (
	"strings"

	"github.com/roach88/kgen/internal/ir"
)

// Env supplies symbol values to an Evaluator.
type Env interface {
	// Value returns the resolved value of a symbol, or false when the
	// symbol is undeclared, omitted, or not resolvable.
	Value(name string) (ir.Value, bool)

	// Type returns the declared type of a symbol.
	Type(name string) (ir.Type, bool)
}

// Evaluator evaluates expressions top-down against an Env, memoizing the
// truth value of every node for the lifetime of one resolution pass.
//
// Memoized results assume Env answers are stable for the pass. The one
// exception, a dependency cycle, is reported with Unstable; any node whose
// evaluation spanned such a report is not memoized.
type Evaluator struct {
	env      Env
	memo     map[*Expr]bool
	unstable int

	// Hits and Misses count memo lookups, for diagnostics and tests.
	Hits, Misses int
}

// NewEvaluator returns an Evaluator bound to env.
func NewEvaluator(env Env) *Evaluator {
	return &Evaluator{env: env, memo: make(map[*Expr]bool)}
}

// Unstable records that the Env just answered a lookup with a value that
// may differ later in the pass.
func (ev *Evaluator) Unstable() {
	ev.unstable++
}

// Truth evaluates e as a condition. nil is unconditionally true.
func (ev *Evaluator) Truth(e *Expr) bool {
	if e == nil {
		return true
	}
	if v, ok := ev.memo[e]; ok {
		ev.Hits++
		return v
	}
	ev.Misses++

	mark := ev.unstable
	v := ev.truth(e)
	if ev.unstable == mark {
		ev.memo[e] = v
	}
	return v
}

func (ev *Evaluator) truth(e *Expr) bool {
	switch e.Op {
	case OpConst:
		return e.Text == "y"
	case OpRef:
		v, ok := ev.env.Value(e.Text)
		return ok && v == ir.Bool(true)
	case OpNot:
		return !ev.Truth(e.X)
	case OpAnd:
		return ev.Truth(e.X) && ev.Truth(e.Y)
	case OpOr:
		return ev.Truth(e.X) || ev.Truth(e.Y)
	default:
		return compare(e.Op, ev.Text(e.X), ev.Text(e.Y))
	}
}

// Text evaluates e as a value expression and returns its defconfig
// spelling. Literals yield their text, symbol references the referenced
// value (n for an unset bool, empty otherwise), and boolean operators y or n.
func (ev *Evaluator) Text(e *Expr) string {
	if e == nil {
		return "y"
	}
	switch e.Op {
	case OpConst:
		return e.Text
	case OpRef:
		if v, ok := ev.env.Value(e.Text); ok {
			return v.Text()
		}
		if t, ok := ev.env.Type(e.Text); ok && t == ir.TypeBool {
			return "n"
		}
		return ""
	default:
		if ev.Truth(e) {
			return "y"
		}
		return "n"
	}
}

// compare compares numerically when both sides are integers and
// lexicographically otherwise.
func compare(op Op, a, b string) bool {
	var c int
	x, okA := ir.ParseNumber(a)
	y, okB := ir.ParseNumber(b)
	if okA && okB {
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	} else {
		c = strings.Compare(a, b)
	}

	switch op {
	case OpEq:
		return c == 0
	case OpNeq:
		return c != 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	}
	return false
}
