package expr

import (
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/kgen/internal/ir"
)

// Op identifies the kind of an expression node.
type Op int

const (
	OpConst Op = iota // literal: y, n, number or quoted string
	OpRef             // symbol reference
	OpNot
	OpAnd
	OpOr
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
)

var cmpTokens = map[Op]string{
	OpEq:  "=",
	OpNeq: "!=",
	OpLt:  "<",
	OpLe:  "<=",
	OpGt:  ">",
	OpGe:  ">=",
}

// IsCompare reports whether op is one of the comparison operators.
func (op Op) IsCompare() bool {
	_, ok := cmpTokens[op]
	return ok
}

// Expr is a node in a condition or default expression.
//
// Nodes are created by a Pool and interned: two structurally identical
// sub-expressions anywhere in a schema are the same *Expr. A nil *Expr
// means "no condition" and evaluates true.
type Expr struct {
	Op   Op
	Text string // literal text for OpConst, symbol name for OpRef
	X, Y *Expr

	key string
}

// Key returns the structural identity used for interning.
func (e *Expr) Key() string {
	if e == nil {
		return ""
	}
	return e.key
}

// String renders the expression in Kconfig syntax.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	e.write(&b, 0)
	return b.String()
}

// Refs returns the names of the symbols e references, sorted and without
// duplicates.
func (e *Expr) Refs() []string {
	seen := make(map[string]bool)
	var walk func(*Expr)
	walk = func(n *Expr) {
		if n == nil {
			return
		}
		if n.Op == OpRef {
			seen[n.Text] = true
			return
		}
		walk(n.X)
		walk(n.Y)
	}
	walk(e)

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// precedence levels used for parenthesization when printing.
const (
	precOr = iota + 1
	precAnd
	precNot
	precCmp
)

func (e *Expr) prec() int {
	switch e.Op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpNot:
		return precNot
	default:
		if e.Op.IsCompare() {
			return precCmp
		}
		return precCmp + 1
	}
}

func (e *Expr) write(b *strings.Builder, parent int) {
	p := e.prec()
	if p < parent {
		b.WriteByte('(')
		defer b.WriteByte(')')
	}
	switch e.Op {
	case OpConst:
		b.WriteString(constLiteral(e.Text))
	case OpRef:
		b.WriteString(e.Text)
	case OpNot:
		b.WriteByte('!')
		e.X.write(b, precNot)
	case OpAnd:
		e.X.write(b, precAnd)
		b.WriteString(" && ")
		e.Y.write(b, precAnd+1)
	case OpOr:
		e.X.write(b, precOr)
		b.WriteString(" || ")
		e.Y.write(b, precOr+1)
	default:
		e.X.write(b, precCmp+1)
		b.WriteString(" " + cmpTokens[e.Op] + " ")
		e.Y.write(b, precCmp+1)
	}
}

// constLiteral prints bare tokens (y, n, numbers) unquoted and quotes
// everything else.
func constLiteral(text string) string {
	if text == "y" || text == "n" || isNumber(text) {
		return text
	}
	return strconv.Quote(text)
}

func isNumber(s string) bool {
	_, ok := ir.ParseNumber(s)
	return ok
}
