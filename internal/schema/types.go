package schema

import (
	"fmt"

	"github.com/roach88/kgen/internal/expr"
	"github.com/roach88/kgen/internal/ir"
)

// Position locates a declaration in a schema source file.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a file name.
func (p Position) IsValid() bool {
	return p.File != ""
}

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	if p.Line == 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Default is one entry of a symbol's ordered default list.
type Default struct {
	Value *expr.Expr // evaluated as text, then coerced to the symbol type
	When  *expr.Expr // nil means unconditional
}

// Symbol is one declared configuration item. Symbols are immutable after
// the schema is built.
type Symbol struct {
	Name   string
	Type   ir.Type
	Hex    bool // declared as hex; values may be written 0x...
	Prompt string
	Help   string

	// Visible is the prompt condition: the symbol's own visible_if ANDed
	// with every enclosing menu's visible_if. A symbol without a prompt is
	// never visible regardless of this condition.
	Visible *expr.Expr

	// DependsOn is the symbol's own depends_on ANDed with every enclosing
	// menu's depends_on.
	DependsOn *expr.Expr

	Defaults []Default
	Pos      Position
}

// HasPrompt reports whether the symbol can be visible at all.
func (s *Symbol) HasPrompt() bool {
	return s.Prompt != ""
}

// Coerce converts override or default text to the symbol's type.
func (s *Symbol) Coerce(text string) (ir.Value, error) {
	if s.Hex {
		return ir.CoerceHex(text)
	}
	return ir.Coerce(s.Type, text)
}

// Schema is the ordered symbol table of one schema load.
type Schema struct {
	Symbols []*Symbol // declaration order
	Pool    *expr.Pool

	index map[string]*Symbol
}

// Lookup returns the symbol declared under name.
func (s *Schema) Lookup(name string) (*Symbol, bool) {
	sym, ok := s.index[name]
	return sym, ok
}

// Len returns the number of declared symbols.
func (s *Schema) Len() int {
	return len(s.Symbols)
}
