package schema

import (
	"fmt"

	"github.com/roach88/kgen/internal/expr"
)

// Issue codes reported by Check.
const (
	IssueUndeclared = "W001" // expression references an undeclared symbol
	IssueNoPrompt   = "W002" // symbol has no prompt and is never resolved
	IssueNoValue    = "W003" // visible symbol has no default
)

// Issue is a non-fatal problem found by Check.
type Issue struct {
	Code    string   `json:"code" yaml:"code"`
	Symbol  string   `json:"symbol" yaml:"symbol"`
	Message string   `json:"message" yaml:"message"`
	Pos     Position `json:"-" yaml:"-"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s: %s", i.Pos, i.Code, i.Symbol, i.Message)
}

// Check lints a loaded schema. Issues are reported in declaration order;
// each undeclared reference is reported once per symbol.
func (s *Schema) Check() []Issue {
	var issues []Issue
	for _, sym := range s.Symbols {
		if !sym.HasPrompt() {
			issues = append(issues, Issue{
				Code:    IssueNoPrompt,
				Symbol:  sym.Name,
				Message: "symbol has no prompt and is never resolved",
				Pos:     sym.Pos,
			})
		} else if len(sym.Defaults) == 0 {
			issues = append(issues, Issue{
				Code:    IssueNoValue,
				Symbol:  sym.Name,
				Message: "symbol has no default and resolves only from an override",
				Pos:     sym.Pos,
			})
		}

		seen := make(map[string]bool)
		for _, e := range sym.exprs() {
			for _, ref := range e.Refs() {
				if seen[ref] {
					continue
				}
				seen[ref] = true
				if _, ok := s.Lookup(ref); !ok {
					issues = append(issues, Issue{
						Code:    IssueUndeclared,
						Symbol:  sym.Name,
						Message: fmt.Sprintf("references undeclared symbol %s", ref),
						Pos:     sym.Pos,
					})
				}
			}
		}
	}
	return issues
}

// exprs returns every expression attached to the symbol.
func (s *Symbol) exprs() []*expr.Expr {
	out := []*expr.Expr{s.DependsOn, s.Visible}
	for _, d := range s.Defaults {
		out = append(out, d.Value, d.When)
	}
	return out
}
