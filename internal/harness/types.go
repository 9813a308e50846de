package harness

import (
	"github.com/roach88/kgen/internal/emit"
	"github.com/roach88/kgen/internal/ir"
)

// Result is the outcome of one scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	Mapping   *ir.Mapping     `json:"mapping"`
	Flags     []string        `json:"flags"`
	Constants []emit.Constant `json:"constants"`
	Warnings  []string        `json:"warnings,omitempty"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result around a resolved mapping.
func NewResult(m *ir.Mapping) *Result {
	return &Result{
		Pass:      true,
		Mapping:   m,
		Flags:     emit.Flags(m),
		Constants: emit.Constants(m),
		Errors:    []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
