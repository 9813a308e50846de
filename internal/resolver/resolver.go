package resolver

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/kgen/internal/expr"
	"github.com/roach88/kgen/internal/ir"
	"github.com/roach88/kgen/internal/schema"
	"github.com/roach88/kgen/internal/target"
)

// Overrides supplies per-target user values in defconfig text form.
// defconfig.Overrides satisfies it.
type Overrides interface {
	// Lookup returns the override text for a symbol declared with type t.
	Lookup(name string, t ir.Type) (string, bool)
}

// Result is the outcome of one resolution pass.
type Result struct {
	// Mapping holds every resolved symbol in schema declaration order.
	Mapping *ir.Mapping

	// Warnings collects the non-fatal problems of the pass: a *ValueError
	// per failed coercion and a *CycleError per dependency cycle.
	Warnings []error

	// Hits and Misses report the condition memo's effectiveness.
	Hits, Misses int
}

type options struct {
	logger *slog.Logger
}

// Option configures Resolve.
type Option func(*options)

// WithLogger routes warnings and debug output to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Resolve computes the effective value of every symbol of s for the target
// tc. It never fails: problems with individual symbols are logged, recorded
// in Result.Warnings, and the symbol is left out of the mapping.
func Resolve(tc target.Context, s *schema.Schema, overrides Overrides, opts ...Option) *Result {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	if overrides == nil {
		overrides = noOverrides{}
	}

	p := &pass{
		schema:    s,
		overrides: overrides,
		logger:    o.logger.With("target", tc),
		state:     make(map[string]state, s.Len()),
		values:    make(map[string]ir.Value, s.Len()),
		cycles:    make(map[string]bool),
	}
	p.ev = expr.NewEvaluator(p)

	for _, sym := range s.Symbols {
		if p.state[sym.Name] == pending {
			p.resolve(sym)
		}
	}

	m := ir.NewMapping()
	for _, sym := range s.Symbols {
		if v, ok := p.values[sym.Name]; ok {
			m.Set(sym.Name, v)
		}
	}

	p.logger.Debug("resolution finished",
		"symbols", s.Len(),
		"resolved", m.Len(),
		"warnings", len(p.warnings),
		"memo_hits", p.ev.Hits,
		"memo_misses", p.ev.Misses,
	)
	return &Result{Mapping: m, Warnings: p.warnings, Hits: p.ev.Hits, Misses: p.ev.Misses}
}

type noOverrides struct{}

func (noOverrides) Lookup(string, ir.Type) (string, bool) { return "", false }

type state uint8

const (
	pending state = iota
	resolving
	done
)

// pass is the mutable state of one Resolve call. It is the expression
// environment: a reference to a pending symbol resolves that symbol first.
type pass struct {
	schema    *schema.Schema
	overrides Overrides
	logger    *slog.Logger
	ev        *expr.Evaluator

	state    map[string]state
	values   map[string]ir.Value
	cycles   map[string]bool
	warnings []error
}

// Value implements expr.Env.
func (p *pass) Value(name string) (ir.Value, bool) {
	sym, ok := p.schema.Lookup(name)
	if !ok {
		return nil, false
	}
	switch p.state[name] {
	case resolving:
		p.cycle(name)
		return nil, false
	case pending:
		p.resolve(sym)
	}
	v, ok := p.values[name]
	return v, ok
}

// Type implements expr.Env.
func (p *pass) Type(name string) (ir.Type, bool) {
	sym, ok := p.schema.Lookup(name)
	if !ok {
		return ir.TypeUnknown, false
	}
	return sym.Type, true
}

func (p *pass) cycle(name string) {
	p.ev.Unstable()
	if p.cycles[name] {
		return
	}
	p.cycles[name] = true
	err := &CycleError{Symbol: name}
	p.warnings = append(p.warnings, err)
	p.logger.Warn("dependency cycle, reference reads as unset", "symbol", name)
}

func (p *pass) resolve(sym *schema.Symbol) {
	p.state[sym.Name] = resolving
	defer func() { p.state[sym.Name] = done }()

	if !sym.HasPrompt() || !p.ev.Truth(sym.Visible) {
		p.logger.Debug("symbol not visible", "symbol", sym.Name)
		return
	}
	if !p.ev.Truth(sym.DependsOn) {
		p.logger.Debug("symbol dependencies unmet", "symbol", sym.Name)
		return
	}

	if text, ok := p.overrides.Lookup(sym.Name, sym.Type); ok {
		p.assign(sym, SourceOverride, text)
		return
	}

	for _, def := range sym.Defaults {
		if !p.ev.Truth(def.When) {
			continue
		}
		p.assign(sym, SourceDefault, p.ev.Text(def.Value))
		return
	}
}

func (p *pass) assign(sym *schema.Symbol, src Source, text string) {
	v, err := sym.Coerce(text)
	if err != nil {
		verr := &ValueError{Symbol: sym.Name, Source: src, Text: text, Err: err}
		p.warnings = append(p.warnings, verr)
		p.logger.Warn("value conversion failed, symbol omitted",
			"symbol", sym.Name,
			"source", src.String(),
			"value", text,
			"type", sym.Type.String(),
		)
		return
	}
	p.values[sym.Name] = v
	p.logger.Debug("symbol resolved", "symbol", sym.Name, "source", src.String(), "value", v.Text())
}

// Source tells where a symbol's candidate value came from.
type Source int

const (
	SourceOverride Source = iota
	SourceDefault
)

func (s Source) String() string {
	if s == SourceOverride {
		return "override"
	}
	return "default"
}

// ValueError reports a value that could not be coerced to its symbol's
// declared type.
type ValueError struct {
	Symbol string
	Source Source
	Text   string
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("symbol %s: %s value %q: %v", e.Symbol, e.Source, e.Text, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// CycleError reports a symbol whose resolution depends on itself.
type CycleError struct {
	Symbol string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("symbol %s: dependency cycle", e.Symbol)
}
