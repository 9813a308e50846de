package schema

import (
	"fmt"
	"log/slog"

	"github.com/roach88/kgen/internal/expr"
	"github.com/roach88/kgen/internal/ir"
)

// decl is a symbol declaration as a front-end reads it, before any
// expression is parsed.
type decl struct {
	Name      string
	Type      string
	Prompt    string
	Help      string
	VisibleIf string
	DependsOn string
	Defaults  []declDefault
	Pos       Position
}

// declDefault holds exactly one of Literal (a scalar from the front-end
// language, already spelled as defconfig text) or Expr (an expression
// string).
type declDefault struct {
	Literal *string
	Expr    string
	When    string
	Pos     Position
}

type menuScope struct {
	title     string
	dependsOn *expr.Expr
	visibleIf *expr.Expr
}

// builder turns front-end declarations into a Schema. Menus nest: their
// conditions are ANDed into every symbol declared while they are open.
type builder struct {
	schema *Schema
	menus  []menuScope
	logger *slog.Logger
}

func newBuilder(logger *slog.Logger) *builder {
	return &builder{
		schema: &Schema{
			Pool:  expr.NewPool(),
			index: make(map[string]*Symbol),
		},
		logger: logger,
	}
}

func (b *builder) parse(field, src string, pos Position) (*expr.Expr, error) {
	e, err := b.schema.Pool.Parse(src)
	if err != nil {
		return nil, &LoadError{
			Code:    ErrCodeExpression,
			Message: fmt.Sprintf("%s: %v", field, err),
			Pos:     pos,
			Err:     err,
		}
	}
	return e, nil
}

func (b *builder) pushMenu(title, dependsOn, visibleIf string, pos Position) error {
	dep, err := b.parse("depends_on", dependsOn, pos)
	if err != nil {
		return err
	}
	vis, err := b.parse("visible_if", visibleIf, pos)
	if err != nil {
		return err
	}

	outer := menuScope{}
	if n := len(b.menus); n > 0 {
		outer = b.menus[n-1]
	}
	b.menus = append(b.menus, menuScope{
		title:     title,
		dependsOn: b.schema.Pool.And(outer.dependsOn, dep),
		visibleIf: b.schema.Pool.And(outer.visibleIf, vis),
	})
	return nil
}

func (b *builder) popMenu() {
	b.menus = b.menus[:len(b.menus)-1]
}

func (b *builder) add(d decl) error {
	typ, err := ir.ParseType(d.Type)
	if err != nil {
		return &LoadError{
			Code:    ErrCodeInvalidType,
			Message: fmt.Sprintf("symbol %s: %v", d.Name, err),
			Pos:     d.Pos,
			Err:     err,
		}
	}

	dep, err := b.parse("depends_on", d.DependsOn, d.Pos)
	if err != nil {
		return err
	}
	vis, err := b.parse("visible_if", d.VisibleIf, d.Pos)
	if err != nil {
		return err
	}

	sym := &Symbol{
		Name:   d.Name,
		Type:   typ,
		Hex:    ir.IsHexType(d.Type),
		Prompt: d.Prompt,
		Help:   d.Help,
		Pos:    d.Pos,
	}
	if n := len(b.menus); n > 0 {
		dep = b.schema.Pool.And(b.menus[n-1].dependsOn, dep)
		vis = b.schema.Pool.And(b.menus[n-1].visibleIf, vis)
	}
	sym.DependsOn = dep
	sym.Visible = vis

	for i, dd := range d.Defaults {
		def, err := b.buildDefault(d.Name, i, dd)
		if err != nil {
			return err
		}
		sym.Defaults = append(sym.Defaults, def)
	}

	if prev, ok := b.schema.index[sym.Name]; ok {
		b.logger.Warn("duplicate symbol declaration ignored",
			"symbol", sym.Name,
			"first", prev.Pos.String(),
			"duplicate", sym.Pos.String(),
		)
		return nil
	}
	b.schema.index[sym.Name] = sym
	b.schema.Symbols = append(b.schema.Symbols, sym)
	return nil
}

func (b *builder) buildDefault(name string, i int, dd declDefault) (Default, error) {
	pos := dd.Pos
	field := fmt.Sprintf("symbol %s default[%d]", name, i)

	var val *expr.Expr
	switch {
	case dd.Literal != nil && dd.Expr != "":
		return Default{}, &LoadError{Code: ErrCodeDefault, Message: field + ": set value or expr, not both", Pos: pos}
	case dd.Literal != nil:
		val = b.schema.Pool.Const(*dd.Literal)
	case dd.Expr != "":
		e, err := b.parse(field+" expr", dd.Expr, pos)
		if err != nil {
			return Default{}, err
		}
		val = e
	default:
		return Default{}, &LoadError{Code: ErrCodeDefault, Message: field + ": value or expr is required", Pos: pos}
	}

	when, err := b.parse(field+" when", dd.When, pos)
	if err != nil {
		return Default{}, err
	}
	return Default{Value: val, When: when}, nil
}

func (b *builder) finish() *Schema {
	return b.schema
}
