package schema

import (
	"fmt"
	"path/filepath"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/kgen/internal/target"
)

// CUE schema layout:
//
//	board:      string // filled from the target
//	build_type: string // filled from the target
//
//	config: {
//		SMP: {
//			type:   "bool"
//			prompt: "Symmetric multi-processing"
//			default: [{value: false}]
//		}
//		kernel: {
//			menu:       "Kernel"
//			depends_on: "SMP"
//			config: CPUS_NR: {type: "int", prompt: "CPUs", default: 2}
//		}
//	}
//
// Entries carrying a menu field are menus; every other entry is a symbol.
// Iteration follows declaration order.

// loadCUE loads a CUE schema for tc into b.
func loadCUE(tc target.Context, isDir bool, b *builder) error {
	args := []string{"."}
	if !isDir {
		args = []string{filepath.Base(tc.SchemaPath)}
	}

	instances := load.Instances(args, &load.Config{Dir: tc.SchemaDir})
	if len(instances) == 0 {
		return &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return cueLoadError(ErrCodeLoadFailed, "loading CUE files", inst.Err)
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return cueLoadError(ErrCodeBuildFailed, "building CUE value", err)
	}

	// The target is passed in as data, so a schema can branch on it.
	value = value.
		FillPath(cue.ParsePath("board"), tc.Board).
		FillPath(cue.ParsePath("build_type"), tc.BuildType)
	if err := value.Err(); err != nil {
		return cueLoadError(ErrCodeBuildFailed, "applying target to schema", err)
	}

	configs := value.LookupPath(cue.ParsePath("config"))
	if !configs.Exists() {
		return &LoadError{Code: ErrCodeGeneric, Message: "schema has no config struct", Pos: cuePos(value.Pos())}
	}
	return walkCUE(configs, b)
}

func walkCUE(v cue.Value, b *builder) error {
	iter, err := v.Fields()
	if err != nil {
		return cueLoadError(ErrCodeField, "iterating config", err)
	}

	for iter.Next() {
		label := iter.Label()
		item := iter.Value()

		if item.LookupPath(cue.ParsePath("menu")).Exists() {
			if err := walkCUEMenu(label, item, b); err != nil {
				return err
			}
			continue
		}

		d, err := cueDecl(label, item)
		if err != nil {
			return err
		}
		if err := b.add(d); err != nil {
			return err
		}
	}
	return nil
}

func walkCUEMenu(label string, v cue.Value, b *builder) error {
	title, _, err := cueString(v, "menu")
	if err != nil {
		return err
	}
	if title == "" {
		title = label
	}
	dep, _, err := cueString(v, "depends_on")
	if err != nil {
		return err
	}
	vis, _, err := cueString(v, "visible_if")
	if err != nil {
		return err
	}

	if err := b.pushMenu(title, dep, vis, cuePos(v.Pos())); err != nil {
		return err
	}
	defer b.popMenu()

	inner := v.LookupPath(cue.ParsePath("config"))
	if !inner.Exists() {
		return nil
	}
	return walkCUE(inner, b)
}

// cueDecl reads one symbol struct.
func cueDecl(name string, v cue.Value) (decl, error) {
	d := decl{Name: name, Pos: cuePos(v.Pos())}

	typ, ok, err := cueString(v, "type")
	if err != nil {
		return d, err
	}
	if !ok {
		return d, &LoadError{Code: ErrCodeField, Message: fmt.Sprintf("symbol %s: type is required", name), Pos: d.Pos}
	}
	d.Type = typ

	optional := []struct {
		field string
		dst   *string
	}{
		{"prompt", &d.Prompt},
		{"help", &d.Help},
		{"visible_if", &d.VisibleIf},
		{"depends_on", &d.DependsOn},
	}
	for _, o := range optional {
		if *o.dst, _, err = cueString(v, o.field); err != nil {
			return d, err
		}
	}

	defaults := v.LookupPath(cue.ParsePath("default"))
	if !defaults.Exists() {
		return d, nil
	}

	// A bare scalar is shorthand for one unconditional default.
	if defaults.Kind() != cue.ListKind {
		text, err := cueScalarText(defaults)
		if err != nil {
			return d, err
		}
		d.Defaults = append(d.Defaults, declDefault{Literal: &text, Pos: cuePos(defaults.Pos())})
		return d, nil
	}

	list, err := defaults.List()
	if err != nil {
		return d, cueLoadError(ErrCodeField, "reading defaults", err)
	}
	for list.Next() {
		dd, err := cueDefault(list.Value())
		if err != nil {
			return d, err
		}
		d.Defaults = append(d.Defaults, dd)
	}
	return d, nil
}

func cueDefault(v cue.Value) (declDefault, error) {
	dd := declDefault{Pos: cuePos(v.Pos())}

	if val := v.LookupPath(cue.ParsePath("value")); val.Exists() {
		text, err := cueScalarText(val)
		if err != nil {
			return dd, err
		}
		dd.Literal = &text
	}

	var err error
	if dd.Expr, _, err = cueString(v, "expr"); err != nil {
		return dd, err
	}
	if dd.When, _, err = cueString(v, "when"); err != nil {
		return dd, err
	}
	return dd, nil
}

// cueString reads an optional string field.
func cueString(v cue.Value, field string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", false, cueLoadError(ErrCodeField, field+" must be a string", err)
	}
	return s, true, nil
}

// cueScalarText spells a concrete CUE scalar the way a defconfig would.
func cueScalarText(v cue.Value) (string, error) {
	switch v.Kind() {
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return "", cueLoadError(ErrCodeField, "default value", err)
		}
		if b {
			return "y", nil
		}
		return "n", nil
	case cue.IntKind:
		n, err := v.Int(nil)
		if err != nil {
			return "", cueLoadError(ErrCodeField, "default value", err)
		}
		return n.String(), nil
	case cue.FloatKind, cue.NumberKind:
		// Spelled out so the resolver rejects it for this symbol only.
		f, err := v.Float64()
		if err != nil {
			return "", cueLoadError(ErrCodeField, "default value", err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return "", cueLoadError(ErrCodeField, "default value", err)
		}
		return s, nil
	default:
		return "", &LoadError{
			Code:    ErrCodeField,
			Message: fmt.Sprintf("default value must be a concrete bool, int or string, got %v", v.IncompleteKind()),
			Pos:     cuePos(v.Pos()),
		}
	}
}

func cuePos(p token.Pos) Position {
	if !p.IsValid() {
		return Position{}
	}
	return Position{File: p.Filename(), Line: p.Line(), Column: p.Column()}
}

// cueLoadError converts a CUE error into a LoadError, keeping the first
// error's position when CUE reports one.
func cueLoadError(code, context string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", context, err), Err: err}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: fmt.Sprintf("%s: %v", context, first), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = cuePos(positions[0])
	}
	return le
}
