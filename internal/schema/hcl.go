package schema

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/roach88/kgen/internal/target"
)

// HCL schema layout:
//
//	config "SMP" {
//	  type   = "bool"
//	  prompt = "Symmetric multi-processing"
//	  default { value = false }
//	}
//
//	menu "Kernel" {
//	  depends_on = "SMP"
//	  config "CPUS_NR" {
//	    type   = "int"
//	    prompt = "CPUs"
//	    default {
//	      value = board == "pico2" ? 2 : 4
//	    }
//	  }
//	}
//
// Blocks are processed in source order. Default values are HCL
// expressions; the variables board and build_type are in scope.

type hclSymbol struct {
	Type      string       `hcl:"type"`
	Prompt    string       `hcl:"prompt,optional"`
	Help      string       `hcl:"help,optional"`
	VisibleIf string       `hcl:"visible_if,optional"`
	DependsOn string       `hcl:"depends_on,optional"`
	Defaults  []hclDefault `hcl:"default,block"`
}

type hclDefault struct {
	Value hcl.Expression `hcl:"value,optional"`
	Expr  string         `hcl:"expr,optional"`
	When  string         `hcl:"when,optional"`
}

type hclMenu struct {
	DependsOn string   `hcl:"depends_on,optional"`
	VisibleIf string   `hcl:"visible_if,optional"`
	Remain    hcl.Body `hcl:",remain"`
}

// loadHCL loads every .hcl file of the schema (one file, or all files of a
// directory in name order) into b.
func loadHCL(tc target.Context, isDir bool, b *builder) error {
	files := []string{tc.SchemaPath}
	if isDir {
		var err error
		if files, err = filepath.Glob(filepath.Join(tc.SchemaDir, "*.hcl")); err != nil {
			return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Err: err}
		}
		sort.Strings(files)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"board":      cty.StringVal(tc.Board),
			"build_type": cty.StringVal(tc.BuildType),
		},
	}

	parser := hclparse.NewParser()
	for _, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err), Err: err}
		}
		file, diags := parser.ParseHCL(src, path)
		if diags.HasErrors() {
			return hclLoadError(ErrCodeLoadFailed, diags)
		}
		body, ok := file.Body.(*hclsyntax.Body)
		if !ok {
			return &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: not native HCL syntax", path)}
		}
		if err := walkHCL(body, evalCtx, b); err != nil {
			return err
		}
	}
	return nil
}

func walkHCL(body *hclsyntax.Body, evalCtx *hcl.EvalContext, b *builder) error {
	for _, block := range body.Blocks {
		pos := hclPos(block.DefRange())
		if len(block.Labels) != 1 {
			return &LoadError{
				Code:    ErrCodeField,
				Message: fmt.Sprintf("%s block needs exactly one label", block.Type),
				Pos:     pos,
			}
		}

		switch block.Type {
		case "config":
			d, err := hclDecl(block, evalCtx)
			if err != nil {
				return err
			}
			if err := b.add(d); err != nil {
				return err
			}
		case "menu":
			if err := walkHCLMenu(block, evalCtx, b); err != nil {
				return err
			}
		default:
			return &LoadError{
				Code:    ErrCodeField,
				Message: fmt.Sprintf("unsupported block type %q", block.Type),
				Pos:     pos,
			}
		}
	}
	return nil
}

func walkHCLMenu(block *hclsyntax.Block, evalCtx *hcl.EvalContext, b *builder) error {
	var m hclMenu
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &m); diags.HasErrors() {
		return hclLoadError(ErrCodeField, diags)
	}
	if err := b.pushMenu(block.Labels[0], m.DependsOn, m.VisibleIf, hclPos(block.DefRange())); err != nil {
		return err
	}
	defer b.popMenu()
	return walkHCL(block.Body, evalCtx, b)
}

func hclDecl(block *hclsyntax.Block, evalCtx *hcl.EvalContext) (decl, error) {
	d := decl{Name: block.Labels[0], Pos: hclPos(block.DefRange())}

	var sym hclSymbol
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &sym); diags.HasErrors() {
		return d, hclLoadError(ErrCodeField, diags)
	}
	d.Type = sym.Type
	d.Prompt = sym.Prompt
	d.Help = sym.Help
	d.VisibleIf = sym.VisibleIf
	d.DependsOn = sym.DependsOn

	for _, def := range sym.Defaults {
		dd := declDefault{Expr: def.Expr, When: def.When, Pos: hclPos(def.Value.Range())}
		val, diags := def.Value.Value(evalCtx)
		if diags.HasErrors() {
			return d, hclLoadError(ErrCodeField, diags)
		}
		text, ok, err := ctyText(val)
		if err != nil {
			return d, &LoadError{
				Code:    ErrCodeField,
				Message: fmt.Sprintf("symbol %s: default value: %v", d.Name, err),
				Pos:     dd.Pos,
			}
		}
		if ok {
			dd.Literal = &text
		}
		d.Defaults = append(d.Defaults, dd)
	}
	return d, nil
}

// ctyText spells a cty scalar the way a defconfig would. A null value
// reports ok=false.
func ctyText(v cty.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	if !v.IsKnown() {
		return "", false, fmt.Errorf("value is not known")
	}
	switch v.Type() {
	case cty.Bool:
		if v.True() {
			return "y", true, nil
		}
		return "n", true, nil
	case cty.Number:
		// Fractions and out-of-range numbers are spelled out too; the
		// resolver rejects them for this symbol only.
		f := v.AsBigFloat()
		if n, acc := f.Int64(); acc == big.Exact {
			return strconv.FormatInt(n, 10), true, nil
		}
		return f.Text('f', -1), true, nil
	case cty.String:
		return v.AsString(), true, nil
	default:
		return "", false, fmt.Errorf("must be a bool, number or string, got %s", v.Type().FriendlyName())
	}
}

func hclPos(r hcl.Range) Position {
	if r.Filename == "" {
		return Position{}
	}
	return Position{File: r.Filename, Line: r.Start.Line, Column: r.Start.Column}
}

func hclLoadError(code string, diags hcl.Diagnostics) error {
	le := &LoadError{Code: code, Message: diags.Error(), Err: diags}
	for _, d := range diags {
		if d.Severity == hcl.DiagError && d.Subject != nil {
			le.Pos = hclPos(*d.Subject)
			le.Message = d.Summary
			if d.Detail != "" {
				le.Message += ": " + d.Detail
			}
			break
		}
	}
	return le
}
