package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
)

// CompileTemplate parses a CUE value into a Template.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the template struct itself; its label is the id:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`template: chest: { category: "chest", ... }`)
//	tpl, err := CompileTemplate(v.LookupPath(cue.ParsePath("template.chest")))
//
// Declared values follow one convention everywhere: a string containing
// {{name}} markers is a placeholder, {choice: [...]} picks one element,
// {expr: "..."} is an expr-lang computation, anything else is a literal.
func CompileTemplate(v cue.Value) (*template.Template, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &template.Template{Placement: template.DefaultPlacementRules()}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		t.ID = labels[len(labels)-1].Unquoted()
	}
	if id, ok, err := optionalString(v, "id"); err != nil {
		return nil, err
	} else if ok {
		t.ID = id
	}

	category, ok, err := optionalString(v, "category")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &CompileError{Field: "category", Message: "category is required", Pos: v.Pos()}
	}
	t.Category = category

	if t.Name, _, err = optionalString(v, "name"); err != nil {
		return nil, err
	}
	if t.Name == "" {
		t.Name = t.ID
	}
	if t.Description, _, err = optionalString(v, "description"); err != nil {
		return nil, err
	}

	if t.Parameters, err = parseDecls(v, "parameters"); err != nil {
		return nil, err
	}
	if t.Appearance, err = parseDecls(v, "appearance"); err != nil {
		return nil, err
	}
	if t.Placement, err = parsePlacement(v); err != nil {
		return nil, err
	}

	pagesVal := v.LookupPath(cue.ParsePath("pages"))
	if !pagesVal.Exists() {
		return nil, &CompileError{Field: "pages", Message: "at least one page is required", Pos: v.Pos()}
	}
	iter, err := pagesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		page, err := parsePage(iter.Value())
		if err != nil {
			return nil, err
		}
		t.Pages = append(t.Pages, page)
	}
	if len(t.Pages) == 0 {
		return nil, &CompileError{Field: "pages", Message: "at least one page is required", Pos: pagesVal.Pos()}
	}

	return t, nil
}

func parsePage(v cue.Value) (template.PageSpec, error) {
	var page template.PageSpec
	var err error

	if page.Conditions, err = parseDecls(v, "conditions"); err != nil {
		return page, err
	}
	if page.Image, err = parseDecls(v, "image"); err != nil {
		return page, err
	}
	if page.Attributes, err = parseDecls(v, "attributes"); err != nil {
		return page, err
	}

	cmdsVal := v.LookupPath(cue.ParsePath("commands"))
	if cmdsVal.Exists() {
		if page.Commands, err = parseCommands(cmdsVal); err != nil {
			return page, err
		}
	}
	return page, nil
}

func parsePlacement(v cue.Value) (template.PlacementRules, error) {
	rules := template.DefaultPlacementRules()
	pv := v.LookupPath(cue.ParsePath("placement"))
	if !pv.Exists() {
		return rules, nil
	}

	if walk := pv.LookupPath(cue.ParsePath("requireWalkable")); walk.Exists() {
		b, err := walk.Bool()
		if err != nil {
			return rules, formatCUEError(err)
		}
		rules.RequireWalkable = b
	}
	var err error
	if rules.AllowedTiles, err = optionalIntList(pv, "allowedTiles"); err != nil {
		return rules, err
	}
	if rules.DisallowedTiles, err = optionalIntList(pv, "disallowedTiles"); err != nil {
		return rules, err
	}
	return rules, nil
}

// parseDecls reads a struct of declared values, keeping field order.
func parseDecls(v cue.Value, field string) (params.Decls, error) {
	dv := v.LookupPath(cue.ParsePath(field))
	if !dv.Exists() {
		return nil, nil
	}
	iter, err := dv.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls params.Decls
	for iter.Next() {
		val, err := parseValue(iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, params.Decl{Name: iter.Selector().Unquoted(), Value: val})
	}
	return decls, nil
}

// parseValue converts a CUE value into a declared value.
func parseValue(v cue.Value) (params.Value, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return params.Text(s), nil

	case cue.StructKind:
		if choice := v.LookupPath(cue.ParsePath("choice")); choice.Exists() {
			iter, err := choice.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			var options []params.Value
			for iter.Next() {
				opt, err := parseValue(iter.Value())
				if err != nil {
					return nil, err
				}
				options = append(options, opt)
			}
			if len(options) == 0 {
				return nil, &CompileError{Field: "choice", Message: "choice needs at least one option", Pos: v.Pos()}
			}
			return params.OneOf(options...), nil
		}
		if source := v.LookupPath(cue.ParsePath("expr")); source.Exists() {
			s, err := source.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			computed, err := params.Expr(s)
			if err != nil {
				return nil, &CompileError{Field: "expr", Message: err.Error(), Pos: source.Pos()}
			}
			return computed, nil
		}
	}

	lit, err := literal(v)
	if err != nil {
		return nil, err
	}
	return params.Literal{Value: lit}, nil
}

// literal converts a concrete CUE value to an IR value. Floats are
// forbidden: RMMZ data is integral.
func literal(v cue.Value) (ir.IRValue, error) {
	switch v.IncompleteKind() {
	case cue.NullKind:
		return ir.IRNull{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := ir.IRArray{}
		for iter.Next() {
			elem, err := literal(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.IRObject{}
		for iter.Next() {
			elem, err := literal(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Selector().Unquoted()] = elem
		}
		return obj, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Field:   "type",
			Message: "float values are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func optionalString(v cue.Value, field string) (string, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", false, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

func optionalInt(v cue.Value, field string, def int) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func optionalIntList(v cue.Value, field string) ([]int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := []int{}
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, int(n))
	}
	return out, nil
}

func optionalValue(v cue.Value, field string) (params.Value, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	return parseValue(fv)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
