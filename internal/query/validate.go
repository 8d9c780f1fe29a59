package query

import (
	"fmt"

	"github.com/roach88/scenesmith/internal/ir"
)

// ValidationError describes one problem in a query.
type ValidationError struct {
	Path    string // e.g. "filter.and[1]"
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks a query before compilation. It returns every problem
// found, or nil for a valid query.
//
// Rules:
//  1. Fields must be one of the Field constants.
//  2. Equals values must have the field's type; nulls never match and are
//     rejected.
//  3. Prefix applies to string fields only.
//  4. Within must have a positive width and height.
//  5. Limit must not be negative.
func Validate(q Select) []ValidationError {
	v := &validator{}
	if q.Limit < 0 {
		v.add("limit", "must be >= 0, got %d", q.Limit)
	}
	if q.Filter != nil {
		v.predicate("filter", q.Filter)
	}
	return v.errs
}

type validator struct {
	errs []ValidationError
}

func (v *validator) add(path, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) predicate(path string, p Predicate) {
	switch pred := p.(type) {
	case Equals:
		v.equals(path, pred)
	case *Equals:
		v.equals(path, *pred)
	case Prefix:
		v.prefix(path, pred)
	case *Prefix:
		v.prefix(path, *pred)
	case Within:
		v.within(path, pred)
	case *Within:
		v.within(path, *pred)
	case And:
		v.and(path, pred)
	case *And:
		v.and(path, *pred)
	case nil:
		v.add(path, "nil predicate")
	default:
		v.add(path, "unknown predicate type %T", p)
	}
}

func (v *validator) equals(path string, eq Equals) {
	kind, ok := fieldKinds[eq.Field]
	if !ok {
		v.add(path, "unknown field %q", eq.Field)
		return
	}
	switch eq.Value.(type) {
	case ir.IRString:
		if kind != "string" {
			v.add(path, "field %q takes an int, got a string", eq.Field)
		}
	case ir.IRInt:
		if kind != "int" {
			v.add(path, "field %q takes a string, got an int", eq.Field)
		}
	case ir.IRNull, nil:
		v.add(path, "field %q compared to null", eq.Field)
	default:
		v.add(path, "field %q compared to unsupported value %T", eq.Field, eq.Value)
	}
}

func (v *validator) prefix(path string, p Prefix) {
	kind, ok := fieldKinds[p.Field]
	if !ok {
		v.add(path, "unknown field %q", p.Field)
		return
	}
	if kind != "string" {
		v.add(path, "prefix match on int field %q", p.Field)
	}
	if p.Prefix == "" {
		v.add(path, "empty prefix")
	}
}

func (v *validator) within(path string, w Within) {
	if w.W <= 0 || w.H <= 0 {
		v.add(path, "region must have positive size, got %dx%d", w.W, w.H)
	}
}

func (v *validator) and(path string, and And) {
	for i, sub := range and.Predicates {
		v.predicate(fmt.Sprintf("%s.and[%d]", path, i), sub)
	}
}
