package query

import (
	"github.com/roach88/scenesmith/internal/ir"
)

// Queryable instance fields.
const (
	FieldRun      = "run_id"
	FieldTemplate = "template_key"
	FieldEventID  = "event_id"
	FieldX        = "x"
	FieldY        = "y"
)

// fieldKinds maps each queryable field to the IR type its values must have.
var fieldKinds = map[string]string{
	FieldRun:      "string",
	FieldTemplate: "string",
	FieldEventID:  "int",
	FieldX:        "int",
	FieldY:        "int",
}

// Predicate is a filter condition. It is sealed: only the types in this
// package implement it.
type Predicate interface {
	predicateNode()
}

// Select picks stored instances matching Filter.
type Select struct {
	Filter Predicate // nil matches every instance
	Limit  int       // 0 means no limit
}

// Equals matches instances whose field equals Value.
type Equals struct {
	Field string
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// Prefix matches instances whose string field starts with Prefix. With
// FieldTemplate and a "category:" prefix it selects a whole category.
type Prefix struct {
	Field  string
	Prefix string
}

func (Prefix) predicateNode() {}

// Within matches instances placed inside the rectangle with top-left corner
// (X, Y), width W and height H.
type Within struct {
	X, Y, W, H int
}

func (Within) predicateNode() {}

// And matches when every predicate matches. An empty And matches everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// ByTemplate matches one template by its "category:id" key.
func ByTemplate(key string) Predicate {
	return Equals{Field: FieldTemplate, Value: ir.IRString(key)}
}

// ByCategory matches every template of a category.
func ByCategory(category string) Predicate {
	return Prefix{Field: FieldTemplate, Prefix: category + ":"}
}

// ByRun matches the instances of one run.
func ByRun(id string) Predicate {
	return Equals{Field: FieldRun, Value: ir.IRString(id)}
}

// All combines predicates with And, dropping nils. It returns nil when no
// predicate is left.
func All(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
