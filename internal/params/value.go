package params

import (
	"github.com/roach88/scenesmith/internal/ir"
)

// Value is a declared template value. It is a sealed tagged variant:
// Literal, Placeholder, Computed or Choice.
type Value interface {
	declared() // Sealed - only the variants below implement it
}

// Literal is returned unchanged by Resolve.
type Literal struct {
	Value ir.IRValue
}

// Placeholder is text containing {{name}} markers.
type Placeholder struct {
	Text string
}

// ComputeFunc derives a value from the parameter context and the random
// source. It must not capture external mutable state.
type ComputeFunc func(ctx Context, rng RNG) ir.IRValue

// Computed is invoked once per resolution. Its result is final: it is not
// resolved again.
type Computed struct {
	// Name identifies the function in listings and validation output.
	Name string
	Fn   ComputeFunc
}

// Choice resolves one of its options, picked uniformly at random, and then
// resolves that option recursively.
type Choice struct {
	Options []Value
}

func (Literal) declared()     {}
func (Placeholder) declared() {}
func (Computed) declared()    {}
func (Choice) declared()      {}

// Lit wraps a Go or IR value as a Literal. It panics on values FromAny
// rejects (floats), so use it with constants only.
func Lit(v any) Literal {
	return Literal{Value: ir.MustFromAny(v)}
}

// Text returns a Placeholder when s contains markers and a string Literal
// otherwise.
func Text(s string) Value {
	if HasMarkers(s) {
		return Placeholder{Text: s}
	}
	return Literal{Value: ir.IRString(s)}
}

// Compute wraps fn as a named Computed value.
func Compute(name string, fn ComputeFunc) Computed {
	return Computed{Name: name, Fn: fn}
}

// OneOf builds a Choice over the given options.
func OneOf(options ...Value) Choice {
	return Choice{Options: options}
}

// OneOfLit builds a Choice over literal values.
func OneOfLit(options ...any) Choice {
	vals := make([]Value, len(options))
	for i, o := range options {
		vals[i] = Lit(o)
	}
	return Choice{Options: vals}
}

// Decl is a named declared value.
type Decl struct {
	Name  string
	Value Value
}

// Decls is an ordered list of declarations. Order matters: resolution draws
// from the random source in declaration order.
type Decls []Decl

// Get returns the declaration with the given name.
func (d Decls) Get(name string) (Value, bool) {
	for _, decl := range d {
		if decl.Name == name {
			return decl.Value, true
		}
	}
	return nil, false
}

// With returns a copy of d with name set to v. An existing declaration keeps
// its position; a new one is appended.
func (d Decls) With(name string, v Value) Decls {
	out := make(Decls, 0, len(d)+1)
	replaced := false
	for _, decl := range d {
		if decl.Name == name {
			out = append(out, Decl{Name: name, Value: v})
			replaced = true
			continue
		}
		out = append(out, decl)
	}
	if !replaced {
		out = append(out, Decl{Name: name, Value: v})
	}
	return out
}

// Names returns declaration names in order.
func (d Decls) Names() []string {
	names := make([]string, len(d))
	for i, decl := range d {
		names[i] = decl.Name
	}
	return names
}
