package params

import (
	"math/rand/v2"
	"slices"

	"github.com/roach88/scenesmith/internal/ir"
)

// Context is an immutable mapping from parameter name to resolved value for
// one generation pass. Every mutation returns a new Context.
type Context struct {
	values ir.IRObject
}

// NewContext creates a context holding a deep copy of values.
func NewContext(values ir.IRObject) Context {
	if values == nil {
		return Context{values: ir.IRObject{}}
	}
	return Context{values: values.Clone()}
}

// Lookup returns the value bound to name.
func (c Context) Lookup(name string) (ir.IRValue, bool) {
	v, ok := c.values[name]
	return v, ok
}

// With returns a new context with name bound to v.
func (c Context) With(name string, v ir.IRValue) Context {
	next := make(ir.IRObject, len(c.values)+1)
	for k, val := range c.values {
		next[k] = val
	}
	next[name] = v
	return Context{values: next}
}

// Merge returns a new context with overrides applied on top.
func (c Context) Merge(overrides ir.IRObject) Context {
	return Context{values: c.values.Merge(overrides.Clone())}
}

// Names returns bound names in sorted order.
func (c Context) Names() []string {
	names := make([]string, 0, len(c.values))
	for k := range c.values {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of bindings.
func (c Context) Len() int {
	return len(c.values)
}

// Object returns a deep copy of the bindings.
func (c Context) Object() ir.IRObject {
	if c.values == nil {
		return ir.IRObject{}
	}
	return c.values.Clone()
}

// RNG is the explicit random source threaded through resolution and
// placement. *rand.Rand from math/rand/v2 satisfies it.
type RNG interface {
	// IntN returns a uniform value in [0, n). n must be > 0.
	IntN(n int) int
}

// NewRNG returns a seeded PCG generator. The same seed always yields the
// same stream.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
