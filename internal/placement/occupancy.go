package placement

import "github.com/roach88/scenesmith/internal/ir"

// Occupancy is the set of coordinates already taken in one batch. It keeps
// insertion order so listings are deterministic.
//
// An Occupancy belongs to a single placement pass and is not safe for
// concurrent use.
type Occupancy struct {
	order []ir.Coordinate
	set   map[ir.Coordinate]struct{}
}

// NewOccupancy creates an occupancy holding the given coordinates.
func NewOccupancy(coords ...ir.Coordinate) *Occupancy {
	o := &Occupancy{set: make(map[ir.Coordinate]struct{})}
	for _, c := range coords {
		o.Add(c)
	}
	return o
}

// Add marks c as used. It reports false if c was already used.
func (o *Occupancy) Add(c ir.Coordinate) bool {
	if o.set == nil {
		o.set = make(map[ir.Coordinate]struct{})
	}
	if _, ok := o.set[c]; ok {
		return false
	}
	o.set[c] = struct{}{}
	o.order = append(o.order, c)
	return true
}

// Has reports whether c is used. A nil Occupancy holds nothing.
func (o *Occupancy) Has(c ir.Coordinate) bool {
	if o == nil {
		return false
	}
	_, ok := o.set[c]
	return ok
}

// Len returns the number of used coordinates.
func (o *Occupancy) Len() int {
	if o == nil {
		return 0
	}
	return len(o.order)
}

// Coordinates returns used coordinates in insertion order.
func (o *Occupancy) Coordinates() []ir.Coordinate {
	if o == nil {
		return nil
	}
	out := make([]ir.Coordinate, len(o.order))
	copy(out, o.order)
	return out
}
