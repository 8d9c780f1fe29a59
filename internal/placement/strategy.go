package placement

import (
	"fmt"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
)

// Strategy names a candidate-sampling function.
type Strategy string

const (
	Random       Strategy = "random"
	NearWall     Strategy = "nearWall"
	InRoom       Strategy = "inRoom"
	NearEntrance Strategy = "nearEntrance"
	NearExit     Strategy = "nearExit"
)

// Strategies lists every built-in strategy.
var Strategies = []Strategy{Random, NearWall, InRoom, NearEntrance, NearExit}

// ParseStrategy parses a strategy name. The empty string means Random.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return Random, nil
	}
	for _, st := range Strategies {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown placement strategy %q (want one of %v)", s, Strategies)
}

// NearRadius is how far nearEntrance and nearExit may stray from a marker.
const NearRadius = 3

// Sampler proposes one candidate coordinate per call. It reports false when
// it has nothing to propose, which costs an attempt like a rejected
// candidate does.
type Sampler interface {
	Sample(g *Grid, rng params.RNG) (ir.Coordinate, bool)
}

// Preparer is implemented by samplers that precompute per-grid state. The
// engine calls Prepare once per search and samples from the result.
type Preparer interface {
	Prepare(g *Grid) Sampler
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(g *Grid, rng params.RNG) (ir.Coordinate, bool)

// Sample calls f.
func (f SamplerFunc) Sample(g *Grid, rng params.RNG) (ir.Coordinate, bool) {
	return f(g, rng)
}

// DefaultSamplers returns the built-in sampler for every strategy.
func DefaultSamplers() map[Strategy]Sampler {
	return map[Strategy]Sampler{
		Random:       SamplerFunc(sampleRandom),
		NearWall:     nearWallSampler{},
		InRoom:       SamplerFunc(sampleInRoom),
		NearEntrance: nearSampler{markers: func(g *Grid) []ir.Coordinate { return g.Entrances }},
		NearExit:     nearSampler{markers: func(g *Grid) []ir.Coordinate { return g.Exits }},
	}
}

// sampleRect draws a uniform coordinate inside r.
func sampleRect(r Rect, rng params.RNG) (ir.Coordinate, bool) {
	if r.Empty() {
		return ir.Coordinate{}, false
	}
	x := r.X + rng.IntN(r.W)
	y := r.Y + rng.IntN(r.H)
	return ir.Coordinate{X: x, Y: y}, true
}

// sampleRandom is uniform over the interior, excluding the one-tile border.
func sampleRandom(g *Grid, rng params.RNG) (ir.Coordinate, bool) {
	return sampleRect(g.Interior(), rng)
}

// nearWallSampler is uniform over interior cells with at least one
// non-walkable 4-neighbour. Falls back to random when there are none.
type nearWallSampler struct{}

func (nearWallSampler) Sample(g *Grid, rng params.RNG) (ir.Coordinate, bool) {
	return nearWallSampler{}.Prepare(g).Sample(g, rng)
}

func (nearWallSampler) Prepare(g *Grid) Sampler {
	candidates := wallAdjacent(g)
	if len(candidates) == 0 {
		return SamplerFunc(sampleRandom)
	}
	return SamplerFunc(func(_ *Grid, rng params.RNG) (ir.Coordinate, bool) {
		return candidates[rng.IntN(len(candidates))], true
	})
}

// wallAdjacent lists interior cells next to a non-walkable cell, row-major.
func wallAdjacent(g *Grid) []ir.Coordinate {
	var out []ir.Coordinate
	in := g.Interior()
	for y := in.Y; y < in.Y+in.H; y++ {
		for x := in.X; x < in.X+in.W; x++ {
			if !g.Walkable(x-1, y) || !g.Walkable(x+1, y) || !g.Walkable(x, y-1) || !g.Walkable(x, y+1) {
				out = append(out, ir.Coordinate{X: x, Y: y})
			}
		}
	}
	return out
}

// sampleInRoom picks a room uniformly and then a cell in its interior.
// Falls back to random when the grid has no rooms.
func sampleInRoom(g *Grid, rng params.RNG) (ir.Coordinate, bool) {
	if len(g.Rooms) == 0 {
		return sampleRandom(g, rng)
	}
	room := g.Rooms[rng.IntN(len(g.Rooms))]
	return sampleRect(room.Interior(), rng)
}

// nearSampler picks a marker uniformly and then an offset within
// NearRadius on each axis. Falls back to random without markers.
type nearSampler struct {
	markers func(g *Grid) []ir.Coordinate
}

func (s nearSampler) Sample(g *Grid, rng params.RNG) (ir.Coordinate, bool) {
	markers := s.markers(g)
	if len(markers) == 0 {
		return sampleRandom(g, rng)
	}
	m := markers[rng.IntN(len(markers))]
	span := 2*NearRadius + 1
	return ir.Coordinate{
		X: m.X + rng.IntN(span) - NearRadius,
		Y: m.Y + rng.IntN(span) - NearRadius,
	}, true
}
