package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
	"github.com/roach88/scenesmith/internal/testutil"
)

var walkable = template.DefaultPlacementRules()

// openRoom returns a grid with a wall border and floor inside.
func openRoom(w, h int) *Grid {
	g := NewGrid(w, h, WallTile)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			g.Set(x, y, FloorTile)
		}
	}
	return g
}

// A grid that is all wall except one interior cell is always solved.
func TestFindLocationSingleWalkableCell(t *testing.T) {
	g := NewGrid(3, 3, WallTile)
	g.Set(1, 1, FloorTile)

	for seed := range uint64(20) {
		c, ok := FindLocation(g, walkable, Random, NewOccupancy(), params.NewRNG(seed))
		require.True(t, ok)
		assert.Equal(t, ir.Coordinate{X: 1, Y: 1}, c)
	}
}

// A grid with no walkable cell exhausts the budget and reports false.
func TestFindLocationNoWalkableCell(t *testing.T) {
	g := NewGrid(5, 5, WallTile)
	rng := testutil.NewScriptedRNG(0, 1, 2)

	_, ok := FindLocation(g, walkable, Random, NewOccupancy(), rng)
	assert.False(t, ok)
	assert.Equal(t, 2*MaxAttempts, rng.Calls(), "each attempt draws x and y")
}

func TestFindLocationSkipsOccupied(t *testing.T) {
	g := openRoom(4, 3) // interior (1,1) and (2,1)
	used := NewOccupancy(ir.Coordinate{X: 1, Y: 1})

	c, ok := FindLocation(g, walkable, Random, used, params.NewRNG(3))
	require.True(t, ok)
	assert.Equal(t, ir.Coordinate{X: 2, Y: 1}, c)

	used.Add(c)
	_, ok = FindLocation(g, walkable, Random, used, params.NewRNG(3))
	assert.False(t, ok, "every interior cell is taken")
}

func TestFindLocationRules(t *testing.T) {
	g := openRoom(5, 3) // interior x in 1..3 on row 1
	g.Set(1, 1, 7)
	g.Set(2, 1, 8)
	g.Set(3, 1, 9)

	tests := []struct {
		name  string
		rules template.PlacementRules
		want  ir.Coordinate
		found bool
	}{
		{"allowed tiles", template.PlacementRules{RequireWalkable: true, AllowedTiles: []int{8}}, ir.Coordinate{X: 2, Y: 1}, true},
		{"disallowed tiles", template.PlacementRules{RequireWalkable: true, DisallowedTiles: []int{7, 8}}, ir.Coordinate{X: 3, Y: 1}, true},
		{"nothing allowed", template.PlacementRules{AllowedTiles: []int{1}}, ir.Coordinate{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := FindLocation(g, tt.rules, Random, NewOccupancy(), params.NewRNG(1))
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.want, c)
			}
		})
	}
}

func TestFindLocationIgnoresWalkabilityWhenNotRequired(t *testing.T) {
	g := NewGrid(3, 3, WallTile)
	c, ok := FindLocation(g, template.PlacementRules{}, Random, NewOccupancy(), params.NewRNG(1))
	require.True(t, ok)
	assert.Equal(t, ir.Coordinate{X: 1, Y: 1}, c)
}

func TestFindLocationDeterministic(t *testing.T) {
	g := openRoom(20, 15)
	g.Rooms = []Rect{{X: 2, Y: 2, W: 6, H: 5}, {X: 10, Y: 6, W: 7, H: 6}}
	g.Entrances = []ir.Coordinate{{X: 1, Y: 7}}
	g.Exits = []ir.Coordinate{{X: 18, Y: 7}}

	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			run := func() []ir.Coordinate {
				rng := params.NewRNG(1234)
				used := NewOccupancy()
				for range 10 {
					c, ok := FindLocation(g, walkable, s, used, rng)
					if ok {
						used.Add(c)
					}
				}
				return used.Coordinates()
			}
			first := run()
			assert.Len(t, first, 10)
			assert.Equal(t, first, run())
		})
	}
}

func TestEngineWithAttempts(t *testing.T) {
	e := NewEngine(WithAttempts(7))
	assert.Equal(t, 7, e.Attempts())

	rng := testutil.NewScriptedRNG()
	_, ok := e.FindLocation(NewGrid(4, 4, WallTile), walkable, Random, NewOccupancy(), rng)
	assert.False(t, ok)
	assert.Equal(t, 14, rng.Calls())

	assert.Equal(t, MaxAttempts, NewEngine(WithAttempts(0)).Attempts())
}

func TestEngineWithSampler(t *testing.T) {
	fixed := SamplerFunc(func(*Grid, params.RNG) (ir.Coordinate, bool) {
		return ir.Coordinate{X: 2, Y: 2}, true
	})
	e := NewEngine(WithSampler("corner", fixed))

	c, ok := e.FindLocation(openRoom(5, 5), walkable, "corner", NewOccupancy(), testutil.NewScriptedRNG())
	require.True(t, ok)
	assert.Equal(t, ir.Coordinate{X: 2, Y: 2}, c)
}

func TestEngineUnknownStrategySamplesRandom(t *testing.T) {
	g := NewGrid(3, 3, WallTile)
	g.Set(1, 1, FloorTile)
	c, ok := NewEngine().FindLocation(g, walkable, "teleport", nil, testutil.NewScriptedRNG())
	require.True(t, ok)
	assert.Equal(t, ir.Coordinate{X: 1, Y: 1}, c)
}

func TestValidOutOfBounds(t *testing.T) {
	g := openRoom(3, 3)
	assert.False(t, Valid(g, template.PlacementRules{}, nil, ir.Coordinate{X: -1, Y: 0}))
	assert.False(t, Valid(g, template.PlacementRules{}, nil, ir.Coordinate{X: 3, Y: 1}))
	assert.True(t, Valid(g, walkable, nil, ir.Coordinate{X: 1, Y: 1}))
}
