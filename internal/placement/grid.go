package placement

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scenesmith/internal/ir"
)

// Rect is a rectangular region of tiles, used for room metadata.
type Rect struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	W int `yaml:"w" json:"w"`
	H int `yaml:"h" json:"h"`
}

// Interior returns the rect shrunk by one tile on every side, or the rect
// itself when it is too small to shrink.
func (r Rect) Interior() Rect {
	if r.W > 2 && r.H > 2 {
		return Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}
	}
	return r
}

// Empty reports whether the rect covers no tiles.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Grid is a tile map with the metadata strategies sample from.
type Grid struct {
	Width  int
	Height int

	// Tiles holds Width*Height tile ids in row-major order.
	Tiles []int

	// Passable decides whether a tile id can be walked on. Nil means
	// DefaultPassable.
	Passable func(tile int) bool

	Rooms     []Rect
	Entrances []ir.Coordinate
	Exits     []ir.Coordinate
}

// DefaultPassable treats tile id 0 as impassable and every other id as
// walkable.
func DefaultPassable(tile int) bool {
	return tile != 0
}

// BlockedSet returns a passability function under which the given tile ids
// are impassable and all others walkable.
func BlockedSet(ids ...int) func(int) bool {
	blocked := slices.Clone(ids)
	return func(tile int) bool {
		return !slices.Contains(blocked, tile)
	}
}

// WalkableSet returns a passability function under which only the given
// tile ids are walkable.
func WalkableSet(ids ...int) func(int) bool {
	walkable := slices.Clone(ids)
	return func(tile int) bool {
		return slices.Contains(walkable, tile)
	}
}

// NewGrid creates a grid of the given size with every tile set to fill.
func NewGrid(width, height, fill int) *Grid {
	tiles := make([]int, max(width, 0)*max(height, 0))
	for i := range tiles {
		tiles[i] = fill
	}
	return &Grid{Width: width, Height: height, Tiles: tiles}
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

// Tile returns the tile id at (x, y). Out-of-bounds lookups report false.
func (g *Grid) Tile(x, y int) (int, bool) {
	i := y*g.Width + x
	if !g.InBounds(x, y) || i >= len(g.Tiles) {
		return 0, false
	}
	return g.Tiles[i], true
}

// Set changes the tile id at (x, y). Out-of-bounds writes are ignored.
func (g *Grid) Set(x, y, tile int) {
	if i := y*g.Width + x; g.InBounds(x, y) && i < len(g.Tiles) {
		g.Tiles[i] = tile
	}
}

// Walkable reports whether (x, y) is on the grid and passable.
// Out-of-bounds coordinates are never walkable.
func (g *Grid) Walkable(x, y int) bool {
	tile, ok := g.Tile(x, y)
	if !ok {
		return false
	}
	if g.Passable == nil {
		return DefaultPassable(tile)
	}
	return g.Passable(tile)
}

// Interior is the grid without its one-tile border.
func (g *Grid) Interior() Rect {
	return Rect{X: 1, Y: 1, W: g.Width - 2, H: g.Height - 2}
}

// Validate checks that the tile slice matches the declared size.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("grid size %dx%d must be positive", g.Width, g.Height)
	}
	if len(g.Tiles) != g.Width*g.Height {
		return fmt.Errorf("grid %dx%d needs %d tiles, got %d", g.Width, g.Height, g.Width*g.Height, len(g.Tiles))
	}
	return nil
}

// gridFile is the YAML form of a grid. Either tiles or rows is given.
//
// In rows, '#' is a wall (tile 0), '.' is floor (tile 1), 'E' and 'X' are
// floor tiles that also mark an entrance or exit.
type gridFile struct {
	Width     int             `yaml:"width"`
	Height    int             `yaml:"height"`
	Tiles     []int           `yaml:"tiles"`
	Rows      []string        `yaml:"rows"`
	Blocked   []int           `yaml:"blocked"`
	Walkable  []int           `yaml:"walkable"`
	Rooms     []Rect          `yaml:"rooms"`
	Entrances []ir.Coordinate `yaml:"entrances"`
	Exits     []ir.Coordinate `yaml:"exits"`
}

// Tile ids produced by the rows notation.
const (
	WallTile  = 0
	FloorTile = 1
)

// LoadGrid reads a grid from a YAML file.
func LoadGrid(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading grid: %w", err)
	}
	g, err := ParseGrid(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ParseGrid decodes a grid from YAML.
func ParseGrid(data []byte) (*Grid, error) {
	var f gridFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing grid: %w", err)
	}

	g := &Grid{
		Width:     f.Width,
		Height:    f.Height,
		Tiles:     f.Tiles,
		Rooms:     f.Rooms,
		Entrances: f.Entrances,
		Exits:     f.Exits,
	}

	if len(f.Rows) > 0 {
		if len(f.Tiles) > 0 {
			return nil, fmt.Errorf("grid has both tiles and rows")
		}
		if err := g.fromRows(f.Rows); err != nil {
			return nil, err
		}
	}

	switch {
	case f.Blocked != nil && f.Walkable != nil:
		return nil, fmt.Errorf("grid has both blocked and walkable tile sets")
	case f.Blocked != nil:
		g.Passable = BlockedSet(f.Blocked...)
	case f.Walkable != nil:
		g.Passable = WalkableSet(f.Walkable...)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Grid) fromRows(rows []string) error {
	if g.Height == 0 {
		g.Height = len(rows)
	}
	if g.Width == 0 {
		g.Width = len(rows[0])
	}
	if len(rows) != g.Height {
		return fmt.Errorf("grid declares height %d but has %d rows", g.Height, len(rows))
	}

	g.Tiles = make([]int, 0, g.Width*g.Height)
	for y, row := range rows {
		if len(row) != g.Width {
			return fmt.Errorf("row %d has width %d, want %d", y, len(row), g.Width)
		}
		for x, ch := range []byte(row) {
			switch ch {
			case '#':
				g.Tiles = append(g.Tiles, WallTile)
			case '.':
				g.Tiles = append(g.Tiles, FloorTile)
			case 'E':
				g.Tiles = append(g.Tiles, FloorTile)
				g.Entrances = append(g.Entrances, ir.Coordinate{X: x, Y: y})
			case 'X':
				g.Tiles = append(g.Tiles, FloorTile)
				g.Exits = append(g.Exits, ir.Coordinate{X: x, Y: y})
			default:
				return fmt.Errorf("row %d: unknown tile %q at column %d", y, ch, x)
			}
		}
	}
	return nil
}
