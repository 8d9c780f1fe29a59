package placement

import (
	"io"
	"log/slog"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/template"
)

// MaxAttempts is the default number of candidates drawn before giving up.
const MaxAttempts = 100

// Engine runs bounded rejection sampling over a grid.
// An Engine holds no per-search state and is safe to share.
type Engine struct {
	attempts int
	samplers map[Strategy]Sampler
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAttempts sets the attempt budget. Values below 1 are ignored.
func WithAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.attempts = n
		}
	}
}

// WithSampler registers or replaces the sampler for a strategy.
func WithSampler(s Strategy, sampler Sampler) Option {
	return func(e *Engine) {
		e.samplers[s] = sampler
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine with the built-in samplers and a budget of
// MaxAttempts.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		attempts: MaxAttempts,
		samplers: DefaultSamplers(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attempts returns the attempt budget.
func (e *Engine) Attempts() int {
	return e.attempts
}

// FindLocation draws up to the attempt budget of candidates from the
// strategy's sampler and returns the first that is unoccupied and allowed
// by rules. It reports false when the budget runs out.
//
// An unknown strategy samples like Random.
func (e *Engine) FindLocation(g *Grid, rules template.PlacementRules, s Strategy, used *Occupancy, rng params.RNG) (ir.Coordinate, bool) {
	sampler, ok := e.samplers[s]
	if !ok {
		sampler = e.samplers[Random]
	}
	if p, ok := sampler.(Preparer); ok {
		sampler = p.Prepare(g)
	}

	for attempt := 0; attempt < e.attempts; attempt++ {
		c, ok := sampler.Sample(g, rng)
		if !ok {
			continue
		}
		if Valid(g, rules, used, c) {
			e.logger.Debug("placement found",
				"strategy", string(s),
				"x", c.X,
				"y", c.Y,
				"attempt", attempt+1)
			return c, true
		}
	}

	e.logger.Debug("placement budget exhausted",
		"strategy", string(s),
		"attempts", e.attempts,
		"occupied", used.Len())
	return ir.Coordinate{}, false
}

// Valid reports whether c is free and its tile satisfies rules.
func Valid(g *Grid, rules template.PlacementRules, used *Occupancy, c ir.Coordinate) bool {
	if used.Has(c) {
		return false
	}
	tile, ok := g.Tile(c.X, c.Y)
	if !ok {
		return false
	}
	if rules.RequireWalkable && !g.Walkable(c.X, c.Y) {
		return false
	}
	return rules.Allows(tile)
}

var defaultEngine = NewEngine()

// FindLocation runs the default engine with a budget of MaxAttempts.
func FindLocation(g *Grid, rules template.PlacementRules, s Strategy, used *Occupancy, rng params.RNG) (ir.Coordinate, bool) {
	return defaultEngine.FindLocation(g, rules, s, used, rng)
}
