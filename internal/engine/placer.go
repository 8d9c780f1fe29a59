package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/placement"
)

// OutcomeStatus is the result of one request iteration.
type OutcomeStatus string

const (
	StatusPlaced           OutcomeStatus = "placed"
	StatusPlacementFailed  OutcomeStatus = "placement_failed"
	StatusTemplateNotFound OutcomeStatus = "template_not_found"
)

// Outcome records what happened to one iteration of one request.
type Outcome struct {
	Request   int           `json:"request"`
	Iteration int           `json:"iteration"`
	Selector  string        `json:"selector"`
	Status    OutcomeStatus `json:"status"`

	// Set when Status is StatusPlaced.
	Template string `json:"template,omitempty"`
	EventID  int    `json:"event_id,omitempty"`

	// Set for the failure statuses.
	Err *RuntimeError `json:"-"`
}

// BatchResult is the output of PlaceEvents. Instances are in placement
// order; Outcomes has one entry per requested iteration.
type BatchResult struct {
	Instances []ir.Instance
	Outcomes  []Outcome
}

// Requested returns the total number of iterations requested.
func (b *BatchResult) Requested() int {
	return len(b.Outcomes)
}

// Shortfall returns how many requested events were not produced.
func (b *BatchResult) Shortfall() int {
	return len(b.Outcomes) - len(b.Instances)
}

// Failures returns the outcomes that did not produce an instance.
func (b *BatchResult) Failures() []Outcome {
	var out []Outcome
	for _, o := range b.Outcomes {
		if o.Status != StatusPlaced {
			out = append(out, o)
		}
	}
	return out
}

// Hash returns the content hash of the produced instances.
func (b *BatchResult) Hash() (string, error) {
	return ir.BatchHash(b.Instances)
}

// Placer runs placement batches.
type Placer struct {
	factory *Factory
	engine  *placement.Engine
	firstID int
	logger  *slog.Logger
}

// PlacerOption configures a Placer.
type PlacerOption func(*Placer)

// WithPlacementEngine replaces the default placement engine.
func WithPlacementEngine(e *placement.Engine) PlacerOption {
	return func(p *Placer) {
		if e != nil {
			p.engine = e
		}
	}
}

// WithFirstEventID sets the id of the first placed event.
func WithFirstEventID(id int) PlacerOption {
	return func(p *Placer) {
		p.firstID = id
	}
}

// WithLogger sets the placer logger. The default discards output.
func WithLogger(logger *slog.Logger) PlacerOption {
	return func(p *Placer) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPlacer creates a placer generating through factory.
func NewPlacer(factory *Factory, opts ...PlacerOption) *Placer {
	p := &Placer{
		factory: factory,
		engine:  placement.NewEngine(),
		firstID: FirstEventID,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlaceEvents processes reqs strictly in order against g.
//
// For each of a request's Count iterations it resolves the selector (a
// uniform draw when several templates match), finds a free coordinate with
// the request's strategy and the template's placement rules, and generates
// the instance. An iteration that finds no template or no coordinate is
// skipped and recorded in Outcomes; the rest of the request continues.
// Each placed coordinate is unavailable to every later iteration.
//
// Malformed requests fail the whole batch before anything is placed.
// Cancellation is checked between iterations and returns ctx.Err().
func (p *Placer) PlaceEvents(ctx context.Context, g *placement.Grid, reqs []Request, rng params.RNG) (*BatchResult, error) {
	for i, req := range reqs {
		if err := req.Validate(i); err != nil {
			return nil, err
		}
	}

	used := placement.NewOccupancy()
	clock := NewClockAt(int64(p.firstID) - 1)
	result := &BatchResult{Instances: []ir.Instance{}, Outcomes: []Outcome{}}
	registry := p.factory.Registry()

	for ri, req := range reqs {
		strategy := req.Strategy
		if strategy == "" {
			strategy = placement.Random
		}

		for iter := 0; iter < req.Count; iter++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcome := Outcome{Request: ri, Iteration: iter, Selector: req.Selector}

			candidates := registry.ResolveSelector(req.Selector)
			if len(candidates) == 0 {
				outcome.Status = StatusTemplateNotFound
				outcome.Err = NewTemplateNotFoundError(req.Selector, ri)
				p.logger.Warn("no template matches selector",
					"request", ri,
					"selector", req.Selector)
				result.Outcomes = append(result.Outcomes, outcome)
				continue
			}

			tpl := candidates[0]
			if len(candidates) > 1 {
				tpl = candidates[rng.IntN(len(candidates))]
			}

			at, ok := p.engine.FindLocation(g, tpl.Placement, strategy, used, rng)
			if !ok {
				outcome.Status = StatusPlacementFailed
				outcome.Err = NewPlacementFailedError(req.Selector, ri, string(strategy), p.engine.Attempts())
				p.logger.Warn("placement failed",
					"request", ri,
					"iteration", iter,
					"selector", req.Selector,
					"template", tpl.Key(),
					"strategy", string(strategy),
					"attempts", p.engine.Attempts())
				result.Outcomes = append(result.Outcomes, outcome)
				continue
			}

			id := int(clock.Next())
			inst := p.factory.Build(tpl, req.Params, at, id, rng)
			used.Add(at)
			result.Instances = append(result.Instances, *inst)

			outcome.Status = StatusPlaced
			outcome.Template = tpl.Key()
			outcome.EventID = id
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}

	p.logger.Info("batch placed",
		"requests", len(reqs),
		"requested", result.Requested(),
		"placed", len(result.Instances),
		"shortfall", result.Shortfall())
	return result, nil
}
