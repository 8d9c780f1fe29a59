package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/scenesmith/internal/engine"
	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/loader"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/placement"
	"github.com/roach88/scenesmith/internal/store"
	"github.com/roach88/scenesmith/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	runIDs engine.RunIDGenerator
	logger *slog.Logger
}

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger routes placement logs to logger. The default discards them.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRunIDGenerator sets how the stored run is named. The default is a
// fixed id so that results are reproducible.
func WithRunIDGenerator(gen engine.RunIDGenerator) Option {
	return func(h *Harness) {
		if gen != nil {
			h.runIDs = gen
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store.
//
// Execution flow:
//  1. Load and compile the scenario's templates
//  2. Load the grid
//  3. Place the request batch with an RNG seeded from the scenario
//  4. Write the run to the store and read the instances back
//  5. Evaluate assertions against the stored batch
//
// Errors are returned for scenarios that cannot run at all; failed
// assertions are reported on the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		runIDs: testutil.NewFixedRunIDGenerator("scenario-" + scenario.Name),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	loaded, errs := loader.LoadFiles(scenario.Templates, loader.FailFast)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to load templates: %w", errors.Join(errs...))
	}
	reg, err := loaded.Registry()
	if err != nil {
		return nil, fmt.Errorf("failed to register templates: %w", err)
	}

	gridDoc, err := os.ReadFile(scenario.Grid)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid: %w", err)
	}
	grid, err := placement.ParseGrid(gridDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid: %w", err)
	}

	placerOpts := []engine.PlacerOption{engine.WithLogger(h.logger)}
	if scenario.Attempts > 0 {
		placerOpts = append(placerOpts, engine.WithPlacementEngine(
			placement.NewEngine(placement.WithAttempts(scenario.Attempts), placement.WithLogger(h.logger))))
	}
	firstID := engine.FirstEventID
	if scenario.FirstEventID > 0 {
		firstID = scenario.FirstEventID
		placerOpts = append(placerOpts, engine.WithFirstEventID(firstID))
	}
	placer := engine.NewPlacer(engine.NewFactory(reg, engine.WithFactoryLogger(h.logger)), placerOpts...)

	reqs := scenario.RequestBatch()
	batch, err := placer.PlaceEvents(ctx, grid, reqs, params.NewRNG(scenario.Seed))
	if err != nil {
		return nil, fmt.Errorf("failed to place events: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	run, err := store.NewRun(h.runIDs.Generate(), scenario.Seed, engine.RequestsArray(reqs),
		string(gridDoc), batch.Requested(), firstID, batch.Instances)
	if err != nil {
		return nil, err
	}
	if scenario.Attempts > 0 {
		run.Attempts = scenario.Attempts
	}
	if _, err := st.WriteRun(ctx, run, batch.Instances); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	stored, err := st.ReadInstances(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}

	result := NewResult()
	result.RunID = run.ID
	result.BatchHash = run.BatchHash
	result.Instances = stored
	result.Outcomes = batch.Outcomes

	if storedHash, err := ir.BatchHash(stored); err != nil || storedHash != run.BatchHash {
		result.AddError("stored batch does not hash like the placed batch")
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}
