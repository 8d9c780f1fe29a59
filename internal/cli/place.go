package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/scenesmith/internal/engine"
	"github.com/roach88/scenesmith/internal/ir"
	"github.com/roach88/scenesmith/internal/loader"
	"github.com/roach88/scenesmith/internal/params"
	"github.com/roach88/scenesmith/internal/placement"
	"github.com/roach88/scenesmith/internal/store"
	"github.com/roach88/scenesmith/internal/template"
)

// Error codes for placement and the run store.
const (
	ErrCodeGrid      = "E301" // grid missing or invalid
	ErrCodeRequests  = "E302" // request file missing or invalid
	ErrCodePlacement = "E303" // batch aborted
	ErrCodeStore     = "E304" // run store failure
	ErrCodeMismatch  = "E305" // replay hash mismatch
	ErrCodeQuery     = "E306" // malformed find filter
)

// PlaceOptions holds flags for the place command.
type PlaceOptions struct {
	*RootOptions
	Grid         string
	Requests     string
	Seed         uint64
	DB           string
	Output       string
	Attempts     int
	FirstEventID int

	runIDs engine.RunIDGenerator
}

// PlaceResult is the output of a placement batch.
type PlaceResult struct {
	RunID     string           `json:"run_id,omitempty"`
	Seed      uint64           `json:"seed"`
	BatchHash string           `json:"batch_hash"`
	Requested int              `json:"requested"`
	Placed    int              `json:"placed"`
	Shortfall int              `json:"shortfall"`
	Instances []ir.Instance    `json:"instances"`
	Outcomes  []engine.Outcome `json:"outcomes"`
}

// NewPlaceCommand creates the place command.
func NewPlaceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlaceOptions{RootOptions: rootOpts, runIDs: engine.UUIDv7Generator{}}

	cmd := &cobra.Command{
		Use:   "place <templates-dir>",
		Short: "Place a batch of events on a grid",
		Long: `Generate and place a batch of events on a grid.

Requests are processed in order; each iteration picks a template, finds a
free tile with the request's strategy and builds the event there. An
iteration that cannot be placed is skipped and reported, so a batch may
produce fewer events than requested.

With --db the run is recorded and can later be checked with replay.

Examples:
  scenesmith place ./templates --grid village.yaml --requests reqs.yaml --seed 42
  scenesmith place ./templates --grid village.yaml --requests reqs.yaml --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyPlaceDefaults(opts, cmd)
			return runPlace(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Grid, "grid", "", "grid YAML file (required)")
	cmd.Flags().StringVar(&opts.Requests, "requests", "", "request YAML file (required)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "RNG seed (default from SCENESMITH_SEED)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the run in this SQLite database (default from SCENESMITH_DB)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write instances as JSON to this file")
	cmd.Flags().IntVar(&opts.Attempts, "attempts", placement.MaxAttempts, "placement attempts per event")
	cmd.Flags().IntVar(&opts.FirstEventID, "first-event-id", engine.FirstEventID, "id of the first placed event")
	_ = cmd.MarkFlagRequired("grid")
	_ = cmd.MarkFlagRequired("requests")

	return cmd
}

// applyPlaceDefaults fills flags the user did not set from the environment.
func applyPlaceDefaults(opts *PlaceOptions, cmd *cobra.Command) {
	if !cmd.Flags().Changed("seed") {
		opts.Seed = opts.Config.Seed
	}
	if !cmd.Flags().Changed("db") {
		opts.DB = opts.Config.DB
	}
	if !cmd.Flags().Changed("attempts") {
		opts.Attempts = opts.Config.Attempts
	}
	if !cmd.Flags().Changed("first-event-id") {
		opts.FirstEventID = opts.Config.FirstEventID
	}
}

func runPlace(ctx context.Context, opts *PlaceOptions, dir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.Logger(cmd.ErrOrStderr())

	if opts.Attempts <= 0 {
		return formatter.Fail(ExitCommandError, ErrCodePlacement, "--attempts must be > 0", nil)
	}
	if opts.FirstEventID <= 0 {
		return formatter.Fail(ExitCommandError, ErrCodePlacement, "--first-event-id must be > 0", nil)
	}

	gridDoc, err := os.ReadFile(opts.Grid)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGrid, fmt.Sprintf("reading grid: %v", err), nil)
	}
	grid, err := placement.ParseGrid(gridDoc)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGrid, err.Error(), nil)
	}

	reqs, err := engine.LoadRequests(opts.Requests)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRequests, err.Error(), nil)
	}

	reg, err := loadRegistry(formatter, dir)
	if err != nil {
		return err
	}

	placer := newPlacer(reg, opts.Attempts, opts.FirstEventID, logger)
	batch, err := placer.PlaceEvents(ctx, grid, reqs, params.NewRNG(opts.Seed))
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodePlacement, err.Error(), nil)
	}

	hash, err := batch.Hash()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodePlacement, err.Error(), nil)
	}
	result := PlaceResult{
		Seed:      opts.Seed,
		BatchHash: hash,
		Requested: batch.Requested(),
		Placed:    len(batch.Instances),
		Shortfall: batch.Shortfall(),
		Instances: batch.Instances,
		Outcomes:  batch.Outcomes,
	}
	if result.Instances == nil {
		result.Instances = []ir.Instance{}
	}

	if opts.DB != "" {
		runID, err := recordRun(ctx, opts, reqs, string(gridDoc), batch)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		result.RunID = runID
		logger.Info("run recorded", "run", runID, "db", opts.DB, "instances", len(batch.Instances))
	}

	if opts.Output != "" {
		if err := writeJSONFile(result.Instances, opts.Output); err != nil {
			return formatter.Fail(ExitCommandError, loader.ErrCodeWriteFailed,
				fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "\u2713 Placed %d of %d event(s) (seed %d)\n", result.Placed, result.Requested, result.Seed)
		if result.Shortfall > 0 {
			fmt.Fprintf(w, "  %d event(s) could not be placed:\n", result.Shortfall)
			for _, o := range batch.Failures() {
				if o.Err != nil {
					fmt.Fprintf(w, "    request %d #%d: %s\n", o.Request, o.Iteration, o.Err.Error())
				} else {
					fmt.Fprintf(w, "    request %d #%d: %s\n", o.Request, o.Iteration, o.Status)
				}
			}
		}
		fmt.Fprintf(w, "  batch hash: %s\n", result.BatchHash)
		if result.RunID != "" {
			fmt.Fprintf(w, "  run: %s\n", result.RunID)
		}
		if opts.Output != "" {
			fmt.Fprintf(w, "  output written to: %s\n", opts.Output)
		} else if opts.Verbose {
			writeInstanceJSON(w, result.Instances)
		}
	})
}

// recordRun stores the batch and returns the new run id.
func recordRun(ctx context.Context, opts *PlaceOptions, reqs []engine.Request, gridDoc string, batch *engine.BatchResult) (string, error) {
	st, err := store.Open(opts.DB)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run, err := store.NewRun(opts.runIDs.Generate(), opts.Seed, engine.RequestsArray(reqs),
		gridDoc, batch.Requested(), opts.FirstEventID, batch.Instances)
	if err != nil {
		return "", err
	}
	run.Attempts = opts.Attempts
	if _, err := st.WriteRun(ctx, run, batch.Instances); err != nil {
		if errors.Is(err, store.ErrRunExists) {
			return "", fmt.Errorf("run %s already recorded: %w", run.ID, err)
		}
		return "", err
	}
	return run.ID, nil
}

func newPlacer(reg *template.Registry, attempts, firstEventID int, logger *slog.Logger) *engine.Placer {
	return engine.NewPlacer(
		engine.NewFactory(reg, engine.WithFactoryLogger(logger)),
		engine.WithPlacementEngine(placement.NewEngine(placement.WithAttempts(attempts), placement.WithLogger(logger))),
		engine.WithFirstEventID(firstEventID),
		engine.WithLogger(logger),
	)
}
